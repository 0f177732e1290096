package cpu

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezrec/emu4719/io"
)

// lecture is the demonstration program from the third lecture.
var lecture = []int{
	0x9, 0xD, 0xA, 0xB, 0x7, 0xB, 0xF, 0x7,
	0xB, 0xB, 0x8, 0xD, 0x0, 0x3, 0xA, 0x0,
}

// manualScheduler holds timed cycles until the test fires them.
type manualScheduler struct {
	delays  []time.Duration
	pending []func()
}

func (ms *manualScheduler) AfterFunc(delay time.Duration, f func()) {
	ms.delays = append(ms.delays, delay)
	ms.pending = append(ms.pending, f)
}

func (ms *manualScheduler) fire() bool {
	if len(ms.pending) == 0 {
		return false
	}

	f := ms.pending[0]
	ms.pending = ms.pending[1:]
	f()

	return true
}

func newTestProcessor(t *testing.T, mode RunMode, program []int) (p *Processor, rec *io.Recorder) {
	rec = &io.Recorder{}

	p = NewProcessor(nil)
	p.Notifier = rec
	p.Scheduler = &manualScheduler{}
	require.NoError(t, p.SetRunMode(mode))
	require.NoError(t, p.Load(program))

	return
}

func TestProcessorNew(t *testing.T) {
	assert := assert.New(t)

	p := NewProcessor(nil)
	assert.Equal(STATE_OFF, p.State())
	assert.Equal(RUN_MODE_TIMED, p.RunMode())
	assert.Equal(Registers{}, p.Registers())
	assert.Equal(16, p.Memory().Size())
	assert.Equal(4, p.Memory().Bits())
	assert.Empty(p.History())
	assert.Empty(p.Output())
	assert.NoError(p.Fault())
	assert.Equal(HISTORY_LIMIT, p.HistoryLimit)
	assert.Equal(DELAY, p.Delay)
}

func TestProcessorBell(t *testing.T) {
	assert := assert.New(t)

	p, rec := newTestProcessor(t, RUN_MODE_STEPPED, []int{0x7, 0x0})

	assert.NoError(p.Run())
	assert.Equal(1, rec.Bells)
	assert.Equal(STATE_RUNNING, p.State())
	assert.Equal(Registers{Ip: 1}, p.Registers())
	assert.Equal([]int{0x7, 0x0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}, p.Memory().Dump())

	assert.NoError(p.Step())
	assert.Equal(1, rec.Bells)
	assert.Equal(STATE_HALTED, p.State())
	assert.Equal(2, p.Cycles())

	assert.ErrorIs(p.Step(), ErrNotRunning)
}

func TestProcessorPrint(t *testing.T) {
	assert := assert.New(t)

	for _, policy := range []AdvancePolicy{ADVANCE_WIDTH, ADVANCE_LEGACY} {
		p, rec := newTestProcessor(t, RUN_MODE_GO, []int{0x8, 0xA, 0x0})
		p.Policy = policy

		assert.NoError(p.Run(), policy.String())
		assert.Equal(STATE_HALTED, p.State(), policy.String())
		assert.Equal([]int{10}, p.Output(), policy.String())
		assert.Equal([]int{10}, rec.Printed, policy.String())
	}
}

func TestProcessorLecture(t *testing.T) {
	for _, policy := range []AdvancePolicy{ADVANCE_WIDTH, ADVANCE_LEGACY} {
		t.Run(policy.String(), func(t *testing.T) {
			assert := assert.New(t)

			p, rec := newTestProcessor(t, RUN_MODE_GO, lecture)
			p.Policy = policy

			assert.NoError(p.Run())
			assert.Equal(STATE_HALTED, p.State())
			assert.NoError(p.Fault())
			assert.Equal(8, p.Cycles())
			assert.Equal(Registers{Ip: 0xD, Ss: 0x3, R0: 0x9, R1: 0x9}, p.Registers())
			assert.Equal([]int{9}, p.Output())
			assert.Equal(2, rec.Bells)
			assert.Equal([]int{
				0x9, 0xD, 0xA, 0xB, 0x7, 0xB, 0xF, 0x7,
				0xB, 0xB, 0x8, 0x9, 0x0, 0x3, 0xA, 0x9,
			}, p.Memory().Dump())

			history := p.History()
			require.Equal(t, 8, len(history))
			assert.Equal(Registers{Ip: 0x0, Ss: 0xD}, history[0].Registers)
			assert.Equal(lecture, history[0].Memory)
			assert.Equal(Registers{Ip: 0xC, Ss: 0x3, R0: 0x9, R1: 0x9}, history[7].Registers)
		})
	}
}

func TestProcessorHistory(t *testing.T) {
	assert := assert.New(t)

	// bell, then jmp back to 0, forever.
	p, _ := newTestProcessor(t, RUN_MODE_STEPPED, []int{0x7, 0xD, 0x0})
	p.HistoryLimit = 5

	require.NoError(t, p.Run())
	for range 20 {
		before := p.Registers()
		assert.NoError(p.Step())

		history := p.History()
		assert.LessOrEqual(len(history), 5)

		last := history[len(history)-1].Registers
		assert.Equal(before.Ip, last.Ip)
		assert.Equal(p.Memory().Dump()[before.Ip+1], last.Ss)
		assert.Equal(before.R0, last.R0)
		assert.Equal(before.R1, last.R1)
	}

	assert.Equal(5, len(p.History()))
	assert.Equal(21, p.Cycles())
}

func TestProcessorHistoryNone(t *testing.T) {
	assert := assert.New(t)

	p, _ := newTestProcessor(t, RUN_MODE_STEPPED, []int{0x7, 0xD, 0x0})

	for _, limit := range []int{0, -1} {
		p.Reset()
		p.HistoryLimit = limit

		require.NoError(t, p.Run())
		for range 300 {
			assert.NoError(p.Step())
		}

		assert.Empty(p.History(), limit)
		_, ok := p.Last()
		assert.False(ok, limit)
		assert.Equal(STATE_RUNNING, p.State())
	}
}

func TestProcessorLast(t *testing.T) {
	assert := assert.New(t)

	p, _ := newTestProcessor(t, RUN_MODE_STEPPED, []int{0x9, 0x0, 0x7, 0x0})

	_, ok := p.Last()
	assert.False(ok)

	require.NoError(t, p.Run())
	last, ok := p.Last()
	assert.True(ok)
	assert.Equal(Registers{Ip: 0x0, Ss: 0x0}, last.Registers)

	require.NoError(t, p.Step())
	last, ok = p.Last()
	assert.True(ok)
	assert.Equal(Registers{Ip: 0x2, R0: 0x9}, last.Registers)
	assert.Equal(OP_BELL, Opcode(last.Memory[last.Registers.Ip]))

	// A copy, not the live history.
	last.Memory[0] = 0xF
	again, _ := p.Last()
	assert.Equal(0x9, again.Memory[0])
}

func TestProcessorHistoryIsCopy(t *testing.T) {
	assert := assert.New(t)

	p, _ := newTestProcessor(t, RUN_MODE_GO, []int{0x8, 0xA, 0x0})
	require.NoError(t, p.Run())

	history := p.History()
	history[0].Memory[0] = 0xF
	assert.Equal(0x8, p.History()[0].Memory[0])

	output := p.Output()
	output[0] = 0xF
	assert.Equal([]int{10}, p.Output())
}

func TestProcessorReset(t *testing.T) {
	assert := assert.New(t)

	program := []int{0x7, 0x5, 0x0}

	setups := map[string]func(p *Processor){
		"off": func(p *Processor) {},
		"running": func(p *Processor) {
			require.NoError(t, p.Run())
		},
		"paused": func(p *Processor) {
			require.NoError(t, p.Run())
			require.NoError(t, p.Pause())
		},
		"halted": func(p *Processor) {
			require.NoError(t, p.Run())
			require.NoError(t, p.Step())
			require.NoError(t, p.Step())
			require.Equal(t, STATE_HALTED, p.State())
		},
		"crashed": func(p *Processor) {
			p.regs.R0 = 0x10
			require.NoError(t, p.Run())
			require.Equal(t, STATE_CRASHED, p.State())
		},
	}

	for name, setup := range setups {
		p, _ := newTestProcessor(t, RUN_MODE_STEPPED, program)
		setup(p)
		memory := p.Memory().Dump()

		p.Reset()
		assert.Equal(STATE_OFF, p.State(), name)
		assert.Equal(Registers{}, p.Registers(), name)
		assert.Empty(p.History(), name)
		assert.NoError(p.Fault(), name)
		assert.Equal(0, p.Cycles(), name)
		assert.Equal(memory, p.Memory().Dump(), name)
	}
}

func TestProcessorRunErrors(t *testing.T) {
	assert := assert.New(t)

	p, _ := newTestProcessor(t, RUN_MODE_STEPPED, []int{0x7, 0x7, 0x7, 0x0})

	assert.ErrorIs(p.Step(), ErrNotRunning)
	assert.ErrorIs(p.Pause(), ErrNotRunning)

	assert.NoError(p.Run())
	assert.ErrorIs(p.Run(), ErrAlreadyRunning)
	assert.ErrorIs(p.SetRunMode(RUN_MODE_GO), ErrRunModeBusy)
	assert.Equal(RUN_MODE_STEPPED, p.RunMode())

	assert.NoError(p.Pause())
	assert.Equal(STATE_PAUSED, p.State())
	assert.ErrorIs(p.Step(), ErrNotRunning)
	assert.NoError(p.SetRunMode(RUN_MODE_GO))

	// Continue runs the rest of the program.
	assert.NoError(p.Continue())
	assert.Equal(STATE_HALTED, p.State())

	// A halted processor runs again from where it stopped, and finds
	// another halt in the cleared cell.
	assert.Equal(0x4, p.Registers().Ip)
	assert.NoError(p.Run())
	assert.Equal(STATE_HALTED, p.State())
	assert.Equal(0x5, p.Registers().Ip)
}

func TestProcessorCrashed(t *testing.T) {
	assert := assert.New(t)

	// ld0 0, dec0: r0 = mem[9] - 1 = -1
	p, _ := newTestProcessor(t, RUN_MODE_GO, []int{0x9, 0x0, 0x5, 0x0})

	assert.NoError(p.Run())
	assert.Equal(STATE_CRASHED, p.State())

	fault := p.Fault()
	assert.ErrorIs(fault, ErrOutOfRange)

	var cycle *ErrCycle
	require.True(t, errors.As(fault, &cycle))
	assert.Equal(0x2, cycle.Ip)
	assert.Equal(OP_DEC0, cycle.Opcode)

	// The failed result is never stored.
	assert.Equal(0x9, p.Registers().R0)

	assert.ErrorIs(p.Run(), ErrCrashed)
	assert.NoError(p.PlayPause())
	assert.Equal(STATE_CRASHED, p.State())

	// Stop does not clear a crash.
	p.Stop()
	assert.Equal(STATE_CRASHED, p.State())
	assert.ErrorIs(p.Run(), ErrCrashed)
	assert.ErrorIs(p.Fault(), ErrOutOfRange)
	assert.Equal(0x3, p.Registers().Ip)

	p.Reset()
	assert.Equal(STATE_OFF, p.State())
	assert.NoError(p.Run())
	assert.Equal(STATE_CRASHED, p.State())
}

func TestProcessorFaults(t *testing.T) {
	table := []struct {
		name    string
		size    int
		bits    int
		program []int
		setup   func(p *Processor)
		ip      int
		fetched bool
		err     error
	}{
		{
			// jmp 15 to a bell in the last cell, with no cell to latch.
			name:    "latch_last_cell",
			program: []int{0xD, 0xF, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0x7},
			ip:      0xF,
			fetched: true,
			err:     ErrOutOfRange,
		},
		{
			name:    "jump_outside_memory",
			size:    8,
			program: []int{0xD, 0xC},
			ip:      0xC,
			err:     ErrInvalidAddress,
		},
		{
			name:    "invalid_mnemonic",
			bits:    8,
			program: []int{0x20, 0x0},
			ip:      0x0,
			fetched: true,
			err:     ErrInvalidMnemonic,
		},
		{
			// ld0 0, add: r0 = mem[9] + mem[0] = 0xF + 0x9
			name:    "add_overflow",
			program: []int{0x9, 0x0, 0x1, 0x0, 0x0, 0x0, 0x0, 0x0, 0x0, 0xF},
			ip:      0x2,
			fetched: true,
			err:     ErrOutOfRange,
		},
		{
			// ld1 0, sub: r0 = mem[0] - mem[10] = 0xA - 0xF
			name:    "sub_underflow",
			program: []int{0xA, 0x0, 0x2, 0x0, 0x0, 0x0, 0x0, 0x0, 0x0, 0x0, 0xF},
			ip:      0x2,
			fetched: true,
			err:     ErrOutOfRange,
		},
		{
			name:    "register_corrupt",
			program: []int{0x7, 0x0},
			setup: func(p *Processor) {
				p.regs.R1 = 0x10
			},
			ip:      0x0,
			fetched: true,
			err:     ErrRegisterCorrupt,
		},
		{
			name:    "memory_corrupt",
			program: []int{0x7, 0x0},
			setup: func(p *Processor) {
				p.memory.cells[0] = 0x10
			},
			ip:      0x0,
			err:     ErrInvalidValue,
		},
	}

	for _, entry := range table {
		t.Run(entry.name, func(t *testing.T) {
			assert := assert.New(t)

			size, bits := entry.size, entry.bits
			if size == 0 {
				size = MEMORY_SIZE
			}
			if bits == 0 {
				bits = MEMORY_BITS
			}

			p := NewProcessor(NewMemory(size, bits))
			p.Notifier = &io.Recorder{}
			require.NoError(t, p.SetRunMode(RUN_MODE_GO))
			require.NoError(t, p.Load(entry.program))
			if entry.setup != nil {
				entry.setup(p)
			}

			assert.NoError(p.Run())
			assert.Equal(STATE_CRASHED, p.State())

			fault := p.Fault()
			assert.ErrorIs(fault, entry.err)

			var cycle *ErrCycle
			require.True(t, errors.As(fault, &cycle))
			assert.Equal(entry.ip, cycle.Ip)
			assert.Equal(entry.fetched, cycle.Fetched)
			if !entry.fetched {
				// No instruction to name.
				assert.NotContains(fault.Error(), "(")
			}
		})
	}
}

func TestProcessorUnknownOpcode(t *testing.T) {
	assert := assert.New(t)

	p := NewProcessor(nil)
	_, err := p.execute(Opcode(OPCODE_COUNT), Registers{})
	assert.ErrorIs(err, ErrUnknownOpcode)
}

func TestProcessorInstructions(t *testing.T) {
	table := []struct {
		name    string
		program []int
		regs    Registers
		legacy  *Registers // Under ADVANCE_LEGACY, if not the same as regs.
		bells   int
		memory  map[int]int
	}{
		// r0 = mem[0] + mem[0]
		{name: "add", program: []int{0x1, 0x0}, regs: Registers{Ip: 0x2, R0: 0x2}},
		// r0 = mem[0] - mem[0]
		{name: "sub", program: []int{0x2, 0x0}, regs: Registers{Ip: 0x2}},
		{name: "inc0", program: []int{0x3, 0x0}, regs: Registers{Ip: 0x2, R0: 0x4}},
		{name: "inc1", program: []int{0x4, 0x0}, regs: Registers{Ip: 0x2, R1: 0x5}},
		// r0 = mem[0] - 1
		{name: "dec0", program: []int{0x5, 0x0}, regs: Registers{Ip: 0x2, R0: 0x4}},
		// dec1 increments.
		{name: "dec1", program: []int{0x6, 0x0}, regs: Registers{Ip: 0x2, R1: 0x7}},
		{name: "ld0", program: []int{0x9, 0x0, 0x0}, regs: Registers{Ip: 0x3, R0: 0x9}},
		{name: "ld1", program: []int{0xA, 0x0, 0x0}, regs: Registers{Ip: 0x3, R1: 0xA}},
		// ld0 0, st0 7
		{
			name:    "st0",
			program: []int{0x9, 0x0, 0xB, 0x7, 0x0},
			regs:    Registers{Ip: 0x5, R0: 0x9},
			memory:  map[int]int{0x7: 0x9},
		},
		// inc1, st1 7
		{
			name:    "st1",
			program: []int{0x4, 0xC, 0x7, 0x0},
			regs:    Registers{Ip: 0x4, R1: 0x5},
			memory:  map[int]int{0x7: 0x5},
		},
		// jz 3 over a bell. Legacy resumes past the halt at 3.
		{
			name:    "jz_taken",
			program: []int{0xE, 0x3, 0x7, 0x0},
			regs:    Registers{Ip: 0x4},
			legacy:  &Registers{Ip: 0x5},
		},
		// ld0 0, jz 6 not taken, bell. Legacy executes the operand cell
		// as dec1: r1 = mem[0] + 1.
		{
			name:    "jz_not_taken",
			program: []int{0x9, 0x0, 0xE, 0x6, 0x7, 0x0, 0x0},
			regs:    Registers{Ip: 0x6, R0: 0x9},
			legacy:  &Registers{Ip: 0x6, R0: 0x9, R1: 0xA},
			bells:   1,
		},
		// jnz branches when r0 is zero.
		{
			name:    "jnz_zero",
			program: []int{0xF, 0x3, 0x7, 0x0},
			regs:    Registers{Ip: 0x4},
			legacy:  &Registers{Ip: 0x5},
		},
		// A jnz that falls through steps over its operand under both
		// policies.
		{
			name:    "jnz_not_zero",
			program: []int{0x9, 0x0, 0xF, 0x6, 0x7, 0x0, 0x0},
			regs:    Registers{Ip: 0x6, R0: 0x9},
			bells:   1,
		},
	}

	for _, policy := range []AdvancePolicy{ADVANCE_WIDTH, ADVANCE_LEGACY} {
		for _, entry := range table {
			t.Run(policy.String()+"/"+entry.name, func(t *testing.T) {
				assert := assert.New(t)

				p, rec := newTestProcessor(t, RUN_MODE_GO, entry.program)
				p.Policy = policy

				assert.NoError(p.Run())
				assert.Equal(STATE_HALTED, p.State())

				expected := entry.regs
				if policy == ADVANCE_LEGACY && entry.legacy != nil {
					expected = *entry.legacy
				}

				regs := p.Registers()
				regs.Ss = 0
				assert.Equal(expected, regs)
				assert.Equal(entry.bells, rec.Bells)

				memory := p.Memory().Dump()
				for address, value := range entry.memory {
					assert.Equal(value, memory[address], address)
				}
			})
		}
	}
}

func TestProcessorJumpPolicy(t *testing.T) {
	assert := assert.New(t)

	// jmp 3, halt, bell, halt
	program := []int{0xD, 0x3, 0x0, 0x7, 0x0}

	p, rec := newTestProcessor(t, RUN_MODE_GO, program)
	assert.NoError(p.Run())
	assert.Equal(STATE_HALTED, p.State())
	assert.Equal(1, rec.Bells)
	assert.Equal(0x5, p.Registers().Ip)

	// Legacy resumes one cell past the target, skipping the bell.
	p, rec = newTestProcessor(t, RUN_MODE_GO, program)
	p.Policy = ADVANCE_LEGACY
	assert.NoError(p.Run())
	assert.Equal(STATE_HALTED, p.State())
	assert.Equal(0, rec.Bells)
	assert.Equal(0x5, p.Registers().Ip)
}

func TestProcessorTimed(t *testing.T) {
	assert := assert.New(t)

	p, rec := newTestProcessor(t, RUN_MODE_TIMED, []int{0x7, 0x7, 0x7, 0x0})
	p.Delay = 10 * time.Millisecond
	sched := p.Scheduler.(*manualScheduler)

	assert.NoError(p.Run())
	assert.Equal(1, rec.Bells)
	assert.Equal(1, len(sched.pending))

	assert.True(sched.fire())
	assert.Equal(2, rec.Bells)
	assert.True(sched.fire())
	assert.Equal(3, rec.Bells)
	assert.True(sched.fire())
	assert.Equal(STATE_HALTED, p.State())

	// Nothing is scheduled once halted.
	assert.False(sched.fire())
	assert.Equal(4, p.Cycles())
	for _, delay := range sched.delays {
		assert.Equal(10*time.Millisecond, delay)
	}
}

func TestProcessorTimedStop(t *testing.T) {
	assert := assert.New(t)

	p, rec := newTestProcessor(t, RUN_MODE_TIMED, []int{0x7, 0x7, 0x7, 0x0})
	sched := p.Scheduler.(*manualScheduler)

	assert.NoError(p.Run())
	p.Stop()
	assert.Equal(STATE_OFF, p.State())

	assert.True(sched.fire())
	assert.Equal(1, rec.Bells)
	assert.Equal(1, p.Cycles())
	assert.Empty(sched.pending)

	// A stale callback does not run the new run twice.
	assert.NoError(p.Run())
	assert.Equal(2, rec.Bells)
	p.Stop()
	assert.NoError(p.Run())
	assert.Equal(3, rec.Bells)
	assert.Equal(2, len(sched.pending))

	assert.True(sched.fire())
	assert.Equal(3, rec.Bells)
	assert.True(sched.fire())
	assert.Equal(STATE_HALTED, p.State())
}

func TestProcessorTimedPause(t *testing.T) {
	assert := assert.New(t)

	p, rec := newTestProcessor(t, RUN_MODE_TIMED, []int{0x7, 0x7, 0x7, 0x0})
	sched := p.Scheduler.(*manualScheduler)

	assert.NoError(p.Run())
	assert.NoError(p.Pause())

	assert.True(sched.fire())
	assert.Equal(1, rec.Bells)
	assert.Equal(STATE_PAUSED, p.State())

	assert.NoError(p.PlayPause())
	assert.Equal(STATE_RUNNING, p.State())
	assert.Equal(2, rec.Bells)
	assert.Equal(1, len(sched.pending))
}

func TestProcessorGoStop(t *testing.T) {
	assert := assert.New(t)

	// jmp 0, forever.
	p, _ := newTestProcessor(t, RUN_MODE_GO, []int{0xD, 0x0})

	done := make(chan error)
	go func() {
		done <- p.Run()
	}()

	assert.Eventually(func() bool {
		return p.Cycles() > 100
	}, time.Second, time.Millisecond)

	p.Stop()

	select {
	case err := <-done:
		assert.NoError(err)
	case <-time.After(time.Second):
		t.Fatal("run did not stop")
	}

	assert.Equal(STATE_OFF, p.State())
}

func TestProcessorPlayPause(t *testing.T) {
	assert := assert.New(t)

	p, _ := newTestProcessor(t, RUN_MODE_STEPPED, []int{0x7, 0x0})

	assert.NoError(p.PlayPause())
	assert.Equal(STATE_RUNNING, p.State())

	assert.ErrorIs(p.PlayPause(), ErrAlreadyRunning)
	assert.Equal(STATE_RUNNING, p.State())
}

func TestNotifierFuncs(t *testing.T) {
	assert := assert.New(t)

	var printed []int
	nf := NotifierFuncs{
		PrintFunc: func(value int) { printed = append(printed, value) },
	}

	nf.Bell()
	nf.Print(3)
	assert.Equal([]int{3}, printed)
}
