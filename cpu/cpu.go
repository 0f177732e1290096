package cpu

import (
	"log"
	"sync"
	"time"

	"github.com/ezrec/emu4719/io"
)

const (
	DELAY = time.Second // Default pause between RUN_MODE_TIMED cycles.
)

// Processor is the simulation context for the 4719.
type Processor struct {
	Verbose bool // Set to enable verbose logging.

	HistoryLimit int           // Number of snapshots kept.
	Delay        time.Duration // Pause between RUN_MODE_TIMED cycles.
	Policy       AdvancePolicy // Instruction pointer advance policy.
	Notifier     Notifier      // Bell and print handler.
	Scheduler    Scheduler     // Paces RUN_MODE_TIMED cycles.

	mu      sync.Mutex
	memory  *Memory
	regs    Registers
	state   State
	mode    RunMode
	history History
	output  []int
	fault   error
	cycles  int
	epoch   int // Bumped on every run, stop and reset to expire scheduled cycles.
}

// NewProcessor creates a processor attached to mem. A nil mem gets the
// default 16 cell, 4-bit memory.
func NewProcessor(mem *Memory) (p *Processor) {
	if mem == nil {
		mem = NewMemory(MEMORY_SIZE, MEMORY_BITS)
	}

	p = &Processor{
		HistoryLimit: HISTORY_LIMIT,
		Delay:        DELAY,
		Notifier:     &io.Log{},
		Scheduler:    TimerScheduler{},
		memory:       mem,
	}

	p.reset()

	return
}

// Memory returns the processor's memory.
func (p *Processor) Memory() *Memory {
	return p.memory
}

// State returns the current execution state.
func (p *Processor) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.state
}

// Registers returns a copy of the registers.
func (p *Processor) Registers() Registers {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.regs
}

// History returns a copy of the snapshot history, newest last.
func (p *Processor) History() []Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.history.Snapshots()
}

// Last returns a copy of the newest snapshot: the state the most recent
// instruction was dispatched from.
func (p *Processor) Last() (snap Snapshot, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	snap, ok = p.history.Peek()
	if ok {
		snap = snap.clone()
	}

	return
}

// Output returns a copy of every value printed, in order.
func (p *Processor) Output() []int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]int(nil), p.output...)
}

// Fault returns the error that crashed the processor, if any.
func (p *Processor) Fault() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.fault
}

// Cycles returns the number of cycles executed since reset.
func (p *Processor) Cycles() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.cycles
}

// RunMode returns the scheduling policy between cycles.
func (p *Processor) RunMode() RunMode {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.mode
}

// SetRunMode changes the scheduling policy. It fails while running.
func (p *Processor) SetRunMode(mode RunMode) (err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == STATE_RUNNING {
		err = ErrRunModeBusy
		return
	}

	p.mode = mode
	return
}

// Load writes a program into memory, starting at address 0.
func (p *Processor) Load(program []int) (err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.memory.Load(program)
}

// Reset the processor.
// - Clears the registers, history and fault.
// - Expires any scheduled cycle.
// - Leaves memory and output untouched.
func (p *Processor) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.reset()
}

func (p *Processor) reset() {
	if p.Verbose {
		log.Printf("4719: reset")
	}

	p.apply(eventReset)
	p.history.Reset()
	p.regs = Registers{}
	p.fault = nil
	p.cycles = 0
	p.epoch++
}

// Stop turns the processor off, keeping registers and memory. A crashed
// processor stays crashed until Reset.
func (p *Processor) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.apply(eventStop)
	p.epoch++
}

// Pause suspends a running processor. Run or Continue resumes it.
func (p *Processor) Pause() (err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.apply(eventPause)
}

// Run starts or resumes execution and performs the first cycle.
//
// In RUN_MODE_TIMED the following cycles are scheduled every Delay and Run
// returns at once. In RUN_MODE_GO Run returns only once the processor stops
// running. In RUN_MODE_STEPPED each further cycle needs a call to Step.
func (p *Processor) Run() (err error) {
	p.mu.Lock()
	err = p.apply(eventRun)
	if err != nil {
		p.mu.Unlock()
		if p.Verbose {
			log.Printf("4719: run: %v", err)
		}
		return
	}

	p.epoch++
	epoch := p.epoch
	mode := p.mode

	p.tick()
	if mode == RUN_MODE_TIMED {
		p.schedule()
	}
	p.mu.Unlock()

	if mode == RUN_MODE_GO {
		for p.cycle(epoch) {
		}
	}

	return
}

// Continue resumes execution. It is the same as Run.
func (p *Processor) Continue() error {
	return p.Run()
}

// Step performs a single cycle of a running processor.
func (p *Processor) Step() (err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != STATE_RUNNING {
		err = ErrNotRunning
		return
	}

	p.tick()

	return
}

// PlayPause starts or resumes the processor, logging the state change.
func (p *Processor) PlayPause() (err error) {
	saved := p.State()

	switch saved {
	case STATE_RUNNING, STATE_PAUSED, STATE_OFF, STATE_HALTED:
		err = p.Run()
	default:
		// A crashed processor needs a reset.
	}

	log.Printf("4719: %v => %v", saved, p.State())

	return
}

// apply moves the state machine by ev.
func (p *Processor) apply(ev event) (err error) {
	next, err := p.state.next(ev)
	if err != nil {
		return
	}

	if p.Verbose && next != p.state {
		log.Printf("4719: %v => %v", p.state, next)
	}
	p.state = next

	return
}

// cycle performs one RUN_MODE_GO cycle, unless the run that started it has
// been stopped. It returns false once the run is over.
func (p *Processor) cycle(epoch int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.epoch != epoch || p.state != STATE_RUNNING {
		return false
	}

	p.tick()

	return p.state == STATE_RUNNING
}

// schedule arranges the next RUN_MODE_TIMED cycle. The callback cannot be
// revoked, so it re-checks that its run is still current.
func (p *Processor) schedule() {
	if p.state != STATE_RUNNING {
		return
	}

	epoch := p.epoch
	p.Scheduler.AfterFunc(p.Delay, func() {
		p.mu.Lock()
		defer p.mu.Unlock()

		if p.epoch != epoch || p.state != STATE_RUNNING {
			return
		}

		p.tick()
		p.schedule()
	})
}

// tick executes a single fetch-decode-execute cycle. Faults crash the
// processor and are never returned.
func (p *Processor) tick() {
	if p.state != STATE_RUNNING {
		return
	}

	p.cycles++

	ip := p.regs.Ip
	op, fetched, jumped, err := p.dispatch()

	switch {
	case err != nil, p.Policy == ADVANCE_LEGACY:
		p.regs.Ip++
	case !jumped:
		p.regs.Ip += op.Width()
	}

	if err != nil {
		p.crash(&ErrCycle{Ip: ip, Opcode: op, Fetched: fetched, Err: err})
	}
}

// dispatch fetches, validates and executes the instruction at Ip. fetched is
// set once the opcode has been read from memory.
func (p *Processor) dispatch() (op Opcode, fetched bool, jumped bool, err error) {
	ip := p.regs.Ip

	if !p.memory.ValidAddress(ip) {
		err = &ErrAccess{Op: "fetch", Address: ip, Err: ErrInvalidAddress}
		return
	}

	code, err := p.memory.Read(ip)
	if err != nil {
		return
	}

	op = Opcode(code)
	fetched = true
	if code < 0 || code >= OPCODE_COUNT {
		err = &ErrAccess{Op: "fetch", Address: ip, Value: code, Err: ErrInvalidMnemonic}
		return
	}

	if !op.Valid() {
		err = &ErrAccess{Op: "fetch", Address: ip, Value: code, Err: ErrUnknownOpcode}
		return
	}

	// Latched every cycle, whatever the instruction width.
	ss, err := p.memory.Read(ip + 1)
	if err != nil {
		return
	}
	p.regs.Ss = ss

	err = p.regs.validate(p.memory)
	if err != nil {
		return
	}

	snap := Snapshot{
		Registers: p.regs,
		Memory:    p.memory.Dump(),
	}
	p.history.Limit = p.HistoryLimit
	p.history.Push(snap)

	if p.Verbose {
		log.Printf("4719: %02X: %-4v %v", ip, op, snap.Registers)
	}

	jumped, err = p.execute(op, snap.Registers)

	return
}

// crash records the fault and moves to STATE_CRASHED.
func (p *Processor) crash(err error) {
	log.Printf("4719: crash: %v", err)

	p.fault = err
	p.apply(eventFault)
}

// ringBell sounds the bell.
func (p *Processor) ringBell() {
	if p.Notifier != nil {
		p.Notifier.Bell()
	}
}

// emit appends value to the output and notifies the print handler.
func (p *Processor) emit(value int) {
	p.output = append(p.output, value)

	if p.Notifier != nil {
		p.Notifier.Print(value)
	}
}
