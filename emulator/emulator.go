// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/ezrec/emu4719/config"
	"github.com/ezrec/emu4719/cpu"
)

const (
	POLL_INTERVAL = 50 * time.Millisecond // Longest wait between state checks.
)

// Emulator state. Processor + assembled program.
type Emulator struct {
	Verbose        bool         // If set, enables verbose logging.
	*cpu.Processor              // Reference to the processor simulation.
	Program        *cpu.Program // Reference to the currently loaded program listing.

	Config *config.Config
}

// NewEmulator creates a new emulator for a machine configuration. A nil
// configuration is the default machine.
func NewEmulator(cfg *config.Config) (emu *Emulator, err error) {
	if cfg == nil {
		cfg = config.Default()
	}

	err = cfg.Validate()
	if err != nil {
		return
	}

	mode, _ := cfg.RunMode()
	policy, _ := cfg.AdvancePolicy()

	proc := cpu.NewProcessor(cpu.NewMemory(cfg.Memory.Size, cfg.Memory.Bits))
	proc.Verbose = cfg.Verbose
	proc.HistoryLimit = cfg.Processor.HistoryLimit
	proc.Delay = cfg.Processor.Delay.Duration
	proc.Policy = policy

	err = proc.SetRunMode(mode)
	if err != nil {
		return
	}

	emu = &Emulator{
		Verbose:   cfg.Verbose,
		Processor: proc,
		Program:   &cpu.Program{},
		Config:    cfg,
	}

	return
}

// Assemble parses source into the program that Reset loads.
func (emu *Emulator) Assemble(input io.Reader) (err error) {
	mem := emu.Processor.Memory()

	asm := &cpu.Assembler{
		Verbose: emu.Verbose,
		Bits:    mem.Bits(),
		Size:    mem.Size(),
	}

	prog, err := asm.Parse(input)
	if err != nil {
		return
	}

	emu.Program = prog

	return
}

// Reset the processor, clear memory, and load the program.
func (emu *Emulator) Reset() (err error) {
	emu.Processor.Reset()
	emu.Processor.Memory().Clear()

	err = emu.Processor.Load(emu.Program.Binary())

	return
}

// Ip returns current instruction pointer.
func (emu *Emulator) Ip() int {
	return emu.Processor.Registers().Ip
}

// LineNo returns the source line of the cell at ip, or 0 if the cell was
// not assembled from source.
func (emu *Emulator) LineNo(ip int) int {
	word, ok := emu.Program.Debug(ip)
	if !ok {
		return 0
	}

	return word.LineNo
}

// Err returns the runtime error of a crashed processor, located in the
// program source.
func (emu *Emulator) Err() (err error) {
	if emu.Processor.State() != cpu.STATE_CRASHED {
		return
	}

	fault := emu.Processor.Fault()
	ip := emu.Ip()

	var cycle *cpu.ErrCycle
	if errors.As(fault, &cycle) {
		ip = cycle.Ip
	}

	err = &ErrRuntime{LineNo: emu.LineNo(ip), Ip: ip, Err: fault}
	return
}

// Tick performs a single cycle of the emulator, starting the processor in
// RUN_MODE_STEPPED if it is not running. done is set once the processor is
// no longer running.
func (emu *Emulator) Tick() (done bool, err error) {
	switch emu.Processor.State() {
	case cpu.STATE_RUNNING:
		err = emu.Processor.Step()
	case cpu.STATE_CRASHED:
		done = true
		err = emu.Err()
		return
	default:
		err = emu.Processor.SetRunMode(cpu.RUN_MODE_STEPPED)
		if err != nil {
			return
		}
		err = emu.Processor.Run()
	}
	if err != nil {
		return
	}

	done = emu.Processor.State() != cpu.STATE_RUNNING
	err = emu.Err()

	return
}

// Execute runs the loaded program in the configured run mode until the
// processor stops running or ctx is done. A RUN_MODE_STEPPED processor
// performs only its first cycle.
func (emu *Emulator) Execute(ctx context.Context) (err error) {
	err = emu.Processor.Run()
	if err != nil {
		return
	}

	if emu.Processor.RunMode() == cpu.RUN_MODE_TIMED {
		err = emu.Wait(ctx)
		if err != nil {
			return
		}
	}

	err = emu.Err()

	return
}

// Wait blocks while the processor runs. If ctx is done first, the processor
// is stopped and the context's error returned.
func (emu *Emulator) Wait(ctx context.Context) (err error) {
	interval := min(emu.Processor.Delay/4, POLL_INTERVAL)
	if interval <= 0 {
		interval = time.Millisecond
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for emu.Processor.State() == cpu.STATE_RUNNING {
		select {
		case <-ctx.Done():
			emu.Processor.Stop()
			err = ctx.Err()
			return
		case <-ticker.C:
		}
	}

	return
}
