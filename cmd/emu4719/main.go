// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/tebeka/atexit"

	"github.com/ezrec/emu4719/config"
	"github.com/ezrec/emu4719/cpu"
	"github.com/ezrec/emu4719/emulator"
	"github.com/ezrec/emu4719/io"
)

func main() {
	var compile string
	var configFile string
	var mode string
	var policy string
	var format string
	var delay time.Duration
	var dump bool
	var trace bool
	var verbose bool

	flag.StringVar(&compile, "c", "-", ".asm file to compile and run")
	flag.StringVar(&configFile, "config", "", ".toml machine configuration")
	flag.StringVar(&mode, "m", "", "Run mode: timed, stepped or go")
	flag.StringVar(&policy, "p", "", "Instruction pointer advance policy: width or legacy")
	flag.StringVar(&format, "f", "", "Print format: decimal, hex or binary")
	flag.DurationVar(&delay, "d", 0, "Delay between timed cycles")
	flag.BoolVar(&dump, "dump", false, "Dump registers and memory on exit")
	flag.BoolVar(&trace, "trace", false, "Dump the execution history on exit")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	log.SetFlags(0)

	if flag.NArg() != 0 {
		atexit.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	cfg := config.Default()
	if len(configFile) != 0 {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			atexit.Fatal(err)
		}
	}

	// Flags override the configuration file.
	if len(mode) != 0 {
		cfg.Processor.RunMode = mode
	}
	if len(policy) != 0 {
		cfg.Processor.AdvancePolicy = policy
	}
	if len(format) != 0 {
		cfg.Output.Format = format
	}
	if delay != 0 {
		cfg.Processor.Delay.Duration = delay
	}
	if verbose {
		cfg.Verbose = true
	}

	emu, err := emulator.NewEmulator(cfg)
	if err != nil {
		atexit.Fatal(err)
	}

	outputFormat, _ := cfg.Format()
	console := &io.Console{Output: os.Stdout, Format: outputFormat}
	if cfg.Output.Bell {
		emu.Notifier = console
	} else {
		emu.Notifier = cpu.NotifierFuncs{PrintFunc: console.Print}
	}

	inf := os.Stdin
	if compile != "-" {
		inf, err = os.Open(compile)
		if err != nil {
			atexit.Fatalf("%v: %v", compile, err)
		}
		defer inf.Close()
	}

	err = emu.Assemble(inf)
	if err != nil {
		atexit.Fatalf("%v: %v", compile, err)
	}

	err = emu.Reset()
	if err != nil {
		atexit.Fatalf("%v: %v", compile, err)
	}

	atexit.Register(func() {
		if trace {
			fmt.Println(emu.Trace())
		}
		if dump {
			fmt.Println(emu.Dump())
		}
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if emu.RunMode() == cpu.RUN_MODE_STEPPED {
		err = runStepped(ctx, emu, compile == "-")
	} else {
		err = emu.Execute(ctx)
	}
	if err != nil {
		atexit.Fatal(err)
	}

	atexit.Exit(0)
}

// runStepped performs one cycle per line read from the terminal.
func runStepped(ctx context.Context, emu *emulator.Emulator, sourceIsStdin bool) (err error) {
	if sourceIsStdin {
		err = fmt.Errorf("stepped mode reads triggers from stdin; use -c to name the source")
		return
	}

	input := bufio.NewScanner(os.Stdin)
	for done := false; !done; {
		if ctx.Err() != nil {
			emu.Stop()
			return ctx.Err()
		}

		done, err = emu.Tick()
		if err != nil {
			return
		}

		// The instruction just executed, as it was dispatched.
		if snap, ok := emu.Last(); ok {
			ip := snap.Registers.Ip
			log.Printf("line %d: %-4v %v", emu.LineNo(ip), cpu.Opcode(snap.Memory[ip]), snap.Registers)
		}

		if !done && !input.Scan() {
			emu.Stop()
			return
		}
	}

	return
}
