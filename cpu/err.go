package cpu

import (
	"errors"

	"github.com/ezrec/emu4719/translate"
)

var f = translate.From

var (
	// Memory and register errors
	ErrOutOfRange      = errors.New(f("out of range"))
	ErrInvalidValue    = errors.New(f("invalid value"))
	ErrRegisterCorrupt = errors.New(f("register corrupt"))

	// Decode errors
	ErrInvalidAddress  = errors.New(f("invalid address"))
	ErrInvalidMnemonic = errors.New(f("invalid mnemonic"))
	ErrUnknownOpcode   = errors.New(f("unknown opcode"))

	// Processor control errors
	ErrAlreadyRunning = errors.New(f("processor is already running"))
	ErrNotRunning     = errors.New(f("processor is not running"))
	ErrCrashed        = errors.New(f("processor crashed, reset required"))
	ErrRunModeBusy    = errors.New(f("cannot change run mode while running"))

	// Assembler errors
	ErrProgramTooLarge = errors.New(f("program larger than memory"))
	ErrParseExpression = errors.New(f("expression invalid"))
)

// ErrAccess describes a failed memory access.
type ErrAccess struct {
	Op      string // "read" or "write"
	Address int
	Value   int
	Err     error
}

func (err *ErrAccess) Error() string {
	if err.Op == "write" {
		return f("%v 0x%02X <- 0x%02X: %v", err.Op, err.Address, err.Value, err.Err)
	}
	return f("%v 0x%02X: %v", err.Op, err.Address, err.Err)
}

func (err *ErrAccess) Unwrap() error {
	return err.Err
}

// ErrCycle is the fault that crashed the processor during a cycle.
type ErrCycle struct {
	Ip      int
	Opcode  Opcode
	Fetched bool // Opcode is only meaningful if set.
	Err     error
}

func (err *ErrCycle) Error() string {
	if !err.Fetched {
		return f("ip 0x%02X: %v", err.Ip, err.Err)
	}
	return f("ip 0x%02X (%v): %v", err.Ip, err.Opcode, err.Err)
}

func (err *ErrCycle) Unwrap() error {
	return err.Err
}

// ErrSyntax locates an assembler error in the source text.
type ErrSyntax struct {
	LineNo int
	Token  string
	Err    error
}

func (err *ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Token, err.Err)
}

func (err *ErrSyntax) Unwrap() error {
	return err.Err
}
