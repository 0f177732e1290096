package cpu

import (
	"fmt"
	"strings"
)

// State is the processor's execution state.
type State int

//go:generate go tool stringer -linecomment -type=State
const (
	STATE_OFF     = State(0) // off
	STATE_RUNNING = State(1) // running
	STATE_PAUSED  = State(2) // paused
	STATE_HALTED  = State(3) // halted
	STATE_CRASHED = State(4) // crashed
)

// RunMode is the scheduling policy between cycles.
type RunMode int

//go:generate go tool stringer -linecomment -type=RunMode
const (
	RUN_MODE_TIMED   = RunMode(0) // timed
	RUN_MODE_STEPPED = RunMode(1) // stepped
	RUN_MODE_GO      = RunMode(2) // go
)

// AdvancePolicy selects who moves the instruction pointer after a cycle.
type AdvancePolicy int

//go:generate go tool stringer -linecomment -type=AdvancePolicy
const (
	// The cycle advances ip by the instruction width, unless it jumped.
	ADVANCE_WIDTH = AdvancePolicy(0) // width
	// Two-cell instructions step past their operand themselves, and the
	// cycle always adds one more. A jump to N resumes at N+1.
	ADVANCE_LEGACY = AdvancePolicy(1) // legacy
)

// ParseRunMode returns the run mode named by text.
func ParseRunMode(text string) (mode RunMode, err error) {
	for mode = RUN_MODE_TIMED; mode <= RUN_MODE_GO; mode++ {
		if strings.EqualFold(mode.String(), text) {
			return
		}
	}

	err = fmt.Errorf("%w: run mode %q", ErrInvalidValue, text)
	return
}

// ParseAdvancePolicy returns the advance policy named by text.
func ParseAdvancePolicy(text string) (policy AdvancePolicy, err error) {
	for policy = ADVANCE_WIDTH; policy <= ADVANCE_LEGACY; policy++ {
		if strings.EqualFold(policy.String(), text) {
			return
		}
	}

	err = fmt.Errorf("%w: advance policy %q", ErrInvalidValue, text)
	return
}

// event drives a state transition.
type event int

const (
	eventRun event = iota
	eventPause
	eventHalt
	eventFault
	eventStop
	eventReset
	eventCount
)

// transition is the outcome of an event in a state: either a new state, or
// the error reported to the caller.
type transition struct {
	next State
	err  error
}

// transitions is the complete state machine.
var transitions = [STATE_CRASHED + 1][eventCount]transition{
	STATE_OFF: {
		eventRun:   {next: STATE_RUNNING},
		eventPause: {next: STATE_OFF, err: ErrNotRunning},
		eventHalt:  {next: STATE_OFF, err: ErrNotRunning},
		eventFault: {next: STATE_CRASHED},
		eventStop:  {next: STATE_OFF},
		eventReset: {next: STATE_OFF},
	},
	STATE_RUNNING: {
		eventRun:   {next: STATE_RUNNING, err: ErrAlreadyRunning},
		eventPause: {next: STATE_PAUSED},
		eventHalt:  {next: STATE_HALTED},
		eventFault: {next: STATE_CRASHED},
		eventStop:  {next: STATE_OFF},
		eventReset: {next: STATE_OFF},
	},
	STATE_PAUSED: {
		eventRun:   {next: STATE_RUNNING},
		eventPause: {next: STATE_PAUSED, err: ErrNotRunning},
		eventHalt:  {next: STATE_PAUSED, err: ErrNotRunning},
		eventFault: {next: STATE_CRASHED},
		eventStop:  {next: STATE_OFF},
		eventReset: {next: STATE_OFF},
	},
	STATE_HALTED: {
		eventRun:   {next: STATE_RUNNING},
		eventPause: {next: STATE_HALTED, err: ErrNotRunning},
		eventHalt:  {next: STATE_HALTED, err: ErrNotRunning},
		eventFault: {next: STATE_CRASHED},
		eventStop:  {next: STATE_OFF},
		eventReset: {next: STATE_OFF},
	},
	STATE_CRASHED: {
		eventRun:   {next: STATE_CRASHED, err: ErrCrashed},
		eventPause: {next: STATE_CRASHED, err: ErrNotRunning},
		eventHalt:  {next: STATE_CRASHED, err: ErrNotRunning},
		eventFault: {next: STATE_CRASHED},
		eventStop:  {next: STATE_CRASHED},
		eventReset: {next: STATE_OFF},
	},
}

// next returns the state reached from state by ev.
func (state State) next(ev event) (next State, err error) {
	t := transitions[state][ev]
	return t.next, t.err
}
