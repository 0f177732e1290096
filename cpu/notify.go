package cpu

import (
	"time"
)

// Notifier receives the processor's bell and print side effects.
// Implementations are called with the processor locked, and must not call
// back into the processor.
type Notifier interface {
	Bell()
	Print(value int)
}

// NotifierFuncs adapts a pair of functions to a Notifier. Nil functions are
// ignored.
type NotifierFuncs struct {
	BellFunc  func()
	PrintFunc func(value int)
}

func (nf NotifierFuncs) Bell() {
	if nf.BellFunc != nil {
		nf.BellFunc()
	}
}

func (nf NotifierFuncs) Print(value int) {
	if nf.PrintFunc != nil {
		nf.PrintFunc(value)
	}
}

// Scheduler runs f after a delay. It paces RUN_MODE_TIMED execution.
type Scheduler interface {
	AfterFunc(delay time.Duration, f func())
}

// TimerScheduler schedules with the runtime's timers.
type TimerScheduler struct{}

func (TimerScheduler) AfterFunc(delay time.Duration, f func()) {
	time.AfterFunc(delay, f)
}
