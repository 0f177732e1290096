// Package io provides the notification backends for the 4719 emulator:
// where its bell rings and where its printed values go.
package io

// Notifier receives the bell and print side effects of the processor.
type Notifier interface {
	// Bell rings the bell.
	Bell()
	// Print emits a single printed value.
	Print(value int)
}

// BEL is the terminal bell character.
const BEL = '\a'
