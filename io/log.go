package io

import (
	"io"
	"log"
	"os"
)

// Log is the default notifier. Printed values go to the log, and the bell is
// a BEL written to Terminal. A bell that cannot sound is only logged.
type Log struct {
	Terminal io.Writer // Bell destination, os.Stdout if nil.
}

func (lg *Log) Bell() {
	term := lg.Terminal
	if term == nil {
		term = os.Stdout
	}

	_, err := term.Write([]byte{BEL})
	if err != nil {
		log.Printf("4719 BELL: %v", err)
		return
	}

	log.Printf("4719 BELL sounded")
}

func (lg *Log) Print(value int) {
	log.Printf("4719 %v", value)
}
