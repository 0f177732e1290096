package io

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Format selects how Console renders printed values.
type Format int

//go:generate go tool stringer -linecomment -type=Format
const (
	FORMAT_DECIMAL = Format(0) // decimal
	FORMAT_HEX     = Format(1) // hex
	FORMAT_BINARY  = Format(2) // binary
)

// ParseFormat returns the format named by text.
func ParseFormat(text string) (format Format, err error) {
	for format = FORMAT_DECIMAL; format <= FORMAT_BINARY; format++ {
		if strings.EqualFold(format.String(), text) {
			return
		}
	}

	err = fmt.Errorf("%w: %q", ErrFormatInvalid, text)
	return
}

// Console writes one printed value per line to Output, and rings the bell
// on Terminal.
type Console struct {
	Output   io.Writer // Print destination, os.Stdout if nil.
	Terminal io.Writer // Bell destination, Output if nil.
	Format   Format
}

func (con *Console) output() io.Writer {
	if con.Output == nil {
		return os.Stdout
	}
	return con.Output
}

func (con *Console) Bell() {
	term := con.Terminal
	if term == nil {
		term = con.output()
	}

	// A silent terminal is not an error.
	term.Write([]byte{BEL})
}

func (con *Console) Print(value int) {
	var text string
	switch con.Format {
	case FORMAT_HEX:
		text = fmt.Sprintf("0x%X", value)
	case FORMAT_BINARY:
		text = fmt.Sprintf("%04b", value)
	default:
		text = fmt.Sprintf("%d", value)
	}

	fmt.Fprintln(con.output(), text)
}
