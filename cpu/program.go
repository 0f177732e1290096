package cpu

import (
	"iter"
)

// Word is a single assembled cell with its source location.
type Word struct {
	LineNo int    // Source line.
	Ip     int    // Address the cell loads at.
	Token  string // Source token.
	Value  int    // Cell value.
}

// Program is an assembled listing.
type Program struct {
	Words []Word
}

// Len returns the number of cells in the program.
func (prog *Program) Len() int {
	return len(prog.Words)
}

// Debug returns the word that loads at ip.
func (prog *Program) Debug(ip int) (word Word, ok bool) {
	if ip < 0 || ip >= len(prog.Words) {
		return
	}

	return prog.Words[ip], true
}

// Binary returns the cell values to load at address 0.
func (prog *Program) Binary() (bins []int) {
	for _, code := range prog.Codes() {
		bins = append(bins, code)
	}

	return
}

// Codes iterates over the address and value of each cell.
func (prog *Program) Codes() iter.Seq2[int, int] {
	return func(yield func(ip int, code int) bool) {
		for _, word := range prog.Words {
			if !yield(word.Ip, word.Value) {
				return
			}
		}
	}
}
