// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"log"
	"maps"
	"strconv"
	"strings"
	"unicode"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/emu4719/internal"
)

// Predefined system equates, visible to $(...) expressions.
var sysEquate = map[string]int{}

func init() {
	for op := range Opcodes() {
		sysEquate[op.String()] = int(op)
	}
}

// Assembler translates 4719 assembly source into a Program.
//
// Source is whitespace separated tokens. A '#' starts a comment that runs to
// the end of the line. Each token is a case-insensitive mnemonic, a decimal
// literal, or a $(...) compile-time expression without spaces.
type Assembler struct {
	Verbose bool // If set, verbosely logs the assembler actions.
	Bits    int  // Cell width in bits. MEMORY_BITS if zero.
	Size    int  // Memory size in cells. Unlimited if zero.

	predefine map[string]int
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value int) {
	if asm.predefine == nil {
		asm.predefine = map[string]int{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// bits returns the cell width in use.
func (asm *Assembler) bits() int {
	if asm.Bits == 0 {
		return MEMORY_BITS
	}
	return asm.Bits
}

// tokenizeLine returns the lowercase tokens of one line of source.
func tokenizeLine(line string) (words []string) {
	line, _, _ = strings.Cut(line, "#")
	for _, word := range strings.Fields(line) {
		words = append(words, strings.ToLower(word))
	}

	return
}

// Tokenize returns the tokens of source, in order, with comments removed.
// The sequence may be iterated more than once.
func Tokenize(source string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for line := range strings.Lines(source) {
			for _, word := range tokenizeLine(line) {
				if !yield(word) {
					return
				}
			}
		}
	}
}

// Compile assembles source with the default cell width, returning the cell
// values to load at address 0.
func Compile(source string) (code []int, err error) {
	asm := &Assembler{}
	prog, err := asm.Parse(strings.NewReader(source))
	if err != nil {
		return
	}

	code = prog.Binary()
	return
}

// valueOf returns the cell value of a single token.
func (asm *Assembler) valueOf(word string, lineno int) (value int, err error) {
	switch {
	case strings.HasPrefix(word, "$(") && strings.HasSuffix(word, ")"):
		value, err = asm.parenEval(word[2:len(word)-1], lineno)
		if err != nil {
			return
		}
	default:
		op, ok := ParseOpcode(word)
		if ok {
			value = int(op)
			return
		}

		value, err = strconv.Atoi(word)
		if err != nil {
			// Anything that starts like a name was meant as a mnemonic.
			err = ErrInvalidValue
			if unicode.IsLetter(rune(word[0])) {
				err = ErrInvalidMnemonic
			}
			return
		}
	}

	if value < 0 || value >= (1<<asm.bits()) {
		err = ErrOutOfRange
		return
	}

	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string, lineno int) (value int, err error) {
	thread := starlark.Thread{Name: "asm"}
	opts := syntax.FileOptions{}

	pred := starlark.StringDict{}
	equates := internal.IterSeq2Concat(
		maps.All(sysEquate),
		maps.All(map[string]int{
			"bits":   asm.bits(),
			"size":   asm.Size,
			"lineno": lineno,
		}),
		maps.All(asm.predefine),
	)
	for key, val := range equates {
		pred[key] = starlark.MakeInt(val)
	}

	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrParseExpression, err)
		return
	}
	st_int, ok := dict["rc"].(starlark.Int)
	if !ok {
		err = fmt.Errorf("%w: %v is not an int", ErrParseExpression, dict["rc"])
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok {
		err = fmt.Errorf("%w: %v does not fit", ErrParseExpression, st_int)
		return
	}

	value = int(st_int64)
	return
}

// Parse parses an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	prog = &Program{}

	var lineno int
	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		for _, word := range tokenizeLine(text) {
			var value int
			value, err = asm.valueOf(word, lineno)
			if err != nil {
				err = &ErrSyntax{LineNo: lineno, Token: word, Err: err}
				prog = nil
				return
			}

			if asm.Size > 0 && prog.Len() >= asm.Size {
				err = &ErrSyntax{LineNo: lineno, Token: word, Err: ErrProgramTooLarge}
				prog = nil
				return
			}

			prog.Words = append(prog.Words, Word{
				LineNo: lineno,
				Ip:     prog.Len(),
				Token:  word,
				Value:  value,
			})
		}
	}

	err = scanner.Err()
	if err != nil {
		prog = nil
	}

	return
}
