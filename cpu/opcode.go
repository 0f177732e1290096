package cpu

import (
	"iter"
	"strings"
)

// Opcode is a 4-bit instruction code.
type Opcode int

//go:generate go tool stringer -linecomment -type=Opcode
const (
	OP_HALT   = Opcode(0x00) // halt
	OP_ADD    = Opcode(0x01) // add
	OP_SUB    = Opcode(0x02) // sub
	OP_INC0   = Opcode(0x03) // inc0
	OP_INC1   = Opcode(0x04) // inc1
	OP_DEC0   = Opcode(0x05) // dec0
	OP_DEC1   = Opcode(0x06) // dec1
	OP_BELL   = Opcode(0x07) // bell
	OP_PRINT  = Opcode(0x08) // prn
	OP_LOAD0  = Opcode(0x09) // ld0
	OP_LOAD1  = Opcode(0x0a) // ld1
	OP_STORE0 = Opcode(0x0b) // st0
	OP_STORE1 = Opcode(0x0c) // st1
	OP_JUMP   = Opcode(0x0d) // jmp
	OP_JZ     = Opcode(0x0e) // jz
	OP_JNZ    = Opcode(0x0f) // jnz
)

// OPCODE_COUNT is the number of opcodes in the instruction set.
const OPCODE_COUNT = 16

// opcodeAlias maps alternate mnemonic spellings.
var opcodeAlias = map[string]Opcode{
	"ll1": OP_LOAD1,
}

// Opcodes iterates the instruction set in opcode order.
func Opcodes() iter.Seq[Opcode] {
	return func(yield func(Opcode) bool) {
		for op := OP_HALT; op <= OP_JNZ; op++ {
			if !yield(op) {
				return
			}
		}
	}
}

// Valid returns true if the opcode is in the instruction set.
func (op Opcode) Valid() bool {
	return op >= OP_HALT && op <= OP_JNZ
}

// Width returns the number of cells the instruction occupies.
// Opcodes 0x08 and above take the following cell as their operand.
func (op Opcode) Width() int {
	if op >= OP_PRINT {
		return 2
	}
	return 1
}

// ParseOpcode returns the opcode for a mnemonic, ignoring case.
func ParseOpcode(name string) (op Opcode, ok bool) {
	name = strings.ToLower(name)
	for op = range Opcodes() {
		if op.String() == name {
			ok = true
			return
		}
	}

	op, ok = opcodeAlias[name]
	return
}
