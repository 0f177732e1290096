// Package cpu implements the processor and assembler for the 4719, a
// fictional 4-bit teaching computer.
//
// The processor has sixteen 4-bit memory cells and four registers: the
// instruction pointer (ip), the short-store (ss) which is latched every cycle
// with the cell following ip, and two general-purpose registers (r0, r1).
// Sixteen opcodes cover arithmetic through memory indirection, a bell, a
// print port, loads, stores and jumps.
//
// The assembler turns whitespace separated mnemonics and decimal literals
// into the cell values that are loaded into memory from address 0.
package cpu
