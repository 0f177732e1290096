package cpu

import (
	"iter"
	"slices"
)

const (
	MEMORY_SIZE = 16 // Default number of memory cells.
	MEMORY_BITS = 4  // Default width of a memory cell, in bits.
)

// Memory is a fixed-capacity store of quantized cell values.
type Memory struct {
	bits  int
	cells []int
}

// NewMemory creates a cleared memory of size cells, each bits wide.
func NewMemory(size int, bits int) (mem *Memory) {
	mem = &Memory{
		bits:  bits,
		cells: make([]int, size),
	}

	return
}

// Size returns the number of cells.
func (mem *Memory) Size() int {
	return len(mem.cells)
}

// Bits returns the width of a cell in bits.
func (mem *Memory) Bits() int {
	return mem.bits
}

// Limit returns the first value that does not fit in a cell, 2^bits.
func (mem *Memory) Limit() int {
	return 1 << mem.bits
}

// ValidAddress returns true if address names a cell.
func (mem *Memory) ValidAddress(address int) bool {
	return address >= 0 && address < len(mem.cells)
}

// ValidValue returns true if value fits in a cell.
func (mem *Memory) ValidValue(value int) bool {
	return value >= 0 && value < mem.Limit()
}

// Read returns the value stored at address.
func (mem *Memory) Read(address int) (value int, err error) {
	if !mem.ValidAddress(address) {
		err = &ErrAccess{Op: "read", Address: address, Err: ErrOutOfRange}
		return
	}

	value = mem.cells[address]
	if !mem.ValidValue(value) {
		err = &ErrAccess{Op: "read", Address: address, Value: value, Err: ErrInvalidValue}
		value = 0
		return
	}

	return
}

// Write stores value at address.
func (mem *Memory) Write(address int, value int) (err error) {
	if !mem.ValidAddress(address) {
		err = &ErrAccess{Op: "write", Address: address, Value: value, Err: ErrOutOfRange}
		return
	}

	if !mem.ValidValue(value) {
		err = &ErrAccess{Op: "write", Address: address, Value: value, Err: ErrInvalidValue}
		return
	}

	mem.cells[address] = value

	return
}

// Load writes values verbatim, starting at address 0. It stops at the first
// write that fails, leaving earlier cells written.
func (mem *Memory) Load(values []int) (err error) {
	for address, value := range values {
		err = mem.Write(address, value)
		if err != nil {
			return
		}
	}

	return
}

// Clear resets every cell to 0.
func (mem *Memory) Clear() {
	clear(mem.cells)
}

// Dump returns a copy of all cells.
func (mem *Memory) Dump() []int {
	return slices.Clone(mem.cells)
}

// Cells iterates over the address and value of every cell.
func (mem *Memory) Cells() iter.Seq2[int, int] {
	return slices.All(mem.cells)
}
