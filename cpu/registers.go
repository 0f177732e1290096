package cpu

import (
	"fmt"
)

// Registers of the 4719.
type Registers struct {
	Ip int // Instruction pointer.
	Ss int // Short-store, latched with the cell following Ip each cycle.
	R0 int // General purpose.
	R1 int // General purpose.
}

// String returns the registers as a single line.
func (regs Registers) String() string {
	return fmt.Sprintf("ip:%X ss:%X r0:%X r1:%X", regs.Ip, regs.Ss, regs.R0, regs.R1)
}

// validate checks the data registers hold cell values. Ip is checked
// separately, as a memory address.
func (regs Registers) validate(mem *Memory) (err error) {
	named := []struct {
		name  string
		value int
	}{
		{"ss", regs.Ss},
		{"r0", regs.R0},
		{"r1", regs.R1},
	}

	for _, reg := range named {
		if !mem.ValidValue(reg.value) {
			err = fmt.Errorf("%w: %v=%d: %w", ErrRegisterCorrupt, reg.name, reg.value, ErrInvalidValue)
			return
		}
	}

	return
}
