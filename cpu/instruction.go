package cpu

import (
	"fmt"
)

// execute runs a single instruction. Register operands come from regs, the
// snapshot taken before dispatch; results go to the live registers. jumped
// is set when the instruction loaded Ip itself.
//
// Every opcode has a case; the default only catches values that are not
// opcodes at all.
func (p *Processor) execute(op Opcode, regs Registers) (jumped bool, err error) {
	var a, b int

	switch op {
	case OP_HALT:
		err = p.apply(eventHalt)
	case OP_ADD:
		if a, err = p.memory.Read(regs.R0); err != nil {
			return
		}
		if b, err = p.memory.Read(regs.R1); err != nil {
			return
		}
		err = p.setRegister(&p.regs.R0, "r0", a+b)
	case OP_SUB:
		if a, err = p.memory.Read(regs.R0); err != nil {
			return
		}
		if b, err = p.memory.Read(regs.R1); err != nil {
			return
		}
		err = p.setRegister(&p.regs.R0, "r0", a-b)
	case OP_INC0:
		if a, err = p.memory.Read(regs.R0); err != nil {
			return
		}
		err = p.setRegister(&p.regs.R0, "r0", a+1)
	case OP_INC1:
		if b, err = p.memory.Read(regs.R1); err != nil {
			return
		}
		err = p.setRegister(&p.regs.R1, "r1", b+1)
	case OP_DEC0:
		if a, err = p.memory.Read(regs.R0); err != nil {
			return
		}
		err = p.setRegister(&p.regs.R0, "r0", a-1)
	case OP_DEC1:
		// Known quirk: dec1 increments r1. Programs for the machine may
		// depend on it, so it stays.
		if b, err = p.memory.Read(regs.R1); err != nil {
			return
		}
		err = p.setRegister(&p.regs.R1, "r1", b+1)
	case OP_BELL:
		p.ringBell()
	case OP_PRINT:
		p.emit(regs.Ss)
		err = p.skipOperand()
	case OP_LOAD0:
		if a, err = p.memory.Read(regs.R0); err != nil {
			return
		}
		if err = p.setRegister(&p.regs.R0, "r0", a); err != nil {
			return
		}
		err = p.skipOperand()
	case OP_LOAD1:
		if b, err = p.memory.Read(regs.R1); err != nil {
			return
		}
		if err = p.setRegister(&p.regs.R1, "r1", b); err != nil {
			return
		}
		err = p.skipOperand()
	case OP_STORE0:
		if err = p.memory.Write(regs.Ss, regs.R0); err != nil {
			return
		}
		err = p.skipOperand()
	case OP_STORE1:
		if err = p.memory.Write(regs.Ss, regs.R1); err != nil {
			return
		}
		err = p.skipOperand()
	case OP_JUMP:
		jumped = p.jump(regs)
	case OP_JZ:
		if regs.R0 == 0 {
			jumped = p.jump(regs)
		}
	case OP_JNZ:
		// Known quirk: jnz branches on r0 == 0, the same test as jz. It
		// differs from jz only in stepping over its operand when it falls
		// through under ADVANCE_LEGACY.
		if regs.R0 == 0 {
			jumped = p.jump(regs)
			return
		}
		err = p.skipOperand()
	default:
		err = fmt.Errorf("%w: 0x%02X", ErrUnknownOpcode, int(op))
	}

	return
}

// jump loads Ip from the short-store.
func (p *Processor) jump(regs Registers) bool {
	p.regs.Ip = regs.Ss
	return true
}

// setRegister range checks value before storing it in reg.
func (p *Processor) setRegister(reg *int, name string, value int) (err error) {
	if !p.memory.ValidValue(value) {
		err = fmt.Errorf("%w: %v <- %d", ErrOutOfRange, name, value)
		return
	}

	*reg = value
	return
}

// skipOperand steps Ip over the operand cell and re-latches the short-store.
// Only ADVANCE_LEGACY instructions move Ip themselves.
func (p *Processor) skipOperand() (err error) {
	if p.Policy != ADVANCE_LEGACY {
		return
	}

	p.regs.Ip++

	ss, err := p.memory.Read(p.regs.Ip + 1)
	if err != nil {
		return
	}
	p.regs.Ss = ss

	return
}
