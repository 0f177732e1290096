package emulator

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/ezrec/emu4719/cpu"
)

// MEMORY_COLUMNS is the number of cells per row of a memory dump.
const MEMORY_COLUMNS = 16

// Dump renders the processor state, registers and memory as tables. The cell
// at ip is bracketed.
func (emu *Emulator) Dump() string {
	regs := emu.Processor.Registers()

	regTable := table.NewWriter()
	regTable.SetTitle(f("4719 %v, %d cycles", emu.Processor.State(), emu.Processor.Cycles()))
	regTable.AppendHeader(table.Row{"ip", "ss", "r0", "r1", "output"})
	regTable.AppendRow(table.Row{
		fmt.Sprintf("%X", regs.Ip),
		fmt.Sprintf("%X", regs.Ss),
		fmt.Sprintf("%X", regs.R0),
		fmt.Sprintf("%X", regs.R1),
		fmt.Sprint(emu.Processor.Output()),
	})

	return regTable.Render() + "\n" + memoryTable(emu.Processor.Memory().Dump(), regs.Ip).Render()
}

// memoryTable lays out cells in rows of MEMORY_COLUMNS.
func memoryTable(cells []int, ip int) table.Writer {
	memTable := table.NewWriter()
	memTable.SetTitle(f("Memory (%d cells)", len(cells)))

	header := table.Row{""}
	for col := range min(MEMORY_COLUMNS, len(cells)) {
		header = append(header, fmt.Sprintf("%X", col))
	}
	memTable.AppendHeader(header)

	for base := 0; base < len(cells); base += MEMORY_COLUMNS {
		row := table.Row{fmt.Sprintf("%02X", base)}
		for address := base; address < min(base+MEMORY_COLUMNS, len(cells)); address++ {
			cell := fmt.Sprintf("%X", cells[address])
			if address == ip {
				cell = "[" + cell + "]"
			}
			row = append(row, cell)
		}
		memTable.AppendRow(row)
	}

	return memTable
}

// Trace renders the snapshot history, oldest first, with the source line
// of each instruction.
func (emu *Emulator) Trace() string {
	traceTable := table.NewWriter()
	traceTable.SetTitle(f("Trace"))
	traceTable.AppendHeader(table.Row{"#", "line", "ip", "op", "ss", "r0", "r1"})

	for n, snap := range emu.Processor.History() {
		regs := snap.Registers

		op := "--"
		if regs.Ip >= 0 && regs.Ip < len(snap.Memory) {
			op = cpu.Opcode(snap.Memory[regs.Ip]).String()
		}

		traceTable.AppendRow(table.Row{
			n,
			emu.LineNo(regs.Ip),
			fmt.Sprintf("%X", regs.Ip),
			op,
			fmt.Sprintf("%X", regs.Ss),
			fmt.Sprintf("%X", regs.R0),
			fmt.Sprintf("%X", regs.R1),
		})
	}

	return traceTable.Render()
}
