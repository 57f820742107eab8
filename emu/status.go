package emu

import (
	"fmt"
	"io"
)

// Snapshot is a read-only copy of the machine state exposed to reporting
// and debugging collaborators.
type Snapshot struct {
	Regs             [NumRegs]int32
	PC               uint32
	MemorySize       uint32
	InstructionCount uint64
}

// Snapshot copies the current machine state. It is valid at any point,
// including after a fatal error.
func (e *Emulator) Snapshot() Snapshot {
	return Snapshot{
		Regs:             e.regFile.R,
		PC:               e.regFile.PC,
		MemorySize:       e.memory.Size(),
		InstructionCount: e.instructionCount,
	}
}

// WriteStatus prints the simulator status. Register contents are included
// when showRegs is set.
func (s Snapshot) WriteStatus(w io.Writer, showRegs bool) {
	_, _ = fmt.Fprint(w, f("\x1b[1m*** Simulator Status ***\x1b[0m\n"))

	if showRegs {
		_, _ = fmt.Fprint(w, f("<register>\n"))
		for i := 0; i < NumRegs/2; i++ {
			lo, hi := s.Regs[i], s.Regs[i+NumRegs/2]
			_, _ = fmt.Fprintf(w, "  r%-2d: %11d (0x%08x) / r%-2d: %11d (0x%08x)\n",
				i, lo, uint32(lo), i+NumRegs/2, hi, uint32(hi))
		}
	}

	// Counts are printed raw so the dump stays machine-comparable.
	_, _ = fmt.Fprintf(w, "<%s>: 0x%06x\n", f("Current PC"), s.PC)
	_, _ = fmt.Fprintf(w, "<%s>: %d\n", f("Number of executed instructions"), s.InstructionCount)
}

// WriteFatal prints err in the runtime error format.
func WriteFatal(w io.Writer, err error) {
	_, _ = fmt.Fprint(w, f("\x1b[1;31mruntime error: \x1b[39m%v\x1b[0m\n\n", err))
}
