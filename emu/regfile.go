// Package emu provides functional R32 emulation.
package emu

// NumRegs is the number of general-purpose registers.
const NumRegs = 32

// RegFile represents the R32 register file.
// It contains 32 general-purpose registers (R0-R31) and the program counter.
// No register is hardwired; R30 and R31 are ordinary registers that the
// emulator presets to the memory size outside boot-test mode.
type RegFile struct {
	// R holds general-purpose registers R0-R31.
	R [NumRegs]int32

	// PC is the program counter, a byte offset into memory.
	PC uint32
}

// ReadReg reads a register value.
func (r *RegFile) ReadReg(reg uint8) int32 {
	return r.R[reg&(NumRegs-1)]
}

// WriteReg writes a value to a register.
func (r *RegFile) WriteReg(reg uint8, value int32) {
	r.R[reg&(NumRegs-1)] = value
}

// ReadRegU reads a register as an unsigned word.
func (r *RegFile) ReadRegU(reg uint8) uint32 {
	return uint32(r.ReadReg(reg))
}
