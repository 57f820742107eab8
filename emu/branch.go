package emu

import "github.com/sarchlab/r32sim/insts"

// BranchUnit implements R32 jump and branch operations. Every method sets
// the PC itself; none of them falls through to PC+4.
type BranchUnit struct {
	regFile *RegFile
}

// NewBranchUnit creates a new BranchUnit connected to the given register file.
func NewBranchUnit(regFile *RegFile) *BranchUnit {
	return &BranchUnit{regFile: regFile}
}

// JL performs a jump and link: Rx = PC + 4, PC = PC + 4 + offset.
// The offset is in bytes.
func (b *BranchUnit) JL(rx uint8, offset int32) {
	next := b.regFile.PC + 4

	b.regFile.WriteReg(rx, int32(next))
	b.regFile.PC = next + uint32(offset)
}

// JR performs a jump register and link: Rx = PC + 4, PC = Ra.
func (b *BranchUnit) JR(rx, ra uint8) {
	// Read target first (in case rx == ra)
	target := b.regFile.ReadRegU(ra)

	b.regFile.WriteReg(rx, int32(b.regFile.PC+4))
	b.regFile.PC = target
}

// Branch performs a conditional branch on Ra. If the condition holds,
// PC = PC + 4 + offset*4 and Branch returns true; otherwise the PC is left
// unchanged and Branch returns false.
func (b *BranchUnit) Branch(op insts.Op, ra uint8, offset int32) bool {
	if !CheckCondition(op, b.regFile.ReadReg(ra)) {
		return false
	}

	b.regFile.PC = b.regFile.PC + 4 + uint32(offset)*4
	return true
}

// CheckCondition evaluates a branch opcode's condition against a.
func CheckCondition(op insts.Op, a int32) bool {
	switch op {
	case insts.OpJEQ:
		return a == 0
	case insts.OpJNE:
		return a != 0
	case insts.OpJLT:
		return a < 0
	case insts.OpJLE:
		return a <= 0
	case insts.OpJGT:
		return a > 0
	case insts.OpJGE:
		return a >= 0
	default:
		return false
	}
}
