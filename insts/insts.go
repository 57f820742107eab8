// Package insts provides R32 instruction definitions and decoding.
//
// This package implements decoding of R32 machine words into structured
// instruction representations. Every word is decodable: the opcode is the
// top 6 bits, and the register and immediate fields are extracted without
// regard to whether the opcode uses them. Whether an opcode is valid is
// decided when the instruction is executed.
//
// Instruction word layout:
//
//	31    26 25  21 20  16 15  11 10         4 3    0
//	| opcode |  rx  |  ra  |  rb  |           | func1 |
//
// Immediate fields:
//   - narrow  (LI, LIH, JL):  bits [20:0], 21-bit signed
//   - branch  (Jcc):          sext(bits [25:5]) + [15:0], in words
//   - load    (LD, ST write): bits [15:0], 16-bit signed
//   - store   (ST check):     sext(bits [25:10]) + [10:0]
//   - ALU     (IAI, CI):      bits [15:4], 12-bit signed
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst := decoder.Decode(0x48200005) // li r1, 5
//	fmt.Printf("Op: %v, Rx: %d, Imm: %d\n", inst.Op, inst.Rx, inst.ImmN)
package insts
