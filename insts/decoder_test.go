package insts_test

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/r32sim/insts"
)

var _ = Describe("Decoder", func() {
	var decoder *insts.Decoder

	BeforeEach(func() {
		decoder = insts.NewDecoder()
	})

	Describe("Field extraction", func() {
		// li r1, 5 -> 0x48200005
		// Encoding: opcode=010010, rx=1, imm21=5
		It("should decode li r1, 5", func() {
			inst := decoder.Decode(0x48200005)

			Expect(inst.Op).To(Equal(insts.OpLI))
			Expect(inst.Format).To(Equal(insts.FormatLoadImm))
			Expect(inst.Rx).To(Equal(uint8(1)))
			Expect(inst.ImmN).To(Equal(int32(5)))
		})

		// add r2, r0, r1 -> 0x04400000 | 1<<11
		It("should decode register fields of iar", func() {
			inst := decoder.Decode(insts.EncodeArith(insts.FuncADD, 2, 0, 1))

			Expect(inst.Op).To(Equal(insts.OpIAR))
			Expect(inst.Format).To(Equal(insts.FormatArith))
			Expect(inst.Func).To(Equal(insts.FuncADD))
			Expect(inst.Rx).To(Equal(uint8(2)))
			Expect(inst.Ra).To(Equal(uint8(0)))
			Expect(inst.Rb).To(Equal(uint8(1)))
			Expect(inst.UsesImmediate()).To(BeFalse())
		})

		It("should decode func1 from the low 4 bits", func() {
			inst := decoder.Decode(insts.EncodeCompareImm(insts.FuncUGT, 3, 4, 100))

			Expect(inst.Op).To(Equal(insts.OpCI))
			Expect(inst.Format).To(Equal(insts.FormatCompare))
			Expect(inst.Func).To(Equal(insts.FuncUGT))
			Expect(inst.ImmI).To(Equal(int32(100)))
			Expect(inst.UsesImmediate()).To(BeTrue())
		})

		It("should decode the halt sentinel without failing", func() {
			inst := decoder.Decode(insts.HaltWord)

			Expect(inst.Op).To(Equal(insts.Op(0x3F)))
			Expect(inst.Format).To(Equal(insts.FormatUnknown))
			Expect(inst.Rx).To(Equal(uint8(31)))
		})

		It("should classify every branch opcode", func() {
			for _, op := range insts.BranchOps {
				Expect(insts.FormatOf(op)).To(Equal(insts.FormatBranch))
			}
		})

		It("should classify unassigned opcodes as unknown", func() {
			for _, op := range []insts.Op{0x02, 0x10, 0x1A, 0x22, 0x2E, 0x31, 0x3F} {
				Expect(insts.FormatOf(op)).To(Equal(insts.FormatUnknown))
			}
		})
	})

	Describe("Immediate sign extension", func() {
		It("should sign-extend the narrow immediate from bit 20", func() {
			Expect(insts.ImmNarrow(0x000FFFFF)).To(Equal(int32(0xFFFFF)))
			Expect(insts.ImmNarrow(0x00100000)).To(Equal(int32(-0x100000)))
			Expect(insts.ImmNarrow(0x001FFFFF)).To(Equal(int32(-1)))
			// bits above 20 are not part of the field
			Expect(insts.ImmNarrow(0xFFE00007)).To(Equal(int32(7)))
		})

		It("should add bits 15:0 to the sign-extended bits 25:5 for branches", func() {
			Expect(insts.ImmBranch(0x02000000)).To(Equal(int32(-0x100000)))
			Expect(insts.ImmBranch(0xA3E00000)).To(Equal(int32(-0x10000)))
			// bit 5 of the offset field is also bit 0 of the high part
			Expect(insts.ImmBranch(0xA0000020)).To(Equal(int32(33)))
			// ra counts 2048 words
			Expect(insts.ImmBranch(0xA0010020)).To(Equal(int32(2081)))
			Expect(insts.ImmBranch(0x001F0003)).To(Equal(int32(0x1F<<11 + 3)))
		})

		It("should encode branches that decode to the requested offset", func() {
			Expect(insts.ImmBranch(insts.EncodeBranch(insts.OpJEQ, 1, -1))).To(Equal(int32(-1)))
			Expect(insts.ImmBranch(insts.EncodeBranch(insts.OpJEQ, 1, 0x12345))).To(Equal(int32(0x12345)))
			Expect(insts.EncodeBranch(insts.OpJEQ, 0, 32)).To(Equal(uint32(0xA3E0F85E)))
			Expect(insts.Ra(insts.EncodeBranch(insts.OpJGE, 7, 2))).To(Equal(uint8(7)))
		})

		It("should sign-extend the load immediate from bit 15", func() {
			Expect(insts.ImmLoad(0x00007FFF)).To(Equal(int32(0x7FFF)))
			Expect(insts.ImmLoad(0x00008000)).To(Equal(int32(-0x8000)))
			Expect(insts.ImmLoad(0xFFFF0000)).To(Equal(int32(0)))
		})

		It("should add bits 10:0 to the sign-extended bits 25:10 for stores", func() {
			// ra=5, rb=3, low 0x405: 327 + 0x405
			Expect(insts.ImmStore(0x64051C05)).To(Equal(int32(1356)))
			Expect(insts.ImmLoad(0x64051C05)).To(Equal(int32(7173)))
			Expect(insts.ImmStore(0x66010000)).To(Equal(int32(-32704)))
		})

		It("should encode stores that decode to the requested check offset", func() {
			Expect(insts.ImmStore(insts.EncodeST(0, 1, -4))).To(Equal(int32(-4)))
			Expect(insts.ImmStore(insts.EncodeST(0, 1, 0x7FFF))).To(Equal(int32(0x7FFF)))
			Expect(insts.ImmStore(insts.EncodeST(0, 1, -32704))).To(Equal(int32(-32704)))

			_, ok := insts.TryEncodeST(0, 1, -32705)
			Expect(ok).To(BeFalse())
			Expect(func() { insts.EncodeST(0, 1, -0x8000) }).To(Panic())
		})

		It("should make the load immediate of a store include rb", func() {
			inst := decoder.Decode(insts.EncodeST(2, 1, 1*64+2*2+8))

			Expect(inst.ImmS).To(Equal(int32(76)))
			Expect(inst.ImmL).To(Equal(int32(2<<11 | 8)))
			Expect(inst.Rb).To(Equal(uint8(2)))
			Expect(inst.Ra).To(Equal(uint8(1)))
		})

		It("should sign-extend the ALU immediate from bit 15", func() {
			Expect(insts.ImmALU(insts.EncodeArithImm(insts.FuncADD, 0, 0, 2047))).To(Equal(int32(2047)))
			Expect(insts.ImmALU(insts.EncodeArithImm(insts.FuncADD, 0, 0, -2048))).To(Equal(int32(-2048)))
			Expect(insts.ImmALU(insts.EncodeArithImm(insts.FuncADD, 0, 0, -1))).To(Equal(int32(-1)))
			// func1 bits are not part of the field
			Expect(insts.ImmALU(0x0000000F)).To(Equal(int32(0)))
		})
	})

	Describe("Properties", func() {
		var rng *rand.Rand

		BeforeEach(func() {
			rng = rand.New(rand.NewSource(GinkgoRandomSeed()))
		})

		It("should reproduce every word from its extracted fields", func() {
			for n := 0; n < 10000; n++ {
				word := rng.Uint32()
				inst := decoder.Decode(word)

				Expect(insts.Encode(inst.Op, inst.Rx, inst.Ra, inst.Rb, word&0x7FF)).
					To(Equal(word), "word 0x%08x", word)
				Expect(uint32(inst.Func)).To(Equal(word & 0xF))
			}
		})

		It("should keep every immediate within its bit width", func() {
			for n := 0; n < 10000; n++ {
				word := rng.Uint32()
				inst := decoder.Decode(word)

				Expect(insts.FitsSigned(int64(inst.ImmN), 21)).To(BeTrue())
				Expect(insts.FitsSigned(int64(inst.ImmL), 16)).To(BeTrue())
				Expect(insts.FitsSigned(int64(inst.ImmI), 12)).To(BeTrue())

				Expect(uint32(inst.ImmN) & 0x1FFFFF).To(Equal(word & 0x1FFFFF))
				Expect(uint32(inst.ImmL) & 0xFFFF).To(Equal(word & 0xFFFF))
				Expect(uint32(inst.ImmI) & 0xFFF).To(Equal((word >> 4) & 0xFFF))

				Expect(inst.ImmC).To(Equal(
					insts.SignExtend((word>>5)&0x1FFFFF, 21)+int32(word&0xFFFF)),
					"word 0x%08x", word)
				Expect(inst.ImmS).To(Equal(
					insts.SignExtend((word>>10)&0xFFFF, 16)+int32(word&0x7FF)),
					"word 0x%08x", word)
			}
		})

		It("should round-trip immediates through the encoders", func() {
			for n := 0; n < 5000; n++ {
				n21 := int32(rng.Intn(1<<21)) - 1<<20
				n16 := int32(rng.Intn(1<<16)) - 1<<15
				n12 := int32(rng.Intn(1<<12)) - 1<<11
				rx := uint8(rng.Intn(32))
				ra := uint8(rng.Intn(32))

				Expect(decoder.Decode(insts.EncodeLI(rx, n21)).ImmN).To(Equal(n21))
				Expect(decoder.Decode(insts.EncodeJL(rx, n21)).ImmN).To(Equal(n21))
				Expect(decoder.Decode(insts.EncodeLD(rx, ra, n16)).ImmL).To(Equal(n16))
				Expect(decoder.Decode(insts.EncodeArithImm(insts.FuncSUB, rx, ra, n12)).ImmI).To(Equal(n12))

				ld := decoder.Decode(insts.EncodeLD(rx, ra, n16))
				Expect(ld.Rx).To(Equal(rx))
				Expect(ld.Ra).To(Equal(ra))
			}
		})

		It("should round-trip most branch and store offsets", func() {
			var branches, stores int
			for n := 0; n < 5000; n++ {
				n21 := int32(rng.Intn(1<<21)) - 1<<20
				n16 := int32(rng.Intn(1<<16)) - 1<<15
				rb := uint8(rng.Intn(32))
				ra := uint8(rng.Intn(32))

				if word, ok := insts.TryEncodeBranch(insts.OpJNE, ra, n21); ok {
					inst := decoder.Decode(word)
					Expect(inst.ImmC).To(Equal(n21))
					Expect(inst.Ra).To(Equal(ra))
					branches++
				}

				if word, ok := insts.TryEncodeST(rb, ra, n16); ok {
					inst := decoder.Decode(word)
					Expect(inst.ImmS).To(Equal(n16))
					Expect(inst.Rb).To(Equal(rb))
					Expect(inst.Ra).To(Equal(ra))
					stores++
				}
			}

			Expect(branches).To(BeNumerically(">", 4500))
			Expect(stores).To(BeNumerically(">", 4500))
		})
	})

	Describe("FitsSigned", func() {
		It("should accept the bounds of the range", func() {
			Expect(insts.FitsSigned(2047, 12)).To(BeTrue())
			Expect(insts.FitsSigned(-2048, 12)).To(BeTrue())
		})

		It("should reject values outside the range", func() {
			Expect(insts.FitsSigned(2048, 12)).To(BeFalse())
			Expect(insts.FitsSigned(-2049, 12)).To(BeFalse())
		})
	})
})
