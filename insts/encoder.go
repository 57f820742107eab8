package insts

import "fmt"

// Encode packs the opcode, register indices and the low 11 bits of an
// instruction word. It is the inverse of Opcode, Rx, Ra, Rb for every word.
func Encode(op Op, rx, ra, rb uint8, low uint32) uint32 {
	return uint32(op&0x3F)<<26 |
		uint32(rx&0x1F)<<21 |
		uint32(ra&0x1F)<<16 |
		uint32(rb&0x1F)<<11 |
		low&0x7FF
}

// EncodeArith encodes a register-register arithmetic instruction:
// rx = ra <fn> rb.
func EncodeArith(fn Func, rx, ra, rb uint8) uint32 {
	return Encode(OpIAR, rx, ra, rb, uint32(fn&0xF))
}

// EncodeArithImm encodes a register-immediate arithmetic instruction:
// rx = ra <fn> imm.
func EncodeArithImm(fn Func, rx, ra uint8, imm int32) uint32 {
	return encodeALUImm(OpIAI, fn, rx, ra, imm)
}

// EncodeCompare encodes a register-register compare: rx = (ra <fn> rb).
func EncodeCompare(fn Func, rx, ra, rb uint8) uint32 {
	return Encode(OpCR, rx, ra, rb, uint32(fn&0xF))
}

// EncodeCompareImm encodes a register-immediate compare: rx = (ra <fn> imm).
func EncodeCompareImm(fn Func, rx, ra uint8, imm int32) uint32 {
	return encodeALUImm(OpCI, fn, rx, ra, imm)
}

func encodeALUImm(op Op, fn Func, rx, ra uint8, imm int32) uint32 {
	return uint32(op)<<26 |
		uint32(rx&0x1F)<<21 |
		uint32(ra&0x1F)<<16 |
		(uint32(imm)&0xFFF)<<4 |
		uint32(fn&0xF)
}

// EncodeLI encodes LI rx, imm.
func EncodeLI(rx uint8, imm int32) uint32 {
	return encodeNarrow(OpLI, rx, imm)
}

// EncodeLIH encodes LIH rx, imm (rx = imm << 11).
func EncodeLIH(rx uint8, imm int32) uint32 {
	return encodeNarrow(OpLIH, rx, imm)
}

// EncodeJL encodes JL rx, offset where offset is in bytes relative to PC+4.
func EncodeJL(rx uint8, offset int32) uint32 {
	return encodeNarrow(OpJL, rx, offset)
}

func encodeNarrow(op Op, rx uint8, imm int32) uint32 {
	return uint32(op)<<26 | uint32(rx&0x1F)<<21 | uint32(imm)&0x1FFFFF
}

// EncodeJR encodes JR rx, ra.
func EncodeJR(rx, ra uint8) uint32 {
	return Encode(OpJR, rx, ra, 0, 0)
}

// EncodeLD encodes LD rx, imm(ra).
func EncodeLD(rx, ra uint8, imm int32) uint32 {
	return uint32(OpLD)<<26 | uint32(rx&0x1F)<<21 | uint32(ra&0x1F)<<16 | uint32(imm)&0xFFFF
}

// EncodeST encodes ST rb, imm(ra) where imm is the store check offset.
// It panics if no word with these registers decodes to imm; use
// TryEncodeST when imm is not known to be encodable.
func EncodeST(rb, ra uint8, imm int32) uint32 {
	word, ok := TryEncodeST(rb, ra, imm)
	if !ok {
		panic(fmt.Sprintf("st r%d, %d(r%d): offset cannot be encoded", rb, imm, ra))
	}
	return word
}

// TryEncodeST returns a store word whose check offset is imm. The word
// written is the one at ra + sext(bits [15:0]), which includes rb; an
// offset of ra*64 + rb*2 writes exactly at ra + (rb << 11).
func TryEncodeST(rb, ra uint8, imm int32) (uint32, bool) {
	base := uint32(OpST)<<26 | uint32(ra&0x1F)<<16 | uint32(rb&0x1F)<<11
	return encodeOverlap(base, imm, 16, 10, 11)
}

// EncodeBranch encodes a conditional branch on ra with an offset in
// words relative to PC+4. It panics if the offset cannot be encoded for
// ra; use TryEncodeBranch when that is not known.
func EncodeBranch(op Op, ra uint8, offset int32) uint32 {
	word, ok := TryEncodeBranch(op, ra, offset)
	if !ok {
		panic(fmt.Sprintf("%v r%d, %d: offset cannot be encoded", op, ra, offset))
	}
	return word
}

// TryEncodeBranch returns a branch word that decodes to offset, or false
// when no such word exists for ra.
func TryEncodeBranch(op Op, ra uint8, offset int32) (uint32, bool) {
	base := uint32(op&0x3F)<<26 | uint32(ra&0x1F)<<16
	return encodeOverlap(base, offset, 11, 5, 16)
}

// encodeOverlap inverts int32(word<<6)>>hiShift + (word & (1<<width - 1)).
// The high part covers bits [25:hiShift-6], so the low field l appears in
// it again as l>>shift. The free bits are the rx slot and the low field;
// the first rx value that leaves a representable remainder wins.
func encodeOverlap(base uint32, want int32, hiShift, shift, width uint) (uint32, bool) {
	for hi := int32(15); hi >= -16; hi-- {
		word := base | uint32(hi&0x1F)<<21
		rest := int64(want) - int64(int32(word<<6)>>hiShift)

		low, ok := splitOverlap(rest, shift, width)
		if !ok {
			continue
		}

		return word | low, true
	}

	return 0, false
}

// splitOverlap finds the width-bit field l with l + l>>shift == v.
func splitOverlap(v int64, shift, width uint) (uint32, bool) {
	if v < 0 {
		return 0, false
	}

	d := int64(1)<<shift + 1
	q, r := v/d, v%d
	if r >= int64(1)<<shift {
		return 0, false
	}

	l := q<<shift | r
	if l >= int64(1)<<width {
		return 0, false
	}

	return uint32(l), true
}

// EncodeSYS encodes the system-call instruction.
func EncodeSYS() uint32 {
	return uint32(OpSYS) << 26
}

// FitsSigned reports whether v is representable as a bits-wide
// two's-complement number.
func FitsSigned(v int64, bits uint) bool {
	lo := -(int64(1) << (bits - 1))
	hi := int64(1)<<(bits-1) - 1
	return v >= lo && v <= hi
}
