package insts

// Op represents an R32 opcode (the top 6 bits of an instruction word).
type Op uint8

// R32 opcodes.
const (
	OpIAI Op = 0b000000 // Integer arithmetic, register + immediate
	OpIAR Op = 0b000001 // Integer arithmetic, register + register
	OpCI  Op = 0b000110 // Compare, register + immediate
	OpCR  Op = 0b000111 // Compare, register + register
	OpLI  Op = 0b010010 // Load immediate
	OpLIH Op = 0b010011 // Load immediate into the upper bits
	OpLD  Op = 0b011000 // Load word
	OpST  Op = 0b011001 // Store word
	OpJL  Op = 0b100000 // Jump and link (PC-relative)
	OpJR  Op = 0b100001 // Jump register and link
	OpJEQ Op = 0b101000 // Branch if ra == 0
	OpJNE Op = 0b101001 // Branch if ra != 0
	OpJLT Op = 0b101010 // Branch if ra < 0
	OpJLE Op = 0b101011 // Branch if ra <= 0
	OpJGT Op = 0b101100 // Branch if ra > 0
	OpJGE Op = 0b101101 // Branch if ra >= 0
	OpSYS Op = 0b110000 // System call
)

// HaltWord is the reserved all-ones word that stops the run loop when fetched.
const HaltWord uint32 = 0xFFFFFFFF

// Func is the 4-bit function code selecting an ALU operation.
type Func uint8

// Integer arithmetic function codes (IAI/IAR).
const (
	FuncADD   Func = 0b0000
	FuncSUB   Func = 0b0001
	FuncSLL   Func = 0b0010
	FuncSRL   Func = 0b0011
	FuncSRA   Func = 0b0100
	FuncAND   Func = 0b0101
	FuncOR    Func = 0b0110
	FuncXOR   Func = 0b0111
	FuncADDX4 Func = 0b1000
	FuncSUBX4 Func = 0b1001
	FuncMUL   Func = 0b1100
	FuncMULH  Func = 0b1101
)

// Compare function codes (CI/CR).
const (
	FuncEQ  Func = 0b0000
	FuncNE  Func = 0b0001
	FuncLT  Func = 0b0010
	FuncLE  Func = 0b0011
	FuncULT Func = 0b0100
	FuncULE Func = 0b0101
	FuncGT  Func = 0b0110
	FuncUGT Func = 0b0111 // Unsigned greater-or-equal, despite the name.
)

// Format represents an instruction family.
type Format uint8

// Instruction formats.
const (
	FormatUnknown Format = iota
	FormatArith          // IAI, IAR
	FormatCompare        // CI, CR
	FormatLoadImm        // LI, LIH
	FormatMemory         // LD, ST
	FormatJump           // JL, JR
	FormatBranch         // JEQ..JGE
	FormatSystem         // SYS
)

// Instruction represents a decoded R32 instruction word. All immediate
// interpretations are extracted; the opcode decides which one is used.
type Instruction struct {
	Word   uint32 // Raw instruction word
	Op     Op     // Operation code
	Format Format // Instruction family
	Func   Func   // ALU function code (low 4 bits)

	Rx uint8 // Destination register
	Ra uint8 // Source register A
	Rb uint8 // Source register B

	ImmN int32 // Narrow 21-bit immediate
	ImmC int32 // Compare/branch 21-bit immediate (in words)
	ImmL int32 // Load 16-bit immediate
	ImmS int32 // Store check offset
	ImmI int32 // ALU 12-bit immediate
}

// UsesImmediate reports whether an arithmetic or compare instruction takes
// its second operand from ImmI instead of Rb.
func (i Instruction) UsesImmediate() bool {
	return i.Op == OpIAI || i.Op == OpCI
}

// Decoder decodes R32 machine words into instructions.
type Decoder struct{}

// NewDecoder creates a new R32 instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode decodes a 32-bit instruction word. Decoding never fails; an
// unassigned opcode yields FormatUnknown.
func (d *Decoder) Decode(word uint32) Instruction {
	op := Opcode(word)

	return Instruction{
		Word:   word,
		Op:     op,
		Format: FormatOf(op),
		Func:   Func1(word),
		Rx:     Rx(word),
		Ra:     Ra(word),
		Rb:     Rb(word),
		ImmN:   ImmNarrow(word),
		ImmC:   ImmBranch(word),
		ImmL:   ImmLoad(word),
		ImmS:   ImmStore(word),
		ImmI:   ImmALU(word),
	}
}

// FormatOf returns the instruction family of an opcode.
func FormatOf(op Op) Format {
	switch op {
	case OpIAI, OpIAR:
		return FormatArith
	case OpCI, OpCR:
		return FormatCompare
	case OpLI, OpLIH:
		return FormatLoadImm
	case OpLD, OpST:
		return FormatMemory
	case OpJL, OpJR:
		return FormatJump
	case OpJEQ, OpJNE, OpJLT, OpJLE, OpJGT, OpJGE:
		return FormatBranch
	case OpSYS:
		return FormatSystem
	default:
		return FormatUnknown
	}
}

// Opcode extracts bits [31:26].
func Opcode(word uint32) Op {
	return Op(word >> 26)
}

// Func1 extracts bits [3:0].
func Func1(word uint32) Func {
	return Func(word & 0xF)
}

// Rx extracts the destination register index, bits [25:21].
func Rx(word uint32) uint8 {
	return uint8((word >> 21) & 0x1F)
}

// Ra extracts source register A, bits [20:16].
func Ra(word uint32) uint8 {
	return uint8((word >> 16) & 0x1F)
}

// Rb extracts source register B, bits [15:11].
func Rb(word uint32) uint8 {
	return uint8((word >> 11) & 0x1F)
}

// ImmNarrow extracts the 21-bit signed immediate in bits [20:0].
func ImmNarrow(word uint32) int32 {
	return SignExtend(word&0x1FFFFF, 21)
}

// ImmBranch extracts the branch offset in words: bits [25:5] as a 21-bit
// signed value plus bits [15:0] unsigned. The two ranges overlap, so ra
// contributes ra*2048 to the offset.
func ImmBranch(word uint32) int32 {
	return int32(word<<6)>>11 + int32(word&0xFFFF)
}

// ImmLoad extracts the 16-bit signed immediate in bits [15:0].
func ImmLoad(word uint32) int32 {
	return SignExtend(word&0xFFFF, 16)
}

// ImmStore extracts the store check offset: bits [25:10] as a 16-bit
// signed value plus bits [10:0] unsigned. ra contributes ra*64 and rb
// contributes rb*2.
func ImmStore(word uint32) int32 {
	return int32(word<<6)>>16 + int32(word&0x7FF)
}

// ImmALU extracts the 12-bit signed immediate in bits [15:4].
func ImmALU(word uint32) int32 {
	return SignExtend((word>>4)&0xFFF, 12)
}

// SignExtend interprets the low bits of v as a two's-complement number.
func SignExtend(v uint32, bits uint) int32 {
	shift := 32 - bits
	return int32(v<<shift) >> shift
}
