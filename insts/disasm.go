package insts

import "fmt"

var opNames = map[Op]string{
	OpIAI: "iai",
	OpIAR: "iar",
	OpCI:  "ci",
	OpCR:  "cr",
	OpLI:  "li",
	OpLIH: "lih",
	OpLD:  "ld",
	OpST:  "st",
	OpJL:  "jl",
	OpJR:  "jr",
	OpJEQ: "jeq",
	OpJNE: "jne",
	OpJLT: "jlt",
	OpJLE: "jle",
	OpJGT: "jgt",
	OpJGE: "jge",
	OpSYS: "sys",
}

// ArithNames maps arithmetic function codes to mnemonics. The immediate
// form appends "i".
var ArithNames = map[Func]string{
	FuncADD:   "add",
	FuncSUB:   "sub",
	FuncSLL:   "sll",
	FuncSRL:   "srl",
	FuncSRA:   "sra",
	FuncAND:   "and",
	FuncOR:    "or",
	FuncXOR:   "xor",
	FuncADDX4: "addx4",
	FuncSUBX4: "subx4",
	FuncMUL:   "mul",
	FuncMULH:  "mulh",
}

// CompareNames maps compare function codes to mnemonics. The immediate
// form appends "i".
var CompareNames = map[Func]string{
	FuncEQ:  "ceq",
	FuncNE:  "cne",
	FuncLT:  "clt",
	FuncLE:  "cle",
	FuncULT: "cult",
	FuncULE: "cule",
	FuncGT:  "cgt",
	FuncUGT: "cugt",
}

// BranchOps maps branch mnemonics to opcodes.
var BranchOps = map[string]Op{
	"jeq": OpJEQ,
	"jne": OpJNE,
	"jlt": OpJLT,
	"jle": OpJLE,
	"jgt": OpJGT,
	"jge": OpJGE,
}

func (op Op) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return fmt.Sprintf("op%d", uint8(op))
}

// String disassembles the instruction.
func (i Instruction) String() string {
	if i.Word == HaltWord {
		return "halt"
	}

	switch i.Format {
	case FormatArith:
		return i.aluString(ArithNames)
	case FormatCompare:
		return i.aluString(CompareNames)
	case FormatLoadImm:
		return fmt.Sprintf("%v r%d, %d", i.Op, i.Rx, i.ImmN)
	case FormatMemory:
		if i.Op == OpLD {
			return fmt.Sprintf("ld r%d, %d(r%d)", i.Rx, i.ImmL, i.Ra)
		}
		return fmt.Sprintf("st r%d, %d(r%d)", i.Rb, i.ImmS, i.Ra)
	case FormatJump:
		if i.Op == OpJL {
			return fmt.Sprintf("jl r%d, %d", i.Rx, i.ImmN)
		}
		return fmt.Sprintf("jr r%d, r%d", i.Rx, i.Ra)
	case FormatBranch:
		return fmt.Sprintf("%v r%d, %d", i.Op, i.Ra, i.ImmC)
	case FormatSystem:
		return "sys"
	default:
		return fmt.Sprintf(".word 0x%08x", i.Word)
	}
}

func (i Instruction) aluString(names map[Func]string) string {
	name, ok := names[i.Func]
	if !ok {
		return fmt.Sprintf("%v r%d, r%d, func=%d", i.Op, i.Rx, i.Ra, uint8(i.Func))
	}
	if i.UsesImmediate() {
		return fmt.Sprintf("%si r%d, r%d, %d", name, i.Rx, i.Ra, i.ImmI)
	}
	return fmt.Sprintf("%s r%d, r%d, r%d", name, i.Rx, i.Ra, i.Rb)
}
