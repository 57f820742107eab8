package emu

import "github.com/sarchlab/r32sim/insts"

// Unit selects which half of the ALU evaluates a function code.
type Unit uint8

// ALU units.
const (
	UnitArith   Unit = iota // Integer arithmetic (IAI/IAR)
	UnitCompare             // Comparison (CI/CR)
)

// ALU implements R32 arithmetic, logic and comparison. It is stateless;
// every result is a 32-bit two's-complement value and overflow wraps.
type ALU struct{}

// NewALU creates a new ALU.
func NewALU() *ALU {
	return &ALU{}
}

// Evaluate applies function fn of the selected unit to a and b.
func (alu *ALU) Evaluate(unit Unit, fn insts.Func, a, b int32) (int32, error) {
	switch unit {
	case UnitArith:
		return alu.arith(fn, a, b)
	case UnitCompare:
		return alu.compare(fn, a, b)
	default:
		panic("emu: invalid ALU unit")
	}
}

func (alu *ALU) arith(fn insts.Func, a, b int32) (int32, error) {
	ua, ub := uint32(a), uint32(b)
	shamt := ub & 31

	switch fn {
	case insts.FuncADD:
		return a + b, nil
	case insts.FuncSUB:
		return a - b, nil
	case insts.FuncSLL:
		return int32(ua << shamt), nil
	case insts.FuncSRL:
		return int32(ua >> shamt), nil
	case insts.FuncSRA:
		return a >> shamt, nil
	case insts.FuncAND:
		return a & b, nil
	case insts.FuncOR:
		return a | b, nil
	case insts.FuncXOR:
		return a ^ b, nil
	case insts.FuncADDX4:
		return a + b*4, nil
	case insts.FuncSUBX4:
		return a - b*4, nil
	case insts.FuncMUL:
		return a * b, nil
	case insts.FuncMULH:
		return int32((int64(a) * int64(b)) >> 32), nil
	default:
		return 0, fatalf(ErrUnknownFunc,
			"unknown integer arithmetic instruction: func1 = %d", uint8(fn))
	}
}

func (alu *ALU) compare(fn insts.Func, a, b int32) (int32, error) {
	ua, ub := uint32(a), uint32(b)

	switch fn {
	case insts.FuncEQ:
		return b2i(a == b), nil
	case insts.FuncNE:
		return b2i(a != b), nil
	case insts.FuncLT:
		return b2i(a < b), nil
	case insts.FuncLE:
		return b2i(a <= b), nil
	case insts.FuncULT:
		return b2i(ua < ub), nil
	case insts.FuncULE:
		return b2i(ua <= ub), nil
	case insts.FuncGT:
		return b2i(a > b), nil
	case insts.FuncUGT:
		// Named UGT by the ISA; the comparator is >=.
		return b2i(ua >= ub), nil
	default:
		return 0, fatalf(ErrUnknownFunc,
			"unknown comparation instruction: func1 = %d", uint8(fn))
	}
}

func b2i(v bool) int32 {
	if v {
		return 1
	}
	return 0
}
