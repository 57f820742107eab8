package asm

import (
	"errors"
	"strconv"

	"github.com/sarchlab/r32sim/translate"
)

var f = translate.From

// Assembler errors.
var (
	ErrEquateSyntax    = errors.New(f(".equ syntax"))
	ErrEquateDuplicate = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate  = errors.New(f("label duplicated"))
	ErrLabelSyntax     = errors.New(f("label syntax"))
	ErrSpaceSyntax     = errors.New(f(".space must be a non-negative multiple of 4"))
	ErrOpcodeInvalid   = errors.New(f("opcode invalid"))
	ErrOperandCount    = errors.New(f("wrong number of operands"))
	ErrRegisterInvalid = errors.New(f("register invalid"))
	ErrMemoryOperand   = errors.New(f("memory operand must be imm(rN)"))
	ErrTargetAlignment = errors.New(f("branch target not word aligned"))
	ErrWordRange       = errors.New(f(".word value out of 32-bit range"))
	ErrOffsetEncoding  = errors.New(f("offset cannot be encoded with this register"))
)

// ErrImmediateRange reports an immediate that does not fit its field.
type ErrImmediateRange struct {
	Value int64
	Bits  uint
}

func (err ErrImmediateRange) Error() string {
	return f("immediate %s does not fit in %s signed bits",
		strconv.FormatInt(err.Value, 10), strconv.FormatUint(uint64(err.Bits), 10))
}

// ErrParseExpression reports an operand starlark could not evaluate to an
// integer.
type ErrParseExpression struct {
	Expr string
	Err  error
}

func (err ErrParseExpression) Error() string {
	if err.Err != nil {
		return f("'%v' is not a valid expression: %v", err.Expr, err.Err)
	}
	return f("'%v' is not a valid expression", err.Expr)
}

func (err ErrParseExpression) Unwrap() error {
	return err.Err
}

// ErrSyntax locates an error in the source.
type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %s '%v' %v", strconv.Itoa(err.LineNo), err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}
