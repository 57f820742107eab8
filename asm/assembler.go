// Package asm is a two-pass assembler producing R32 program images.
//
// Source is line oriented. Each line may carry labels ("loop:"), one
// instruction or directive, and a comment starting with '#' or ';'.
// Mnemonics are those printed by the disassembler. Immediates, memory
// offsets and jump targets are starlark expressions over labels and
// equates:
//
//	.equ N, 10
//	        li   r1, N * 4
//	loop:   addi r1, r1, -1
//	        jne  r1, loop
//	        st   r0, (N - 2) * 4(r30)
//	        halt
//
// Jump and branch operands are absolute target addresses; the assembler
// computes the PC-relative offsets. The offset of st is the address the
// machine checks; the word it writes is at ra + sext(bits [15:0]), and bits
// [15:11] hold rb. An offset of ra*64 + rb*2 + k for 0 <= k < 1024 writes
// at ra + (rb<<11) + k. Branch and store offsets overlap the register
// fields, so a few in-range offsets cannot be encoded for a given ra.
package asm

import (
	"bufio"
	"encoding/binary"
	"io"
	"maps"
	"regexp"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/sarchlab/r32sim/emu"
	"github.com/sarchlab/r32sim/insts"
	"github.com/sarchlab/r32sim/loader"
)

type aluOp struct {
	op insts.Op
	fn insts.Func
}

var aluOps = map[string]aluOp{}

func init() {
	for fn, name := range insts.ArithNames {
		aluOps[name] = aluOp{insts.OpIAR, fn}
		aluOps[name+"i"] = aluOp{insts.OpIAI, fn}
	}
	for fn, name := range insts.CompareNames {
		aluOps[name] = aluOp{insts.OpCR, fn}
		aluOps[name+"i"] = aluOp{insts.OpCI, fn}
	}
}

var (
	labelRe = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*):`)
	nameRe  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// statement is one instruction or data directive placed at addr.
type statement struct {
	lineNo   int
	line     string
	addr     uint32
	mnemonic string
	operands []string
	size     uint32 // bytes, for .space
}

// Assembler translates R32 assembly source into a program image.
type Assembler struct {
	// Origin is the address of the first assembled word. It must match the
	// address the image is loaded at.
	Origin uint32

	// Symbols holds labels and equates after Assemble.
	Symbols map[string]int64

	predefine map[string]int64
}

// NewAssembler creates an assembler for images loaded at the default
// entry point.
func NewAssembler() *Assembler {
	return &Assembler{Origin: emu.DefaultEntryPoint}
}

// Predefine defines an equate visible to every expression.
func (a *Assembler) Predefine(name string, value int64) {
	if a.predefine == nil {
		a.predefine = make(map[string]int64)
	}
	a.predefine[name] = value
}

// Assemble reads source from input and returns the assembled program.
func (a *Assembler) Assemble(input io.Reader) (*loader.Program, error) {
	stmts, err := a.parse(input)
	if err != nil {
		return nil, err
	}

	var data []byte
	for _, st := range stmts {
		words, err := a.encode(st)
		if err != nil {
			return nil, ErrSyntax{LineNo: st.lineNo, Line: st.line, Err: err}
		}

		logrus.WithFields(logrus.Fields{
			"line":  st.lineNo,
			"addr":  st.addr,
			"words": len(words),
		}).Debug(st.line)

		for _, w := range words {
			data = binary.LittleEndian.AppendUint32(data, w)
		}
	}

	return &loader.Program{Data: data}, nil
}

// parse is the first pass: it places statements, defines labels and
// evaluates equates.
func (a *Assembler) parse(input io.Reader) (stmts []statement, err error) {
	scanner := bufio.NewScanner(input)

	var text string
	var lineNo int

	defer func() {
		if err != nil {
			err = ErrSyntax{LineNo: lineNo, Line: text, Err: err}
		}
	}()

	a.Symbols = maps.Clone(a.predefine)
	if a.Symbols == nil {
		a.Symbols = make(map[string]int64)
	}

	addr := a.Origin
	for scanner.Scan() {
		text = scanner.Text()
		lineNo++

		line := strings.TrimSpace(stripComment(text))

		for {
			m := labelRe.FindStringSubmatch(line)
			if m == nil {
				break
			}
			if err = a.define(m[1], int64(addr)); err != nil {
				if err == ErrEquateDuplicate {
					err = ErrLabelDuplicate
				}
				return nil, err
			}
			line = strings.TrimSpace(line[len(m[0]):])
		}

		if line == "" {
			continue
		}
		if strings.HasSuffix(strings.Fields(line)[0], ":") {
			return nil, ErrLabelSyntax
		}

		mnemonic, rest := line, ""
		if i := strings.IndexAny(line, " \t"); i >= 0 {
			mnemonic, rest = line[:i], line[i+1:]
		}
		mnemonic = strings.ToLower(mnemonic)
		rest = strings.TrimSpace(rest)

		st := statement{
			lineNo:   lineNo,
			line:     text,
			addr:     addr,
			mnemonic: mnemonic,
		}

		switch mnemonic {
		case ".equ":
			if err = a.equate(rest); err != nil {
				return nil, err
			}
			continue
		case ".space":
			var n int64
			n, err = a.eval(rest)
			if err != nil {
				return nil, err
			}
			if n < 0 || n%4 != 0 {
				return nil, ErrSpaceSyntax
			}
			st.size = uint32(n)
		case ".word":
			st.operands = splitOperands(rest)
			st.size = 4 * uint32(len(st.operands))
		default:
			st.operands = splitOperands(rest)
			st.size = 4
		}

		stmts = append(stmts, st)
		addr += st.size
	}

	if err = scanner.Err(); err != nil {
		return nil, err
	}

	return stmts, nil
}

func (a *Assembler) define(name string, value int64) error {
	if _, ok := a.Symbols[name]; ok {
		return ErrEquateDuplicate
	}
	a.Symbols[name] = value
	return nil
}

// equate handles ".equ NAME, expr" and ".equ NAME expr".
func (a *Assembler) equate(rest string) error {
	i := strings.IndexAny(rest, " \t,")
	if i < 0 {
		return ErrEquateSyntax
	}

	name := rest[:i]
	expr := strings.TrimSpace(rest[i:])
	expr = strings.TrimSpace(strings.TrimPrefix(expr, ","))
	if !nameRe.MatchString(name) || expr == "" {
		return ErrEquateSyntax
	}

	value, err := a.eval(expr)
	if err != nil {
		return err
	}

	return a.define(name, value)
}

// encode is the second pass for one statement.
func (a *Assembler) encode(st statement) ([]uint32, error) {
	ops := st.operands

	switch st.mnemonic {
	case ".space":
		return make([]uint32, st.size/4), nil
	case ".word":
		words := make([]uint32, 0, len(ops))
		for _, op := range ops {
			v, err := a.eval(op)
			if err != nil {
				return nil, err
			}
			if v < -(1<<31) || v > 1<<32-1 {
				return nil, ErrWordRange
			}
			words = append(words, uint32(v))
		}
		return words, nil
	}

	word, err := a.encodeInstruction(st.mnemonic, st.addr, ops)
	if err != nil {
		return nil, err
	}
	return []uint32{word}, nil
}

func (a *Assembler) encodeInstruction(mnemonic string, addr uint32, ops []string) (uint32, error) {
	if alu, ok := aluOps[mnemonic]; ok {
		return a.encodeALU(alu, ops)
	}

	if op, ok := insts.BranchOps[mnemonic]; ok {
		if len(ops) != 2 {
			return 0, ErrOperandCount
		}
		ra, err := parseRegister(ops[0])
		if err != nil {
			return 0, err
		}
		diff, err := a.relative(ops[1], addr)
		if err != nil {
			return 0, err
		}
		if diff%4 != 0 {
			return 0, ErrTargetAlignment
		}
		if !insts.FitsSigned(diff/4, 21) {
			return 0, ErrImmediateRange{Value: diff / 4, Bits: 21}
		}
		word, ok := insts.TryEncodeBranch(op, ra, int32(diff/4))
		if !ok {
			return 0, ErrOffsetEncoding
		}
		return word, nil
	}

	switch mnemonic {
	case "li", "lih":
		if len(ops) != 2 {
			return 0, ErrOperandCount
		}
		rx, err := parseRegister(ops[0])
		if err != nil {
			return 0, err
		}
		imm, err := a.immediate(ops[1], 21)
		if err != nil {
			return 0, err
		}
		if mnemonic == "li" {
			return insts.EncodeLI(rx, imm), nil
		}
		return insts.EncodeLIH(rx, imm), nil

	case "ld", "st":
		if len(ops) != 2 {
			return 0, ErrOperandCount
		}
		r, err := parseRegister(ops[0])
		if err != nil {
			return 0, err
		}
		offset, base, err := splitMemory(ops[1])
		if err != nil {
			return 0, err
		}
		ra, err := parseRegister(base)
		if err != nil {
			return 0, err
		}
		imm, err := a.immediate(offset, 16)
		if err != nil {
			return 0, err
		}
		if mnemonic == "ld" {
			return insts.EncodeLD(r, ra, imm), nil
		}
		word, ok := insts.TryEncodeST(r, ra, imm)
		if !ok {
			return 0, ErrOffsetEncoding
		}
		return word, nil

	case "jl":
		if len(ops) != 2 {
			return 0, ErrOperandCount
		}
		rx, err := parseRegister(ops[0])
		if err != nil {
			return 0, err
		}
		diff, err := a.relative(ops[1], addr)
		if err != nil {
			return 0, err
		}
		if !insts.FitsSigned(diff, 21) {
			return 0, ErrImmediateRange{Value: diff, Bits: 21}
		}
		return insts.EncodeJL(rx, int32(diff)), nil

	case "jr":
		if len(ops) != 2 {
			return 0, ErrOperandCount
		}
		rx, err := parseRegister(ops[0])
		if err != nil {
			return 0, err
		}
		ra, err := parseRegister(ops[1])
		if err != nil {
			return 0, err
		}
		return insts.EncodeJR(rx, ra), nil

	case "sys", "halt":
		if len(ops) != 0 {
			return 0, ErrOperandCount
		}
		if mnemonic == "sys" {
			return insts.EncodeSYS(), nil
		}
		return insts.HaltWord, nil
	}

	return 0, ErrOpcodeInvalid
}

func (a *Assembler) encodeALU(alu aluOp, ops []string) (uint32, error) {
	if len(ops) != 3 {
		return 0, ErrOperandCount
	}

	rx, err := parseRegister(ops[0])
	if err != nil {
		return 0, err
	}
	ra, err := parseRegister(ops[1])
	if err != nil {
		return 0, err
	}

	switch alu.op {
	case insts.OpIAI, insts.OpCI:
		imm, err := a.immediate(ops[2], 12)
		if err != nil {
			return 0, err
		}
		if alu.op == insts.OpIAI {
			return insts.EncodeArithImm(alu.fn, rx, ra, imm), nil
		}
		return insts.EncodeCompareImm(alu.fn, rx, ra, imm), nil
	}

	rb, err := parseRegister(ops[2])
	if err != nil {
		return 0, err
	}
	return insts.Encode(alu.op, rx, ra, rb, uint32(alu.fn)), nil
}

// relative evaluates a jump target and returns its distance in bytes from
// the instruction after addr.
func (a *Assembler) relative(expr string, addr uint32) (int64, error) {
	target, err := a.eval(expr)
	if err != nil {
		return 0, err
	}
	return target - (int64(addr) + 4), nil
}

func (a *Assembler) immediate(expr string, bits uint) (int32, error) {
	v, err := a.eval(expr)
	if err != nil {
		return 0, err
	}
	if !insts.FitsSigned(v, bits) {
		return 0, ErrImmediateRange{Value: v, Bits: bits}
	}
	return int32(v), nil
}

// eval evaluates expr as a starlark expression over the symbol table.
func (a *Assembler) eval(expr string) (int64, error) {
	thread := starlark.Thread{Name: "asm"}
	opts := syntax.FileOptions{}

	pred := make(starlark.StringDict, len(a.Symbols))
	for name, value := range a.Symbols {
		pred[name] = starlark.MakeInt64(value)
	}

	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", "_rc="+expr+"\n", pred)
	if err != nil {
		return 0, ErrParseExpression{Expr: expr, Err: err}
	}

	rc, ok := dict["_rc"].(starlark.Int)
	if !ok {
		return 0, ErrParseExpression{Expr: expr}
	}
	v, ok := rc.Int64()
	if !ok {
		return 0, ErrParseExpression{Expr: expr}
	}
	return v, nil
}

func parseRegister(s string) (uint8, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) < 2 || s[0] != 'r' {
		return 0, ErrRegisterInvalid
	}

	n, err := strconv.ParseUint(s[1:], 10, 8)
	if err != nil || n >= emu.NumRegs {
		return 0, ErrRegisterInvalid
	}
	return uint8(n), nil
}

// splitMemory splits "expr(rN)" into its offset expression and register.
// An empty offset means 0.
func splitMemory(s string) (offset, base string, err error) {
	s = strings.TrimSpace(s)
	open := strings.LastIndex(s, "(")
	if !strings.HasSuffix(s, ")") || open < 0 {
		return "", "", ErrMemoryOperand
	}

	offset = strings.TrimSpace(s[:open])
	if offset == "" {
		offset = "0"
	}
	return offset, s[open+1 : len(s)-1], nil
}

// splitOperands splits on commas outside brackets.
func splitOperands(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	var ops []string
	depth, start := 0, 0
	for i, c := range s {
		switch c {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				ops = append(ops, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	return append(ops, strings.TrimSpace(s[start:]))
}

func stripComment(line string) string {
	if i := strings.IndexAny(line, "#;"); i >= 0 {
		return line[:i]
	}
	return line
}
