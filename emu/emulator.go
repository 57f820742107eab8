package emu

import (
	"io"
	"strconv"

	"github.com/sarchlab/r32sim/insts"
	"github.com/sarchlab/r32sim/loader"
)

// DefaultEntryPoint is where programs are loaded and started.
const DefaultEntryPoint uint32 = 0x2000

// StepResult represents the result of a single run-loop cycle.
type StepResult struct {
	// Halted is true if the halt sentinel was fetched. Nothing was executed.
	Halted bool

	// Jumped is true if the instruction manages the PC itself: every jump
	// and every conditional branch, taken or not.
	Jumped bool

	// Taken is true if a jump or branch actually moved the PC. It is false
	// for a conditional branch whose condition did not hold.
	Taken bool

	// Err is set if an error occurred during execution.
	Err error
}

// advancesPC reports whether the run loop must step the PC to the next
// instruction. An untaken branch left the PC on itself, so it advances too.
func (r StepResult) advancesPC() bool {
	return !r.Jumped || !r.Taken
}

// DebugHook is invoked once per cycle, before the PC is checked and the
// instruction is fetched. Returning an error stops the run with that error.
type DebugHook interface {
	Cycle(e *Emulator) error
}

// DebugHookFunc adapts a function to DebugHook.
type DebugHookFunc func(e *Emulator) error

// Cycle calls fn(e).
func (fn DebugHookFunc) Cycle(e *Emulator) error {
	return fn(e)
}

// Emulator executes R32 instructions functionally.
type Emulator struct {
	regFile        *RegFile
	memory         *Memory
	decoder        *insts.Decoder
	syscallHandler SyscallHandler
	debugHook      DebugHook
	observer       MemoryObserver

	// Execution units
	alu        *ALU
	lsu        *LoadStoreUnit
	branchUnit *BranchUnit

	// Configuration
	memorySize uint32
	entryPoint uint32
	bootTest   bool

	// Execution state
	instructionCount uint64
	maxInstructions  uint64 // 0 means no limit
}

// EmulatorOption is a functional option for configuring the Emulator.
type EmulatorOption func(*Emulator)

// WithMemorySize sets the memory size in bytes.
func WithMemorySize(size uint32) EmulatorOption {
	return func(e *Emulator) {
		e.memorySize = size
	}
}

// WithEntryPoint sets the load and start address.
func WithEntryPoint(entry uint32) EmulatorOption {
	return func(e *Emulator) {
		e.entryPoint = entry
	}
}

// WithBootTest selects boot-test mode: the entry point is 0 and R30/R31
// are not preset to the memory size.
func WithBootTest() EmulatorOption {
	return func(e *Emulator) {
		e.bootTest = true
		e.entryPoint = 0
	}
}

// WithDebugHook installs a hook called at the start of every cycle.
func WithDebugHook(hook DebugHook) EmulatorOption {
	return func(e *Emulator) {
		e.debugHook = hook
	}
}

// WithMemoryObserver installs an observer of LD/ST traffic.
func WithMemoryObserver(observer MemoryObserver) EmulatorOption {
	return func(e *Emulator) {
		e.observer = observer
	}
}

// WithSyscallHandler sets a custom handler for the SYS instruction.
func WithSyscallHandler(handler SyscallHandler) EmulatorOption {
	return func(e *Emulator) {
		e.syscallHandler = handler
	}
}

// WithMaxInstructions sets the maximum number of instructions to execute.
// A value of 0 means no limit.
func WithMaxInstructions(max uint64) EmulatorOption {
	return func(e *Emulator) {
		e.maxInstructions = max
	}
}

// NewEmulator creates a new R32 emulator in its reset state.
func NewEmulator(opts ...EmulatorOption) *Emulator {
	e := &Emulator{
		decoder:        insts.NewDecoder(),
		syscallHandler: UnsupportedSyscallHandler{},
		alu:            NewALU(),
		memorySize:     DefaultMemorySize,
		entryPoint:     DefaultEntryPoint,
	}

	for _, opt := range opts {
		opt(e)
	}

	e.Reset()

	return e
}

// RegFile returns the emulator's register file.
func (e *Emulator) RegFile() *RegFile {
	return e.regFile
}

// Memory returns the emulator's memory.
func (e *Emulator) Memory() *Memory {
	return e.memory
}

// InstructionCount returns the number of instructions executed since reset.
func (e *Emulator) InstructionCount() uint64 {
	return e.instructionCount
}

// EntryPoint returns the load and start address.
func (e *Emulator) EntryPoint() uint32 {
	return e.entryPoint
}

// Reset reallocates memory, clears the registers and instruction count, and
// sets the PC to the entry point.
func (e *Emulator) Reset() {
	e.regFile = &RegFile{}
	e.memory = NewMemory(e.memorySize)
	e.instructionCount = 0

	if !e.bootTest {
		e.regFile.R[30] = int32(e.memory.Size())
		e.regFile.R[31] = int32(e.memory.Size())
	}
	e.regFile.PC = e.entryPoint

	// Recreate execution units
	e.lsu = NewLoadStoreUnit(e.regFile, e.memory, e.observer)
	e.branchUnit = NewBranchUnit(e.regFile)
}

// LoadProgram copies program bytes into memory at the entry point.
func (e *Emulator) LoadProgram(program []byte) error {
	return e.memory.LoadBytes(e.entryPoint, program)
}

// Load reads a program image from r and loads it at the entry point.
func (e *Emulator) Load(r io.Reader) error {
	prog, err := loader.Read(r)
	if err != nil {
		return &FatalError{
			Kind:  ErrImage,
			Msg:   f("load_file: %v", err),
			Cause: err,
		}
	}
	return e.LoadProgram(prog.Data)
}

// Fetch returns the word the next cycle would execute, and false if the PC
// is outside memory.
func (e *Emulator) Fetch() (uint32, bool) {
	pc := e.regFile.PC
	if pc >= e.memory.Size() {
		return 0, false
	}
	return e.memory.Read32(pc &^ 3), true
}

// Step runs one cycle: debug hook, PC check, fetch, halt check, execute,
// count, and PC advance.
func (e *Emulator) Step() StepResult {
	if e.debugHook != nil {
		if err := e.debugHook.Cycle(e); err != nil {
			return StepResult{Err: err}
		}
	}

	// 1. Fetch
	word, ok := e.Fetch()
	if !ok {
		return StepResult{Err: fatalf(ErrPCOutOfRange, "program counter out of range")}
	}
	if word == insts.HaltWord {
		return StepResult{Halted: true}
	}

	if e.maxInstructions > 0 && e.instructionCount >= e.maxInstructions {
		return StepResult{
			Err: fatalf(ErrInstructionLimit, "max instructions reached: %s",
				strconv.FormatUint(e.maxInstructions, 10)),
		}
	}

	// 2. Decode
	inst := e.decoder.Decode(word)

	// 3. Execute
	result := e.Execute(inst)
	if result.Err != nil {
		return result
	}

	e.instructionCount++

	if result.advancesPC() {
		e.regFile.PC += 4
	}

	return result
}

// Run executes instructions until the halt sentinel is fetched or an error
// occurs.
func (e *Emulator) Run() error {
	for {
		result := e.Step()
		if result.Err != nil {
			return result.Err
		}
		if result.Halted {
			return nil
		}
	}
}

// RunProgram resets the machine, loads the image from r and runs it.
func (e *Emulator) RunProgram(r io.Reader) error {
	e.Reset()

	if err := e.Load(r); err != nil {
		return err
	}

	return e.Run()
}

// Execute performs one decoded instruction. It never advances the PC past
// the instruction; Jumped in the result tells the caller whether the
// instruction managed the PC itself.
func (e *Emulator) Execute(inst insts.Instruction) StepResult {
	a := e.regFile.ReadReg(inst.Ra)
	b := e.regFile.ReadReg(inst.Rb)

	switch inst.Op {
	case insts.OpIAI:
		return e.executeALU(UnitArith, inst, a, inst.ImmI)
	case insts.OpIAR:
		return e.executeALU(UnitArith, inst, a, b)
	case insts.OpCI:
		return e.executeALU(UnitCompare, inst, a, inst.ImmI)
	case insts.OpCR:
		return e.executeALU(UnitCompare, inst, a, b)
	case insts.OpLI:
		e.regFile.WriteReg(inst.Rx, inst.ImmN)
	case insts.OpLIH:
		e.regFile.WriteReg(inst.Rx, inst.ImmN<<11)
	case insts.OpLD:
		return StepResult{Err: e.lsu.LD(inst.Rx, inst.Ra, inst.ImmL)}
	case insts.OpST:
		return StepResult{Err: e.lsu.ST(inst.Ra, inst.Rb, inst.ImmS, inst.ImmL)}
	case insts.OpJL:
		e.branchUnit.JL(inst.Rx, inst.ImmN)
		return StepResult{Jumped: true, Taken: true}
	case insts.OpJR:
		e.branchUnit.JR(inst.Rx, inst.Ra)
		return StepResult{Jumped: true, Taken: true}
	case insts.OpJEQ, insts.OpJNE, insts.OpJLT, insts.OpJLE, insts.OpJGT, insts.OpJGE:
		taken := e.branchUnit.Branch(inst.Op, inst.Ra, inst.ImmC)
		return StepResult{Jumped: true, Taken: taken}
	case insts.OpSYS:
		return StepResult{Err: e.syscallHandler.Handle(e.regFile, e.memory)}
	default:
		return StepResult{Err: fatalf(ErrUnknownOpcode, "unknown opcode = %d", uint8(inst.Op))}
	}

	return StepResult{}
}

func (e *Emulator) executeALU(unit Unit, inst insts.Instruction, a, b int32) StepResult {
	value, err := e.alu.Evaluate(unit, inst.Func, a, b)
	if err != nil {
		return StepResult{Err: err}
	}

	e.regFile.WriteReg(inst.Rx, value)

	return StepResult{}
}
