package emu

// SyscallHandler services the SYS instruction. A nil return lets execution
// continue at PC+4; any error stops the run.
type SyscallHandler interface {
	Handle(regFile *RegFile, memory *Memory) error
}

// SyscallHandlerFunc adapts a function to SyscallHandler.
type SyscallHandlerFunc func(regFile *RegFile, memory *Memory) error

// Handle calls fn(regFile, memory).
func (fn SyscallHandlerFunc) Handle(regFile *RegFile, memory *Memory) error {
	return fn(regFile, memory)
}

// UnsupportedSyscallHandler rejects every system call. It is the default.
type UnsupportedSyscallHandler struct{}

// Handle always fails.
func (UnsupportedSyscallHandler) Handle(*RegFile, *Memory) error {
	return fatalf(ErrSyscall, "SYS opcode unsupported for now")
}
