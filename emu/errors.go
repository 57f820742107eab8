package emu

import (
	"errors"

	"github.com/sarchlab/r32sim/translate"
)

var f = translate.From

// Kinds of fatal runtime error. Every *FatalError unwraps to exactly one.
var (
	ErrMisaligned       = errors.New(f("misaligned address"))
	ErrOutOfRange       = errors.New(f("address out of range"))
	ErrPCOutOfRange     = errors.New(f("program counter out of range"))
	ErrUnknownOpcode    = errors.New(f("unknown opcode"))
	ErrUnknownFunc      = errors.New(f("unknown function code"))
	ErrSyscall          = errors.New(f("system call"))
	ErrImage            = errors.New(f("malformed program image"))
	ErrInstructionLimit = errors.New(f("instruction limit reached"))
)

// FatalError is an unrecoverable runtime error. The run stops at the
// instruction that raised it, leaving machine state untouched by that
// instruction so it can be dumped.
type FatalError struct {
	Kind  error  // One of the Err* kinds above.
	Msg   string // Formatted diagnostic.
	Cause error  // Underlying error, if any.
}

func (err *FatalError) Error() string {
	return err.Msg
}

func (err *FatalError) Unwrap() []error {
	if err.Cause != nil {
		return []error{err.Kind, err.Cause}
	}
	return []error{err.Kind}
}

// fatalf formats through the locale printer, which groups %d digits;
// counts that can exceed 999 are passed as strings.
func fatalf(kind error, format string, args ...any) *FatalError {
	return &FatalError{Kind: kind, Msg: f(format, args...)}
}

// IsFatal reports whether err is a fatal runtime error.
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}
