package debug

import (
	"errors"
	"fmt"
	"io"

	"github.com/pkg/term"

	"github.com/sarchlab/r32sim/emu"
	"github.com/sarchlab/r32sim/insts"
)

// ErrQuit is returned by the stepper when the user asks to stop.
var ErrQuit = errors.New("debugger: quit")

const stepperHelp = "[s]tep [c]ontinue [r]egs [q]uit> "

// Stepper is an interactive single-stepper. Before each cycle it shows the
// next instruction and waits for a key:
//
//	s, space, enter  execute one instruction
//	c                run until a breakpoint or the end
//	r                print registers
//	q                stop the run with ErrQuit
//
// End of input behaves like c.
type Stepper struct {
	in          io.Reader
	out         io.Writer
	running     bool
	breakpoints map[uint32]bool
	decoder     *insts.Decoder
}

// NewStepper creates a stepper reading keys from in and writing to out.
func NewStepper(in io.Reader, out io.Writer) *Stepper {
	return &Stepper{
		in:          in,
		out:         out,
		breakpoints: make(map[uint32]bool),
		decoder:     insts.NewDecoder(),
	}
}

// Break sets a breakpoint that stops a continued run at pc.
func (s *Stepper) Break(pc uint32) {
	s.breakpoints[pc] = true
}

// Cycle prompts for a key unless the run is continuing.
func (s *Stepper) Cycle(e *emu.Emulator) error {
	pc := e.RegFile().PC
	if s.running {
		if !s.breakpoints[pc] {
			return nil
		}
		s.running = false
		_, _ = fmt.Fprintf(s.out, "breakpoint at 0x%06x\n", pc)
	}

	word, ok := e.Fetch()
	if !ok {
		_, _ = fmt.Fprintf(s.out, "0x%06x: <out of range>\n", pc)
	} else {
		_, _ = fmt.Fprintf(s.out, "0x%06x: %08x  %s\n", pc, word, s.decoder.Decode(word))
	}

	var key [1]byte
	for {
		_, _ = fmt.Fprint(s.out, stepperHelp)

		if _, err := io.ReadFull(s.in, key[:]); err != nil {
			_, _ = fmt.Fprintln(s.out)
			if errors.Is(err, io.EOF) {
				s.running = true
				return nil
			}
			return err
		}
		_, _ = fmt.Fprintln(s.out)

		switch key[0] {
		case 's', ' ', '\n', '\r':
			return nil
		case 'c':
			s.running = true
			return nil
		case 'r':
			e.Snapshot().WriteStatus(s.out, true)
		case 'q':
			return ErrQuit
		}
	}
}

// Terminal is a controlling terminal in cbreak mode, so the stepper gets
// keys without waiting for a newline.
type Terminal struct {
	t *term.Term
}

// OpenTerminal opens the terminal device at path, usually /dev/tty.
func OpenTerminal(path string) (*Terminal, error) {
	t, err := term.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open terminal: %w", err)
	}

	if err := t.SetCbreak(); err != nil {
		_ = t.Close()
		return nil, fmt.Errorf("failed to set cbreak mode: %w", err)
	}

	return &Terminal{t: t}, nil
}

func (t *Terminal) Read(p []byte) (int, error) {
	return t.t.Read(p)
}

// Close restores the original terminal mode and closes the device.
func (t *Terminal) Close() error {
	if err := t.t.Restore(); err != nil {
		_ = t.t.Close()
		return err
	}
	return t.t.Close()
}
