// Package debug provides debug hooks for the emulator: an instruction
// history, a logging tracer and an interactive single-stepper.
package debug

import (
	"github.com/sarchlab/r32sim/emu"
)

type chain []emu.DebugHook

// Chain combines hooks into one that calls each in order and stops at the
// first error. Nil hooks are skipped; Chain returns nil if none remain.
func Chain(hooks ...emu.DebugHook) emu.DebugHook {
	var c chain
	for _, h := range hooks {
		if h != nil {
			c = append(c, h)
		}
	}

	switch len(c) {
	case 0:
		return nil
	case 1:
		return c[0]
	}
	return c
}

func (c chain) Cycle(e *emu.Emulator) error {
	for _, h := range c {
		if err := h.Cycle(e); err != nil {
			return err
		}
	}
	return nil
}
