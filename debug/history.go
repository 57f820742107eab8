package debug

import (
	"fmt"
	"io"

	"github.com/sarchlab/r32sim/emu"
	"github.com/sarchlab/r32sim/insts"
)

// Entry is one fetched instruction.
type Entry struct {
	PC   uint32
	Word uint32
}

// History remembers the most recent instructions the emulator was about to
// execute. The last entry of a failed run is the faulting instruction.
type History struct {
	entries []Entry
	next    int
	full    bool
	decoder *insts.Decoder
}

// NewHistory creates a history of the given depth. A depth of 0 records
// nothing.
func NewHistory(depth int) *History {
	return &History{
		entries: make([]Entry, depth),
		decoder: insts.NewDecoder(),
	}
}

// Cycle records the instruction at the PC. The halt word and fetches
// outside memory are not recorded.
func (h *History) Cycle(e *emu.Emulator) error {
	if len(h.entries) == 0 {
		return nil
	}

	word, ok := e.Fetch()
	if !ok || word == insts.HaltWord {
		return nil
	}

	h.entries[h.next] = Entry{PC: e.RegFile().PC, Word: word}
	h.next++
	if h.next == len(h.entries) {
		h.next = 0
		h.full = true
	}

	return nil
}

// Entries returns the recorded instructions, oldest first.
func (h *History) Entries() []Entry {
	if !h.full {
		return append([]Entry(nil), h.entries[:h.next]...)
	}

	out := make([]Entry, 0, len(h.entries))
	out = append(out, h.entries[h.next:]...)
	return append(out, h.entries[:h.next]...)
}

// Len returns the number of recorded instructions.
func (h *History) Len() int {
	if h.full {
		return len(h.entries)
	}
	return h.next
}

// Dump prints the history with disassembly.
func (h *History) Dump(w io.Writer) {
	entries := h.Entries()

	_, _ = fmt.Fprintf(w, "<Instruction history> (last %d)\n", len(entries))
	for _, entry := range entries {
		_, _ = fmt.Fprintf(w, "  0x%06x: %08x  %s\n",
			entry.PC, entry.Word, h.decoder.Decode(entry.Word))
	}
}
