package emu

import (
	"encoding/binary"
	"strconv"
)

// DefaultMemorySize is the default size of emulated memory (4 MiB).
const DefaultMemorySize uint32 = 4 << 20

// Memory is a flat, byte-addressable region of fixed size. Words are stored
// little-endian.
type Memory struct {
	data []byte
}

// NewMemory allocates zeroed memory of the given size in bytes, rounded
// down to a whole number of words.
func NewMemory(size uint32) *Memory {
	return &Memory{data: make([]byte, size&^3)}
}

// Size returns the memory size in bytes.
func (m *Memory) Size() uint32 {
	return uint32(len(m.data))
}

// CheckAddress validates a word address for LD/ST. It fails if addr is not
// a multiple of 4 or does not lie below the memory size.
func (m *Memory) CheckAddress(addr uint32) error {
	if addr&3 != 0 {
		return fatalf(ErrMisaligned, "load: address must be a multiple of 4: 0x%08x", addr)
	}
	if addr >= m.Size() {
		return fatalf(ErrOutOfRange, "exceeded %s limit: 0x%08x", sizeString(m.Size()), addr)
	}
	return nil
}

// LoadWord reads the word at a validated address.
func (m *Memory) LoadWord(addr uint32) (uint32, error) {
	if err := m.CheckAddress(addr); err != nil {
		return 0, err
	}
	return m.Read32(addr), nil
}

// StoreWord writes the word at a validated address.
func (m *Memory) StoreWord(addr uint32, value uint32) error {
	if err := m.CheckAddress(addr); err != nil {
		return err
	}
	m.Write32(addr, value)
	return nil
}

// Read32 reads a word without validation. addr+4 must not exceed Size.
func (m *Memory) Read32(addr uint32) uint32 {
	return binary.LittleEndian.Uint32(m.data[addr:])
}

// Write32 writes a word without validation. addr+4 must not exceed Size.
func (m *Memory) Write32(addr uint32, value uint32) {
	binary.LittleEndian.PutUint32(m.data[addr:], value)
}

// Read8 reads a byte. Out-of-range reads return 0.
func (m *Memory) Read8(addr uint32) byte {
	if addr >= m.Size() {
		return 0
	}
	return m.data[addr]
}

// LoadBytes copies data verbatim into memory starting at addr.
func (m *Memory) LoadBytes(addr uint32, data []byte) error {
	if uint64(addr)+uint64(len(data)) > uint64(m.Size()) {
		return fatalf(ErrImage,
			"load_file: program of %s bytes at 0x%06x exceeds %s memory",
			strconv.Itoa(len(data)), addr, sizeString(m.Size()))
	}
	copy(m.data[addr:], data)
	return nil
}

// sizeString renders a memory size the way diagnostics report it.
func sizeString(size uint32) string {
	if size%(1<<20) == 0 {
		return strconv.FormatUint(uint64(size>>20), 10) + "MB"
	}
	return strconv.FormatUint(uint64(size), 10) + "B"
}
