package emu

// MemoryObserver is notified of every successful LD/ST access. It must not
// change machine state.
type MemoryObserver interface {
	Observe(addr uint32, write bool)
}

// LoadStoreUnit implements R32 load and store operations.
type LoadStoreUnit struct {
	regFile  *RegFile
	memory   *Memory
	observer MemoryObserver
}

// NewLoadStoreUnit creates a new LoadStoreUnit connected to the given
// register file and memory. observer may be nil.
func NewLoadStoreUnit(regFile *RegFile, memory *Memory, observer MemoryObserver) *LoadStoreUnit {
	return &LoadStoreUnit{
		regFile:  regFile,
		memory:   memory,
		observer: observer,
	}
}

// LD performs a word load: Rx = mem[Ra + imm]
func (lsu *LoadStoreUnit) LD(rx, ra uint8, imm int32) error {
	addr := uint32(lsu.regFile.ReadReg(ra) + imm)

	value, err := lsu.memory.LoadWord(addr)
	if err != nil {
		return err
	}

	lsu.regFile.WriteReg(rx, int32(value))
	lsu.observe(addr, false)

	return nil
}

// ST performs a word store of Rb. The address validated is Ra + checkImm,
// but the word written is the one containing Ra + writeImm. The executor
// passes the store and load immediates of the same word respectively, which
// is how the hardware behaves.
func (lsu *LoadStoreUnit) ST(ra, rb uint8, checkImm, writeImm int32) error {
	base := lsu.regFile.ReadReg(ra)

	if err := lsu.memory.CheckAddress(uint32(base + checkImm)); err != nil {
		return err
	}

	addr := uint32(base+writeImm) &^ 3
	if addr >= lsu.memory.Size() {
		return fatalf(ErrOutOfRange, "exceeded %s limit: 0x%08x",
			sizeString(lsu.memory.Size()), addr)
	}

	lsu.memory.Write32(addr, lsu.regFile.ReadRegU(rb))
	lsu.observe(addr, true)

	return nil
}

func (lsu *LoadStoreUnit) observe(addr uint32, write bool) {
	if lsu.observer != nil {
		lsu.observer.Observe(addr, write)
	}
}
