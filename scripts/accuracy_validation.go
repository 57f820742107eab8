// Package main provides accuracy validation for the emulator's supporting
// models. It checks that the encoder, decoder, assembler and cache model
// agree with each other and never change what a program computes.
package main

import (
	"encoding/binary"
	"fmt"
	"os"
	"strings"

	"github.com/sarchlab/r32sim/asm"
	"github.com/sarchlab/r32sim/benchmarks"
	"github.com/sarchlab/r32sim/emu"
	"github.com/sarchlab/r32sim/insts"
)

// testInstructionDecoding validates that every encoder round-trips through
// the decoder, the disassembler and the assembler.
func testInstructionDecoding() bool {
	decoder := insts.NewDecoder()

	testCases := []uint32{
		insts.EncodeArith(insts.FuncADDX4, 2, 0, 1),
		insts.EncodeArithImm(insts.FuncSUB, 3, 3, -1),
		insts.EncodeCompareImm(insts.FuncGT, 6, 4, 100),
		insts.EncodeLI(1, -5),
		insts.EncodeLIH(7, 0x3ff),
		insts.EncodeLD(4, 30, -8),
		insts.EncodeST(5, 30, 12),
		insts.EncodeJR(0, 31),
		insts.EncodeSYS(),
	}

	fmt.Println("Testing instruction decoder accuracy...")

	for i, word := range testCases {
		inst := decoder.Decode(word)
		text := inst.String()

		assembler := asm.NewAssembler()
		prog, err := assembler.Assemble(strings.NewReader(text + "\n"))
		if err != nil {
			fmt.Printf("❌ Test case %d failed: %q does not assemble: %v\n", i, text, err)
			return false
		}

		got := binary.LittleEndian.Uint32(prog.Data)
		if got != word {
			fmt.Printf("❌ Test case %d failed: %q reassembled to 0x%08X, want 0x%08X\n",
				i, text, got, word)
			return false
		}

		fmt.Printf("✅ Test case %d: 0x%08X <-> %s\n", i, word, text)
	}

	return true
}

// testExecution validates a small program against hand-computed results for
// several initial register values.
func testExecution() bool {
	fmt.Println("\nTesting execution accuracy...")

	testValues := []int32{0, 1, 42, -1, 0x7FFFFFFF}

	for i, initialValue := range testValues {
		e := emu.NewEmulator()
		e.RegFile().WriteReg(0, initialValue)

		program := []uint32{
			insts.EncodeArithImm(insts.FuncADD, 1, 0, 1),
			insts.EncodeArithImm(insts.FuncADD, 2, 1, 2),
			insts.HaltWord,
		}
		var data []byte
		for _, w := range program {
			data = binary.LittleEndian.AppendUint32(data, w)
		}
		if err := e.LoadProgram(data); err != nil {
			fmt.Printf("❌ Test case %d: %v\n", i, err)
			return false
		}

		if err := e.Run(); err != nil {
			fmt.Printf("❌ Test case %d: %v\n", i, err)
			return false
		}

		r1, r2 := e.RegFile().ReadReg(1), e.RegFile().ReadReg(2)
		wantR1 := initialValue + 1
		wantR2 := wantR1 + 2

		if r1 != wantR1 || r2 != wantR2 {
			fmt.Printf("❌ Test case %d failed:\n", i)
			fmt.Printf("  Initial r0: %d\n", initialValue)
			fmt.Printf("  Expected r1: %d, Got: %d\n", wantR1, r1)
			fmt.Printf("  Expected r2: %d, Got: %d\n", wantR2, r2)
			return false
		}

		fmt.Printf("✅ Test case %d: r0=%d → r1=%d, r2=%d (%d insts)\n",
			i, initialValue, r1, r2, e.InstructionCount())
	}

	return true
}

// testCacheTransparency validates that attaching the cache model leaves
// every benchmark's result and instruction count unchanged.
func testCacheTransparency() bool {
	fmt.Println("\nTesting cache model transparency...")

	run := func(dcache bool) []benchmarks.BenchmarkResult {
		config := benchmarks.DefaultConfig()
		config.EnableDCache = dcache
		harness := benchmarks.NewHarness(config)
		harness.AddBenchmarks(benchmarks.GetMicrobenchmarks())
		return harness.RunAll()
	}

	without, with := run(false), run(true)

	for i := range without {
		a, b := without[i], with[i]
		if a.ExitCode != b.ExitCode || a.Instructions != b.Instructions || a.Error != b.Error {
			fmt.Printf("❌ %s: %d/%d without cache, %d/%d with cache\n",
				a.Name, a.ExitCode, a.Instructions, b.ExitCode, b.Instructions)
			return false
		}

		fmt.Printf("✅ %s: exit %d, %d insts, %d/%d cache hits\n",
			a.Name, a.ExitCode, a.Instructions, b.DCacheHits, b.DCacheReads+b.DCacheWrites)
	}

	return true
}

func main() {
	fmt.Println("R32Sim Accuracy Validation")
	fmt.Println("==========================")

	allPassed := true

	if !testInstructionDecoding() {
		allPassed = false
	}

	if !testExecution() {
		allPassed = false
	}

	if !testCacheTransparency() {
		allPassed = false
	}

	fmt.Println("\n==========================")
	if allPassed {
		fmt.Println("🎉 ALL ACCURACY TESTS PASSED")
		os.Exit(0)
	} else {
		fmt.Println("❌ ACCURACY TESTS FAILED")
		os.Exit(1)
	}
}
