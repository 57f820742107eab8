// Validate decoder allocations - measures decode and disassembly cost per word
package main

import (
	"fmt"
	"runtime"
	"time"

	"github.com/sarchlab/r32sim/insts"
)

func main() {
	decoder := insts.NewDecoder()

	words := [4]uint32{
		insts.EncodeArithImm(insts.FuncADD, 1, 1, 42), // addi r1, r1, 42
		insts.EncodeArith(insts.FuncADDX4, 2, 0, 1),   // addx4 r2, r0, r1
		insts.EncodeLD(4, 30, -8),                     // ld r4, -8(r30)
		insts.EncodeBranch(insts.OpJNE, 1, -3),        // jne r1, -3
	}

	// Warm up
	for i := 0; i < 1000; i++ {
		decoder.Decode(words[i%4])
	}

	runtime.GC()
	var m1, m2 runtime.MemStats
	runtime.ReadMemStats(&m1)

	start := time.Now()
	iterations := 100000

	var sink insts.Format
	for i := 0; i < iterations; i++ {
		for _, w := range words {
			sink ^= decoder.Decode(w).Format
		}
	}

	elapsed := time.Since(start)
	runtime.ReadMemStats(&m2)

	totalDecodes := iterations * len(words)
	allocations := m2.Mallocs - m1.Mallocs
	allocatedBytes := m2.TotalAlloc - m1.TotalAlloc

	fmt.Printf("Decoder Validation Results:\n")
	fmt.Printf("===========================\n")
	fmt.Printf("Total decode operations: %d\n", totalDecodes)
	fmt.Printf("Time elapsed: %v\n", elapsed)
	fmt.Printf("Decodes per second: %.0f\n", float64(totalDecodes)/elapsed.Seconds())
	fmt.Printf("Allocations: %d\n", allocations)
	fmt.Printf("Allocated bytes: %d\n", allocatedBytes)
	fmt.Printf("Allocations per decode: %.3f\n", float64(allocations)/float64(totalDecodes))
	fmt.Printf("Bytes per decode: %.1f\n", float64(allocatedBytes)/float64(totalDecodes))
	fmt.Printf("(checksum %d)\n", sink)

	// Disassembly allocates its string; report the cost for the tracer.
	runtime.ReadMemStats(&m1)
	start = time.Now()
	for i := 0; i < iterations; i++ {
		_ = decoder.Decode(words[i%4]).String()
	}
	elapsed = time.Since(start)
	runtime.ReadMemStats(&m2)

	fmt.Printf("\nDisassembly: %v for %d words, %.2f allocations per word\n",
		elapsed, iterations, float64(m2.Mallocs-m1.Mallocs)/float64(iterations))

	if allocations == 0 {
		fmt.Printf("\n✅ SUCCESS: Zero allocations detected in Decode.\n")
	} else if float64(allocations)/float64(totalDecodes) < 0.1 {
		fmt.Printf("\n✅ GOOD: Low allocation rate (< 0.1 per decode)\n")
	} else {
		fmt.Printf("\n⚠️  WARNING: High allocation rate detected\n")
	}
}
