// Package main provides the entry point for R32Sim.
// R32Sim is a functional simulator for the R32 32-bit instruction set.
//
// For the full CLI, use: go run ./cmd/r32sim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("R32Sim - R32 Instruction Set Simulator")
	fmt.Println("")
	fmt.Println("Usage: r32sim [options] <program.bin>")
	fmt.Println("       r32sim asm [options] <source.s>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  --boot-test  Start at address 0 without presetting r30/r31")
	fmt.Println("  --debug      Step through the program interactively")
	fmt.Println("  --msize      Memory size in megabytes")
	fmt.Println("  --stat       Print the simulator status after the run")
	fmt.Println("  --cache      Model a data cache and report its statistics")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/r32sim --help' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/r32sim' instead.")
	}
}
