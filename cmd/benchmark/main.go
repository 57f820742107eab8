// Command benchmark runs the R32Sim microbenchmark harness.
//
// Usage:
//
//	go run ./cmd/benchmark [flags]
//
// Flags:
//
//	-csv        Output results in CSV format (default: human-readable)
//	-json       Output a JSON report
//	-no-dcache  Disable the data cache model
//	-config     Machine configuration JSON file
//	-v          Log each benchmark as it finishes
//
// Example:
//
//	# Output CSV for spreadsheet comparison
//	go run ./cmd/benchmark -csv > results.csv
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/r32sim/benchmarks"
	"github.com/sarchlab/r32sim/config"
)

func main() {
	// Parse flags
	csvOutput := flag.Bool("csv", false, "Output results in CSV format")
	jsonOutput := flag.Bool("json", false, "Output results as a JSON report")
	noDCache := flag.Bool("no-dcache", false, "Disable data cache simulation")
	configPath := flag.String("config", "", "Machine configuration JSON file")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	if *verbose {
		logrus.SetLevel(logrus.InfoLevel)
	} else {
		logrus.SetLevel(logrus.WarnLevel)
	}

	// Configure harness
	harnessConfig := benchmarks.DefaultConfig()
	if *configPath != "" {
		machine, err := config.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		harnessConfig.Machine = machine
	}
	harnessConfig.EnableDCache = !*noDCache
	harnessConfig.Output = os.Stdout
	harnessConfig.Verbose = *verbose

	harness := benchmarks.NewHarness(harnessConfig)
	harness.AddBenchmarks(benchmarks.GetMicrobenchmarks())

	if !*csvOutput && !*jsonOutput {
		fmt.Println("R32Sim Benchmark Harness")
		fmt.Println("========================")
		fmt.Printf("D-Cache: %v\n", harnessConfig.EnableDCache)
		fmt.Println("")
	}

	results := harness.RunAll()

	switch {
	case *jsonOutput:
		if err := harness.PrintJSON(results); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case *csvOutput:
		harness.PrintCSV(results)
	default:
		harness.PrintResults(results)

		summary := benchmarks.Summarize(results)
		fmt.Println("=== Summary ===")
		fmt.Printf("Passed: %d/%d\n", summary.Passed, summary.TotalBenchmarks)
		fmt.Printf("Instructions: %d in %v\n", summary.TotalInstructions, summary.TotalWallTime)
	}

	if summary := benchmarks.Summarize(results); summary.Passed != summary.TotalBenchmarks {
		os.Exit(1)
	}
}
