// Package benchmarks runs small R32 programs through the emulator and the
// cache model and reports throughput and memory behavior.
package benchmarks

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/r32sim/asm"
	"github.com/sarchlab/r32sim/config"
	"github.com/sarchlab/r32sim/emu"
)

// ResultReg is the register a benchmark leaves its result in.
const ResultReg = 1

// BenchmarkResult holds the results for a single benchmark run.
type BenchmarkResult struct {
	// Name identifies the benchmark
	Name string `json:"name"`

	// Description explains what the benchmark measures
	Description string `json:"description"`

	// Instructions is the number of instructions executed before halt
	Instructions uint64 `json:"instructions"`

	// ExitCode is the value of the result register at halt
	ExitCode int32 `json:"exit_code"`

	// Passed is true when ExitCode matched the benchmark's expectation
	Passed bool `json:"passed"`

	// Error holds the assembly or runtime error, if any
	Error string `json:"error,omitempty"`

	// Data cache statistics (if the cache model is enabled)
	DCacheReads     uint64  `json:"dcache_reads,omitempty"`
	DCacheWrites    uint64  `json:"dcache_writes,omitempty"`
	DCacheHits      uint64  `json:"dcache_hits,omitempty"`
	DCacheMisses    uint64  `json:"dcache_misses,omitempty"`
	DCacheHitRate   float64 `json:"dcache_hit_rate,omitempty"`
	DCacheCycles    uint64  `json:"dcache_cycles,omitempty"`
	L2CacheHits     uint64  `json:"l2_hits,omitempty"`
	L2CacheMisses   uint64  `json:"l2_misses,omitempty"`
	DCacheEvictions uint64  `json:"dcache_evictions,omitempty"`

	// WallTime is the actual time taken to run the program
	WallTime time.Duration `json:"wall_time_ns"`
}

// MIPS returns millions of emulated instructions per wall-clock second.
func (r BenchmarkResult) MIPS() float64 {
	if r.WallTime <= 0 {
		return 0
	}
	return float64(r.Instructions) / r.WallTime.Seconds() / 1e6
}

// Benchmark defines a single benchmark program.
type Benchmark struct {
	// Name identifies the benchmark
	Name string

	// Description explains what the benchmark measures
	Description string

	// Source is R32 assembly. It is assembled at the machine's entry point.
	Source string

	// ExpectedExit is the value ResultReg must hold at halt
	ExpectedExit int32
}

// HarnessConfig configures the benchmark harness.
type HarnessConfig struct {
	// Machine holds memory, entry point and cache settings. Debug and
	// statistics switches are ignored.
	Machine *config.Config

	// EnableDCache enables the data cache model, overriding Machine.
	EnableDCache bool

	// Output is where to write results (default: os.Stdout)
	Output io.Writer

	// Verbose logs each benchmark as it finishes
	Verbose bool
}

// DefaultConfig returns a default harness configuration.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		Machine:      config.DefaultConfig(),
		EnableDCache: true,
		Output:       os.Stdout,
	}
}

// Harness runs benchmarks and reports results.
type Harness struct {
	config     HarnessConfig
	benchmarks []Benchmark
}

// NewHarness creates a new benchmark harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if config.Machine == nil {
		config.Machine = DefaultConfig().Machine
	}

	machine := config.Machine.Clone()
	machine.Cache.Enabled = config.EnableDCache
	config.Machine = machine

	return &Harness{
		config:     config,
		benchmarks: []Benchmark{},
	}
}

// AddBenchmark adds a benchmark to the harness.
func (h *Harness) AddBenchmark(b Benchmark) {
	h.benchmarks = append(h.benchmarks, b)
}

// AddBenchmarks adds multiple benchmarks to the harness.
func (h *Harness) AddBenchmarks(benchmarks []Benchmark) {
	h.benchmarks = append(h.benchmarks, benchmarks...)
}

// RunAll executes all benchmarks and returns results.
func (h *Harness) RunAll() []BenchmarkResult {
	results := make([]BenchmarkResult, 0, len(h.benchmarks))

	for _, bench := range h.benchmarks {
		result := h.runBenchmark(bench)

		entry := logrus.WithFields(logrus.Fields{
			"benchmark":    result.Name,
			"instructions": result.Instructions,
			"exit":         result.ExitCode,
			"wall":         result.WallTime,
		})
		switch {
		case result.Error != "":
			entry.Warn(result.Error)
		case h.config.Verbose:
			entry.Info("benchmark finished")
		}

		results = append(results, result)
	}

	return results
}

// runBenchmark executes a single benchmark on a fresh machine.
func (h *Harness) runBenchmark(bench Benchmark) BenchmarkResult {
	result := BenchmarkResult{
		Name:        bench.Name,
		Description: bench.Description,
	}

	machine := h.config.Machine

	assembler := asm.NewAssembler()
	assembler.Origin = machine.EntryPoint
	if machine.BootTest {
		assembler.Origin = 0
	}

	prog, err := assembler.Assemble(strings.NewReader(bench.Source))
	if err != nil {
		result.Error = err.Error()
		return result
	}

	l1 := machine.NewCache()
	opts := machine.EmulatorOptions()
	if l1 != nil {
		opts = append(opts, emu.WithMemoryObserver(l1))
	}

	e := emu.NewEmulator(opts...)
	if err := e.LoadProgram(prog.Data); err != nil {
		result.Error = err.Error()
		return result
	}

	start := time.Now()
	err = e.Run()
	result.WallTime = time.Since(start)

	result.Instructions = e.InstructionCount()
	result.ExitCode = e.RegFile().ReadReg(ResultReg)
	result.Passed = err == nil && result.ExitCode == bench.ExpectedExit
	if err != nil {
		result.Error = err.Error()
	}

	if l1 != nil {
		stats := l1.Stats()
		result.DCacheReads = stats.Reads
		result.DCacheWrites = stats.Writes
		result.DCacheHits = stats.Hits
		result.DCacheMisses = stats.Misses
		result.DCacheHitRate = stats.HitRate()
		result.DCacheCycles = stats.Cycles
		result.DCacheEvictions = stats.Evictions

		if l2 := l1.Next(); l2 != nil {
			result.L2CacheHits = l2.Stats().Hits
			result.L2CacheMisses = l2.Stats().Misses
		}
	}

	return result
}

// PrintResults outputs benchmark results in a human-readable format.
func (h *Harness) PrintResults(results []BenchmarkResult) {
	out := h.config.Output

	_, _ = fmt.Fprintln(out, "=== R32Sim Benchmark Results ===")
	_, _ = fmt.Fprintln(out, "")

	for _, r := range results {
		_, _ = fmt.Fprintf(out, "Benchmark: %s\n", r.Name)
		_, _ = fmt.Fprintf(out, "  Description: %s\n", r.Description)
		_, _ = fmt.Fprintf(out, "  Exit Code: %d", r.ExitCode)
		if r.Passed {
			_, _ = fmt.Fprintln(out, " (ok)")
		} else {
			_, _ = fmt.Fprintln(out, " (MISMATCH)")
		}
		if r.Error != "" {
			_, _ = fmt.Fprintf(out, "  Error: %s\n", r.Error)
		}
		_, _ = fmt.Fprintf(out, "  Instructions: %d\n", r.Instructions)
		_, _ = fmt.Fprintf(out, "  MIPS:         %.2f\n", r.MIPS())

		if r.DCacheReads > 0 || r.DCacheWrites > 0 {
			_, _ = fmt.Fprintln(out, "  --- D-Cache ---")
			_, _ = fmt.Fprintf(out, "  Reads:     %d\n", r.DCacheReads)
			_, _ = fmt.Fprintf(out, "  Writes:    %d\n", r.DCacheWrites)
			_, _ = fmt.Fprintf(out, "  Hits:      %d\n", r.DCacheHits)
			_, _ = fmt.Fprintf(out, "  Misses:    %d\n", r.DCacheMisses)
			_, _ = fmt.Fprintf(out, "  Hit Rate:  %.1f%%\n", r.DCacheHitRate*100)
			_, _ = fmt.Fprintf(out, "  Evictions: %d\n", r.DCacheEvictions)
			_, _ = fmt.Fprintf(out, "  Cycles:    %d\n", r.DCacheCycles)
		}

		if r.L2CacheHits > 0 || r.L2CacheMisses > 0 {
			_, _ = fmt.Fprintln(out, "  --- L2 ---")
			_, _ = fmt.Fprintf(out, "  Hits:   %d\n", r.L2CacheHits)
			_, _ = fmt.Fprintf(out, "  Misses: %d\n", r.L2CacheMisses)
		}

		_, _ = fmt.Fprintf(out, "  Wall Time: %v\n", r.WallTime)
		_, _ = fmt.Fprintln(out, "")
	}
}

// PrintCSV outputs benchmark results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output,
		"name,instructions,exit_code,passed,dcache_reads,dcache_writes,dcache_hits,dcache_misses,dcache_cycles,wall_time_ns")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%d,%d,%t,%d,%d,%d,%d,%d,%d\n",
			r.Name,
			r.Instructions,
			r.ExitCode,
			r.Passed,
			r.DCacheReads,
			r.DCacheWrites,
			r.DCacheHits,
			r.DCacheMisses,
			r.DCacheCycles,
			r.WallTime.Nanoseconds(),
		)
	}
}

// BenchmarkReport is the complete output format for benchmark results.
type BenchmarkReport struct {
	// Metadata about the benchmark run
	Metadata ReportMetadata `json:"metadata"`

	// Results is the list of individual benchmark results
	Results []BenchmarkResult `json:"results"`

	// Summary contains aggregate statistics
	Summary ReportSummary `json:"summary"`
}

// ReportMetadata contains information about the benchmark run.
type ReportMetadata struct {
	// Timestamp when the benchmark was run
	Timestamp string `json:"timestamp"`

	// Machine is the configuration every benchmark ran with
	Machine *config.Config `json:"machine"`
}

// ReportSummary contains aggregate statistics across all benchmarks.
type ReportSummary struct {
	TotalBenchmarks   int           `json:"total_benchmarks"`
	Passed            int           `json:"passed"`
	TotalInstructions uint64        `json:"total_instructions"`
	TotalWallTime     time.Duration `json:"total_wall_time_ns"`
}

// Summarize aggregates results.
func Summarize(results []BenchmarkResult) ReportSummary {
	summary := ReportSummary{TotalBenchmarks: len(results)}
	for _, r := range results {
		if r.Passed {
			summary.Passed++
		}
		summary.TotalInstructions += r.Instructions
		summary.TotalWallTime += r.WallTime
	}
	return summary
}

// PrintJSON outputs benchmark results in JSON format for automated comparison.
func (h *Harness) PrintJSON(results []BenchmarkResult) error {
	report := BenchmarkReport{
		Metadata: ReportMetadata{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Machine:   h.config.Machine,
		},
		Results: results,
		Summary: Summarize(results),
	}

	encoder := json.NewEncoder(h.config.Output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
