package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sarchlab/r32sim/cache"
	"github.com/sarchlab/r32sim/config"
	"github.com/sarchlab/r32sim/debug"
	"github.com/sarchlab/r32sim/emu"
)

const terminalPath = "/dev/tty"

type runOptions struct {
	bootTest    bool
	debug       bool
	breakpoints []string
	trace       bool
	msize       uint32
	stat        bool
	configPath  string
	cache       bool
	maxInstr    uint64
	history     int
	statsview   string
	verbose     bool
}

// resolveConfig loads the configuration file, if any, and applies the
// flags the user set on top of it.
func (o *runOptions) resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if o.configPath != "" {
		var err error
		cfg, err = config.LoadConfig(o.configPath)
		if err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("msize") {
		cfg.MemoryMB = o.msize
	}
	if flags.Changed("max-instr") {
		cfg.MaxInstructions = o.maxInstr
	}
	if flags.Changed("history") {
		cfg.HistoryDepth = o.history
	}
	cfg.BootTest = cfg.BootTest || o.bootTest
	cfg.Debug = cfg.Debug || o.debug
	cfg.Stat = cfg.Stat || o.stat
	cfg.Cache.Enabled = cfg.Cache.Enabled || o.cache

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseBreakpoints(list []string) ([]uint32, error) {
	addrs := make([]uint32, 0, len(list))
	for _, s := range list {
		addr, err := strconv.ParseUint(s, 0, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid breakpoint %q: %w", s, err)
		}
		addrs = append(addrs, uint32(addr))
	}
	return addrs, nil
}

// simulate runs one program image. Usage problems are returned as plain
// errors; fatal machine errors are reported here and returned as an
// exitError.
func simulate(cmd *cobra.Command, opts *runOptions, path string, stdout, stderr io.Writer) error {
	cfg, err := opts.resolveConfig(cmd)
	if err != nil {
		return err
	}
	breakpoints, err := parseBreakpoints(opts.breakpoints)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open program image: %w", err)
	}
	defer func() { _ = f.Close() }()

	if opts.statsview != "" {
		stop := launchStatsview(opts.statsview, stderr)
		defer stop()
	}

	history := debug.NewHistory(cfg.HistoryDepth)
	hooks := []emu.DebugHook{history}
	if opts.trace {
		hooks = append(hooks, debug.NewTracer(logrus.StandardLogger()))
	}
	if cfg.Debug {
		tty, err := debug.OpenTerminal(terminalPath)
		if err != nil {
			return err
		}
		defer func() { _ = tty.Close() }()

		stepper := debug.NewStepper(tty, stdout)
		for _, addr := range breakpoints {
			stepper.Break(addr)
		}
		hooks = append(hooks, stepper)
	}

	emuOpts := append(cfg.EmulatorOptions(), emu.WithDebugHook(debug.Chain(hooks...)))
	l1 := cfg.NewCache()
	if l1 != nil {
		emuOpts = append(emuOpts, emu.WithMemoryObserver(l1))
	}
	e := emu.NewEmulator(emuOpts...)

	logrus.WithFields(logrus.Fields{
		"image":     path,
		"memory_mb": cfg.MemoryMB,
		"entry":     fmt.Sprintf("0x%06x", e.EntryPoint()),
		"boot_test": cfg.BootTest,
	}).Info("starting")

	start := time.Now()
	err = e.RunProgram(bufio.NewReader(f))
	elapsed := time.Since(start)

	logrus.WithFields(logrus.Fields{
		"instructions": e.InstructionCount(),
		"elapsed":      elapsed,
	}).Info("finished")

	switch {
	case err == nil || errors.Is(err, debug.ErrQuit):
		if cfg.Stat {
			report(stderr, e, history, l1)
		}
		return nil
	case emu.IsFatal(err):
		emu.WriteFatal(stderr, err)
		report(stderr, e, history, l1)
		return exitError{code: 1}
	default:
		return runtimeError{err: err}
	}
}

// report prints the status dump, the cache statistics and the instruction
// history.
func report(w io.Writer, e *emu.Emulator, history *debug.History, l1 *cache.Cache) {
	e.Snapshot().WriteStatus(w, true)

	for level, c := 1, l1; c != nil; level++ {
		c.WriteReport(w, fmt.Sprintf("L%d", level))
		c = c.Next()
	}

	if history.Len() > 0 {
		history.Dump(w)
	}
}
