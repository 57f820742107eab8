// Package main provides the r32sim command: a functional simulator for
// R32 program images, plus an assembler for producing them.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// runtimeError is a failure after the machine was set up that is not a
// fatal machine error, such as losing the debug terminal.
type runtimeError struct {
	err error
}

func (e runtimeError) Error() string { return e.err.Error() }
func (e runtimeError) Unwrap() error { return e.err }

// exitError carries an exit status for a failure that was already
// reported.
type exitError struct {
	code int
}

func (e exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the command line and returns the process exit status.
func execute(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCommand(stdout, stderr)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	if err == nil {
		return 0
	}

	var exit exitError
	if errors.As(err, &exit) {
		return exit.code
	}

	_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)

	// Cobra's own argument and flag errors are usage errors too.
	var runtimeErr runtimeError
	if !errors.As(err, &runtimeErr) {
		_, _ = fmt.Fprintf(stderr, "Run '%s --help' for usage.\n", cmd.Name())
	}
	return 1
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "r32sim [flags] <image>",
		Short: "Functional simulator for the R32 instruction set",
		Long: "r32sim loads a length-prefixed R32 program image, runs it until the\n" +
			"halt word is fetched, and optionally prints the machine status.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			setupLogging(stderr, opts.verbose, opts.trace)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return simulate(cmd, opts, args[0], stdout, stderr)
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&opts.bootTest, "boot-test", false, "load and start at address 0 without presetting r30/r31")
	flags.BoolVar(&opts.debug, "debug", false, "step interactively on the controlling terminal")
	flags.StringSliceVar(&opts.breakpoints, "break", nil, "stop the interactive stepper at these addresses")
	flags.BoolVar(&opts.trace, "trace", false, "log every cycle")
	flags.Uint32Var(&opts.msize, "msize", 0, "memory size in MB (1-4095, default 4)")
	flags.BoolVar(&opts.stat, "stat", false, "print the machine status and instruction history after the run")
	flags.StringVar(&opts.configPath, "config", "", "path to a JSON configuration file")
	flags.BoolVar(&opts.cache, "cache", false, "model a data cache and report its statistics")
	flags.Uint64Var(&opts.maxInstr, "max-instr", 0, "stop after this many instructions (0 = unlimited)")
	flags.IntVar(&opts.history, "history", 0, "number of instructions kept for the history dump")
	flags.StringVar(&opts.statsview, "statsview", "", "serve Go runtime charts at this address (e.g. localhost:12600)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log progress")

	cmd.AddCommand(newAsmCommand(stdout))

	return cmd
}

func setupLogging(w io.Writer, verbose, trace bool) {
	logrus.SetOutput(w)
	switch {
	case trace:
		logrus.SetLevel(logrus.DebugLevel)
	case verbose:
		logrus.SetLevel(logrus.InfoLevel)
	default:
		logrus.SetLevel(logrus.WarnLevel)
	}
}
