package main

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sarchlab/r32sim/asm"
	"github.com/sarchlab/r32sim/emu"
	"github.com/sarchlab/r32sim/insts"
	"github.com/sarchlab/r32sim/loader"
)

type asmOptions struct {
	output  string
	origin  uint32
	listing bool
	defines []string
}

func newAsmCommand(stdout io.Writer) *cobra.Command {
	opts := &asmOptions{}

	cmd := &cobra.Command{
		Use:   "asm [flags] <source.s>",
		Short: "Assemble a source file into a program image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return assembleFile(opts, args[0], stdout)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.output, "output", "o", "", "image path (default: source with .bin extension)")
	flags.Uint32Var(&opts.origin, "origin", emu.DefaultEntryPoint, "load address the image is assembled for")
	flags.BoolVarP(&opts.listing, "list", "l", false, "print a disassembly listing")
	flags.StringArrayVarP(&opts.defines, "define", "D", nil, "predefine NAME=VALUE")

	return cmd
}

func assembleFile(opts *asmOptions, path string, stdout io.Writer) error {
	a := &asm.Assembler{Origin: opts.origin}
	for _, def := range opts.defines {
		name, value, err := parseDefine(def)
		if err != nil {
			return err
		}
		a.Predefine(name, value)
	}

	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer func() { _ = src.Close() }()

	prog, err := a.Assemble(src)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	output := opts.output
	if output == "" {
		output = strings.TrimSuffix(path, filepath.Ext(path)) + ".bin"
	}

	if err := writeImage(output, prog); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"source": path,
		"image":  output,
		"bytes":  prog.Size(),
	}).Info("assembled")

	if opts.listing {
		writeListing(stdout, opts.origin, prog)
	}

	return nil
}

func parseDefine(def string) (string, int64, error) {
	name, value, ok := strings.Cut(def, "=")
	if !ok {
		return name, 1, nil
	}

	var v int64
	if _, err := fmt.Sscan(value, &v); err != nil {
		return "", 0, fmt.Errorf("invalid define %q: %w", def, err)
	}
	return name, v, nil
}

func writeImage(path string, prog *loader.Program) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create image: %w", err)
	}

	if _, err := prog.WriteTo(out); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to write image: %w", err)
	}

	return out.Close()
}

func writeListing(w io.Writer, origin uint32, prog *loader.Program) {
	decoder := insts.NewDecoder()

	for off := uint32(0); off+4 <= prog.Size(); off += 4 {
		word := binary.LittleEndian.Uint32(prog.Data[off:])
		_, _ = fmt.Fprintf(w, "0x%06x: %08x  %s\n", origin+off, word, decoder.Decode(word))
	}
}
