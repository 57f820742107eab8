package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/r32sim/asm"
	"github.com/sarchlab/r32sim/config"
)

var _ = Describe("r32sim", func() {
	var (
		tempDir        string
		stdout, stderr bytes.Buffer
	)

	BeforeEach(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "r32sim-test")
		Expect(err).NotTo(HaveOccurred())
		stdout.Reset()
		stderr.Reset()
	})

	AfterEach(func() {
		_ = os.RemoveAll(tempDir)
	})

	run := func(args ...string) int {
		return execute(args, &stdout, &stderr)
	}

	// image assembles source for origin and writes it to a temp file.
	image := func(name string, origin uint32, lines ...string) string {
		a := &asm.Assembler{Origin: origin}
		prog, err := a.Assemble(strings.NewReader(strings.Join(lines, "\n")))
		Expect(err).NotTo(HaveOccurred())

		path := filepath.Join(tempDir, name)
		Expect(writeImage(path, prog)).To(Succeed())
		return path
	}

	Describe("usage errors", func() {
		It("should require an image", func() {
			Expect(run()).To(Equal(1))
			Expect(stderr.String()).To(ContainSubstring("accepts 1 arg"))
			Expect(stderr.String()).To(ContainSubstring("--help"))
		})

		It("should reject more than one image", func() {
			Expect(run("a.bin", "b.bin")).To(Equal(1))
		})

		It("should report a missing file without fatal formatting", func() {
			Expect(run(filepath.Join(tempDir, "missing.bin"))).To(Equal(1))

			Expect(stderr.String()).To(ContainSubstring("failed to open program image"))
			Expect(stderr.String()).NotTo(ContainSubstring("runtime error"))
		})

		DescribeTable("should reject bad memory sizes",
			func(msize string) {
				path := image("ok.bin", 0x2000, "halt")

				Expect(run("--msize", msize, path)).To(Equal(1))
				Expect(stderr.String()).To(ContainSubstring("memory_mb"))
				Expect(stderr.String()).NotTo(ContainSubstring("runtime error"))
			},
			Entry("zero", "0"),
			Entry("too large", "4096"),
		)

		It("should reject a bad breakpoint", func() {
			path := image("ok.bin", 0x2000, "halt")

			Expect(run("--break", "here", path)).To(Equal(1))
			Expect(stderr.String()).To(ContainSubstring("invalid breakpoint"))
		})
	})

	Describe("running", func() {
		It("should exit 0 silently on halt", func() {
			path := image("ok.bin", 0x2000, "li r1, 5", "halt")

			Expect(run(path)).To(Equal(0))
			Expect(stdout.String()).To(BeEmpty())
		})

		It("should print the status to stderr with --stat", func() {
			path := image("ok.bin", 0x2000, "li r1, 5", "halt")

			Expect(run("--stat", path)).To(Equal(0))
			Expect(stdout.String()).To(BeEmpty())

			out := stderr.String()
			Expect(out).To(ContainSubstring("*** Simulator Status ***"))
			Expect(out).To(ContainSubstring("<Current PC>: 0x002004"))
			Expect(out).To(ContainSubstring("<Number of executed instructions>: 1"))
			Expect(out).To(ContainSubstring("<Instruction history>"))
			Expect(out).To(ContainSubstring("li r1, 5"))
		})

		It("should honour --msize", func() {
			path := image("ok.bin", 0x2000, "halt")

			Expect(run("--msize", "1", "--stat", path)).To(Equal(0))
			Expect(stderr.String()).To(ContainSubstring("r30:     1048576 (0x00100000)"))
		})

		It("should start at 0 with --boot-test", func() {
			path := image("boot.bin", 0, "li r1, 5", "halt")

			Expect(run("--boot-test", "--stat", path)).To(Equal(0))
			Expect(stderr.String()).To(ContainSubstring("<Current PC>: 0x000004"))
			Expect(stderr.String()).To(ContainSubstring("r30:           0 (0x00000000)"))
		})

		It("should report cache statistics with --cache", func() {
			path := image("mem.bin", 0x2000,
				"li r5, 0x3000",
				"st r0, 5 * 64(r5)",
				"ld r1, 0(r5)",
				"halt",
			)

			Expect(run("--cache", "--stat", path)).To(Equal(0))
			Expect(stderr.String()).To(ContainSubstring("<L1 cache>"))
			Expect(stderr.String()).To(ContainSubstring("hits: 1  misses: 1"))
		})

		It("should read a configuration file and let flags override it", func() {
			cfg := config.DefaultConfig()
			cfg.MemoryMB = 2
			cfg.Stat = true
			cfgPath := filepath.Join(tempDir, "r32sim.json")
			Expect(cfg.SaveConfig(cfgPath)).To(Succeed())
			path := image("ok.bin", 0x2000, "halt")

			Expect(run("--config", cfgPath, path)).To(Equal(0))
			Expect(stderr.String()).To(ContainSubstring("r30:     2097152 (0x00200000)"))

			stderr.Reset()
			Expect(run("--config", cfgPath, "--msize", "3", path)).To(Equal(0))
			Expect(stderr.String()).To(ContainSubstring("r30:     3145728 (0x00300000)"))
		})

		It("should log progress with --verbose", func() {
			path := image("ok.bin", 0x2000, "halt")

			Expect(run("--verbose", path)).To(Equal(0))
			Expect(stderr.String()).To(ContainSubstring("starting"))
			Expect(stderr.String()).To(ContainSubstring("finished"))
		})

		It("should trace each cycle with --trace", func() {
			path := image("ok.bin", 0x2000, "li r1, 5", "halt")

			Expect(run("--trace", path)).To(Equal(0))
			Expect(stderr.String()).To(ContainSubstring("li r1, 5"))
		})
	})

	Describe("fatal errors", func() {
		It("should print the error, status and history and exit 1", func() {
			path := image("bad.bin", 0x2000, "li r1, 5", ".word 0x08000000", "halt")

			Expect(run(path)).To(Equal(1))

			out := stderr.String()
			Expect(out).To(ContainSubstring("runtime error: "))
			Expect(out).To(ContainSubstring("unknown opcode = 2"))
			Expect(out).To(ContainSubstring("*** Simulator Status ***"))
			Expect(out).To(ContainSubstring("<Number of executed instructions>: 1"))
			Expect(out).To(ContainSubstring("<Instruction history>"))
			Expect(out).To(ContainSubstring(".word 0x08000000"))
			Expect(stdout.String()).To(BeEmpty())
		})

		It("should treat a malformed image as fatal", func() {
			path := filepath.Join(tempDir, "short.bin")
			Expect(os.WriteFile(path, []byte{8, 0, 0, 0, 1, 2}, 0644)).To(Succeed())

			Expect(run(path)).To(Equal(1))
			Expect(stderr.String()).To(ContainSubstring("runtime error: "))
			Expect(stderr.String()).To(ContainSubstring("reached EOF (actual size is less than header)"))
		})

		It("should stop at the instruction limit", func() {
			path := image("loop.bin", 0x2000, "loop: jeq r0, loop")

			Expect(run("--max-instr", "5", path)).To(Equal(1))
			Expect(stderr.String()).To(ContainSubstring("max instructions reached: 5"))
		})
	})

	Describe("asm", func() {
		It("should assemble a source file into a runnable image", func() {
			src := filepath.Join(tempDir, "prog.s")
			Expect(os.WriteFile(src, []byte("li r1, VALUE\nhalt\n"), 0644)).To(Succeed())

			Expect(run("asm", "-D", "VALUE=7", "--list", src)).To(Equal(0))
			Expect(stdout.String()).To(ContainSubstring("0x002000: "))
			Expect(stdout.String()).To(ContainSubstring("li r1, 7"))

			Expect(run("--stat", filepath.Join(tempDir, "prog.bin"))).To(Equal(0))
			Expect(stderr.String()).To(ContainSubstring("r1 :           7 (0x00000007)"))
		})

		It("should honour -o", func() {
			src := filepath.Join(tempDir, "prog.s")
			out := filepath.Join(tempDir, "out.img")
			Expect(os.WriteFile(src, []byte("halt\n"), 0644)).To(Succeed())

			Expect(run("asm", src, "-o", out)).To(Equal(0))

			data, err := os.ReadFile(out)
			Expect(err).NotTo(HaveOccurred())
			Expect(data).To(Equal([]byte{4, 0, 0, 0, 0xFF, 0xFF, 0xFF, 0xFF}))
		})

		It("should report assembly errors with the line", func() {
			src := filepath.Join(tempDir, "bad.s")
			Expect(os.WriteFile(src, []byte("halt\nfrob r1\n"), 0644)).To(Succeed())

			Expect(run("asm", src)).To(Equal(1))
			Expect(stderr.String()).To(ContainSubstring("line 2"))
			Expect(stderr.String()).To(ContainSubstring("opcode invalid"))
		})
	})
})
