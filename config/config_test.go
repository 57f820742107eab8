package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/r32sim/cache"
	"github.com/sarchlab/r32sim/config"
	"github.com/sarchlab/r32sim/emu"
)

var _ = Describe("Config", func() {
	Describe("Default Config", func() {
		It("should create valid default config", func() {
			c := config.DefaultConfig()

			Expect(c.Validate()).To(Succeed())
			Expect(c.MemoryMB).To(Equal(uint32(4)))
			Expect(c.MemorySize()).To(Equal(uint32(4 << 20)))
			Expect(c.EntryPoint).To(Equal(uint32(0x2000)))
			Expect(c.HistoryDepth).To(Equal(32))
			Expect(c.Cache.Enabled).To(BeFalse())
		})
	})

	Describe("Validation", func() {
		var c *config.Config

		BeforeEach(func() {
			c = config.DefaultConfig()
		})

		It("should reject zero memory", func() {
			c.MemoryMB = 0
			Expect(c.Validate()).To(HaveOccurred())
		})

		It("should reject 4096MB", func() {
			c.MemoryMB = 4096
			Expect(c.Validate()).To(HaveOccurred())
		})

		It("should accept the largest size", func() {
			c.MemoryMB = config.MaxMemoryMB
			Expect(c.Validate()).To(Succeed())
			Expect(c.MemorySize()).To(Equal(uint32(0xFFF00000)))
		})

		It("should reject a misaligned entry point", func() {
			c.EntryPoint = 0x2002
			Expect(c.Validate()).To(HaveOccurred())
		})

		It("should reject an entry point outside memory", func() {
			c.MemoryMB = 1
			c.EntryPoint = 1 << 20
			Expect(c.Validate()).To(HaveOccurred())
		})

		It("should ignore the entry point in boot-test mode", func() {
			c.BootTest = true
			c.EntryPoint = 3
			Expect(c.Validate()).To(Succeed())
		})

		It("should reject negative history depth", func() {
			c.HistoryDepth = -1
			Expect(c.Validate()).To(HaveOccurred())
		})

		It("should only validate the cache when enabled", func() {
			c.Cache.BlockSize = 48
			Expect(c.Validate()).To(Succeed())

			c.Cache.Enabled = true
			Expect(c.Validate()).To(HaveOccurred())
		})

		It("should validate the second level", func() {
			c.Cache.Enabled = true
			c.Cache.L2 = &cache.Config{Size: 100, Associativity: 1, BlockSize: 64}
			Expect(c.Validate()).To(MatchError(ContainSubstring("cache.l2")))
		})
	})

	Describe("Emulator options", func() {
		It("should configure memory and entry point", func() {
			c := config.DefaultConfig()
			c.MemoryMB = 2
			c.EntryPoint = 0x4000

			e := emu.NewEmulator(c.EmulatorOptions()...)

			Expect(e.Memory().Size()).To(Equal(uint32(2 << 20)))
			Expect(e.RegFile().PC).To(Equal(uint32(0x4000)))
		})

		It("should force entry 0 in boot-test mode", func() {
			c := config.DefaultConfig()
			c.BootTest = true

			e := emu.NewEmulator(c.EmulatorOptions()...)

			Expect(e.RegFile().PC).To(BeZero())
			Expect(e.RegFile().R[30]).To(BeZero())
		})
	})

	Describe("Cache hierarchy", func() {
		It("should be nil when disabled", func() {
			Expect(config.DefaultConfig().NewCache()).To(BeNil())
		})

		It("should build the first level", func() {
			c := config.DefaultConfig()
			c.Cache.Enabled = true

			l1 := c.NewCache()

			Expect(l1).NotTo(BeNil())
			Expect(l1.Config()).To(Equal(cache.DefaultConfig()))
		})
	})

	Describe("Clone", func() {
		It("should create independent copy", func() {
			original := config.DefaultConfig()
			l2 := cache.DefaultL2Config()
			original.Cache.L2 = &l2

			clone := original.Clone()
			clone.MemoryMB = 100
			clone.Cache.L2.Size = 1

			Expect(original.MemoryMB).To(Equal(uint32(4)))
			Expect(original.Cache.L2.Size).To(Equal(256 * 1024))
		})
	})

	Describe("File Operations", func() {
		var tempDir string

		BeforeEach(func() {
			var err error
			tempDir, err = os.MkdirTemp("", "config-test")
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			_ = os.RemoveAll(tempDir)
		})

		It("should save and load config", func() {
			original := config.DefaultConfig()
			original.MemoryMB = 16
			original.Cache.Enabled = true
			original.Cache.Associativity = 2

			path := filepath.Join(tempDir, "r32sim.json")
			Expect(original.SaveConfig(path)).To(Succeed())

			loaded, err := config.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(Equal(original))
		})

		It("should keep defaults for absent fields", func() {
			path := filepath.Join(tempDir, "partial.json")
			Expect(os.WriteFile(path, []byte(`{"memory_mb": 8, "cache": {"enabled": true, "size": 4096}}`), 0644)).To(Succeed())

			loaded, err := config.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.MemoryMB).To(Equal(uint32(8)))
			Expect(loaded.EntryPoint).To(Equal(uint32(0x2000)))
			Expect(loaded.Cache.Size).To(Equal(4096))
			Expect(loaded.Cache.BlockSize).To(Equal(32))
		})

		It("should return error for non-existent file", func() {
			_, err := config.LoadConfig("/nonexistent/path/r32sim.json")
			Expect(err).To(HaveOccurred())
		})

		It("should return error for invalid JSON", func() {
			path := filepath.Join(tempDir, "invalid.json")
			err := os.WriteFile(path, []byte("not valid json"), 0644)
			Expect(err).NotTo(HaveOccurred())

			_, err = config.LoadConfig(path)
			Expect(err).To(HaveOccurred())
		})
	})
})
