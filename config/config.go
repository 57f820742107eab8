// Package config holds the simulator's run configuration and its JSON form.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sarchlab/r32sim/cache"
	"github.com/sarchlab/r32sim/emu"
)

// Memory size limits in megabytes.
const (
	MinMemoryMB = 1
	MaxMemoryMB = 4095
)

// CacheConfig selects the data-cache model.
type CacheConfig struct {
	// Enabled attaches the model to the emulator's load/store traffic.
	Enabled bool `json:"enabled"`

	cache.Config

	// L2 adds a second level behind the first when set.
	L2 *cache.Config `json:"l2,omitempty"`
}

// Config holds everything a simulator run can be configured with.
type Config struct {
	// MemoryMB is the memory size in megabytes. Default: 4.
	MemoryMB uint32 `json:"memory_mb"`

	// BootTest loads and starts at address 0 and leaves r30/r31 cleared.
	BootTest bool `json:"boot_test"`

	// EntryPoint is the load and start address. Default: 0x2000.
	// Ignored when BootTest is set.
	EntryPoint uint32 `json:"entry_point"`

	// Debug enables the interactive stepper.
	Debug bool `json:"debug"`

	// Stat prints the status dump and instruction history after a
	// successful run.
	Stat bool `json:"stat"`

	// HistoryDepth is how many recent instructions are kept for the
	// history dump. Default: 32.
	HistoryDepth int `json:"history_depth"`

	// MaxInstructions stops the run after that many instructions.
	// 0 means unlimited.
	MaxInstructions uint64 `json:"max_instructions"`

	Cache CacheConfig `json:"cache"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		MemoryMB:     emu.DefaultMemorySize >> 20,
		EntryPoint:   emu.DefaultEntryPoint,
		HistoryDepth: 32,
		Cache: CacheConfig{
			Config: cache.DefaultConfig(),
		},
	}
}

// LoadConfig loads a Config from a JSON file. Fields absent from the file
// keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a Config to a JSON file.
func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks ranges and cross-field constraints.
func (c *Config) Validate() error {
	if c.MemoryMB < MinMemoryMB || c.MemoryMB > MaxMemoryMB {
		return fmt.Errorf("memory_mb must be in %d..%d, got %d",
			MinMemoryMB, MaxMemoryMB, c.MemoryMB)
	}
	if !c.BootTest {
		if c.EntryPoint%4 != 0 {
			return fmt.Errorf("entry_point must be a multiple of 4: 0x%x", c.EntryPoint)
		}
		if c.EntryPoint >= c.MemorySize() {
			return fmt.Errorf("entry_point 0x%x is outside %dMB memory", c.EntryPoint, c.MemoryMB)
		}
	}
	if c.HistoryDepth < 0 {
		return fmt.Errorf("history_depth must be >= 0")
	}
	if c.Cache.Enabled {
		if err := c.Cache.Validate(); err != nil {
			return fmt.Errorf("cache: %w", err)
		}
		if c.Cache.L2 != nil {
			if err := c.Cache.L2.Validate(); err != nil {
				return fmt.Errorf("cache.l2: %w", err)
			}
		}
	}
	return nil
}

// MemorySize returns the memory size in bytes.
func (c *Config) MemorySize() uint32 {
	return c.MemoryMB << 20
}

// EmulatorOptions translates the machine settings into emulator options.
// Hooks and observers are attached by the caller.
func (c *Config) EmulatorOptions() []emu.EmulatorOption {
	opts := []emu.EmulatorOption{
		emu.WithMemorySize(c.MemorySize()),
		emu.WithEntryPoint(c.EntryPoint),
		emu.WithMaxInstructions(c.MaxInstructions),
	}
	if c.BootTest {
		opts = append(opts, emu.WithBootTest())
	}
	return opts
}

// NewCache builds the configured cache hierarchy and returns its first
// level, or nil when the model is disabled.
func (c *Config) NewCache() *cache.Cache {
	if !c.Cache.Enabled {
		return nil
	}

	if c.Cache.L2 == nil {
		return cache.New(c.Cache.Config, nil)
	}

	l2 := cache.New(*c.Cache.L2, nil)
	return cache.New(c.Cache.Config, l2)
}

// Clone returns a deep copy of the Config.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Cache.L2 != nil {
		l2 := *c.Cache.L2
		clone.Cache.L2 = &l2
	}
	return &clone
}
