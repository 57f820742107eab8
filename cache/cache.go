// Package cache models a set-associative data cache using Akita cache
// components. The model only keeps tags and counts; it never holds data, so
// attaching it to an emulator cannot change what a program computes.
package cache

import (
	"fmt"
	"math/bits"

	akitacache "github.com/sarchlab/akita/v4/mem/cache"

	"github.com/sarchlab/r32sim/emu"
)

// Config holds cache configuration parameters.
type Config struct {
	// Size in bytes
	Size int `json:"size"`
	// Associativity (number of ways)
	Associativity int `json:"associativity"`
	// BlockSize in bytes (cache line size)
	BlockSize int `json:"block_size"`
	// HitLatency in cycles
	HitLatency uint64 `json:"hit_latency"`
	// MissLatency in cycles (includes the next level's access time)
	MissLatency uint64 `json:"miss_latency"`
}

// DefaultConfig returns a small L1 data cache: 16KB, 4-way, 32B lines.
func DefaultConfig() Config {
	return Config{
		Size:          16 * 1024,
		Associativity: 4,
		BlockSize:     32,
		HitLatency:    1,
		MissLatency:   20,
	}
}

// DefaultL2Config returns a unified second level: 256KB, 8-way, 64B lines.
func DefaultL2Config() Config {
	return Config{
		Size:          256 * 1024,
		Associativity: 8,
		BlockSize:     64,
		HitLatency:    10,
		MissLatency:   100,
	}
}

// Validate checks that the geometry describes a whole number of sets of
// power-of-two sized blocks.
func (c Config) Validate() error {
	if c.BlockSize < 4 || bits.OnesCount(uint(c.BlockSize)) != 1 {
		return fmt.Errorf("block_size must be a power of two >= 4, got %d", c.BlockSize)
	}
	if c.Associativity <= 0 {
		return fmt.Errorf("associativity must be > 0, got %d", c.Associativity)
	}
	if c.Size <= 0 || c.Size%(c.Associativity*c.BlockSize) != 0 {
		return fmt.Errorf("size %d is not a multiple of associativity*block_size (%d)",
			c.Size, c.Associativity*c.BlockSize)
	}
	return nil
}

// NumSets returns the number of sets the geometry implies.
func (c Config) NumSets() int {
	return c.Size / (c.Associativity * c.BlockSize)
}

// Statistics holds cache performance statistics.
type Statistics struct {
	Reads      uint64
	Writes     uint64
	Hits       uint64
	Misses     uint64
	Evictions  uint64
	Writebacks uint64
	// Cycles is the modeled memory time: hits cost HitLatency and misses
	// MissLatency.
	Cycles uint64
}

// Accesses returns Reads + Writes.
func (s Statistics) Accesses() uint64 {
	return s.Reads + s.Writes
}

// HitRate returns Hits / Accesses, or 0 before any access.
func (s Statistics) HitRate() float64 {
	if s.Accesses() == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Accesses())
}

// Cache is a write-back, write-allocate cache level. Misses and dirty
// evictions are forwarded to the next level, if there is one.
type Cache struct {
	// Configuration
	config Config

	// Akita cache directory for tag/state management
	directory *akitacache.DirectoryImpl

	// Statistics
	stats Statistics

	// Next level in the hierarchy; nil means memory.
	next emu.MemoryObserver
}

// New creates a new cache level. next may be nil.
func New(config Config, next emu.MemoryObserver) *Cache {
	return &Cache{
		config: config,
		directory: akitacache.NewDirectory(
			config.NumSets(),
			config.Associativity,
			config.BlockSize,
			akitacache.NewLRUVictimFinder(),
		),
		next: next,
	}
}

// Next returns the next cache level, or nil if misses go to memory or to
// an observer that is not a cache.
func (c *Cache) Next() *Cache {
	next, _ := c.next.(*Cache)
	return next
}

// Config returns the cache configuration.
func (c *Cache) Config() Config {
	return c.config
}

// Stats returns cache statistics.
func (c *Cache) Stats() Statistics {
	return c.stats
}

func (c *Cache) blockAddr(addr uint32) uint64 {
	return uint64(addr) &^ uint64(c.config.BlockSize-1)
}

// Observe records one load (write false) or store (write true) to addr.
// It makes *Cache an emu.MemoryObserver.
func (c *Cache) Observe(addr uint32, write bool) {
	if write {
		c.stats.Writes++
	} else {
		c.stats.Reads++
	}

	blockAddr := c.blockAddr(addr)

	block := c.directory.Lookup(0, blockAddr) // PID=0: one address space
	if block != nil && block.IsValid {
		c.stats.Hits++
		c.stats.Cycles += c.config.HitLatency
		c.directory.Visit(block) // Update LRU
		if write {
			block.IsDirty = true
		}
		return
	}

	c.stats.Misses++
	c.stats.Cycles += c.config.MissLatency
	c.handleMiss(blockAddr, write)
}

func (c *Cache) handleMiss(blockAddr uint64, write bool) {
	victim := c.directory.FindVictim(blockAddr)
	if victim == nil {
		return
	}

	if victim.IsValid {
		c.stats.Evictions++

		// Tag stores the block-aligned address
		if victim.IsDirty {
			c.stats.Writebacks++
			if c.next != nil {
				c.next.Observe(uint32(victim.Tag), true)
			}
		}
	}

	// Fill from the next level
	if c.next != nil {
		c.next.Observe(uint32(blockAddr), false)
	}

	victim.Tag = blockAddr
	victim.IsValid = true
	victim.IsDirty = write

	c.directory.Visit(victim)
}

// Contains reports whether the block holding addr is resident.
func (c *Cache) Contains(addr uint32) bool {
	block := c.directory.Lookup(0, c.blockAddr(addr))
	return block != nil && block.IsValid
}

// Flush writes back all dirty blocks to the next level and invalidates
// every line.
func (c *Cache) Flush() {
	for _, set := range c.directory.GetSets() {
		for _, block := range set.Blocks {
			if block.IsValid && block.IsDirty {
				c.stats.Writebacks++
				if c.next != nil {
					c.next.Observe(uint32(block.Tag), true)
				}
			}
			block.IsValid = false
			block.IsDirty = false
		}
	}
}

// Reset invalidates all cache lines without writeback and clears the
// statistics.
func (c *Cache) Reset() {
	c.directory.Reset()
	c.stats = Statistics{}
}
