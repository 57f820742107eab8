package cache

import (
	"fmt"
	"io"
)

// WriteReport prints the statistics of one cache level under name.
func (c *Cache) WriteReport(w io.Writer, name string) {
	s := c.stats
	_, _ = fmt.Fprintf(w, "<%s cache> %dB %d-way %dB lines\n",
		name, c.config.Size, c.config.Associativity, c.config.BlockSize)
	_, _ = fmt.Fprintf(w, "  reads: %d  writes: %d\n", s.Reads, s.Writes)
	_, _ = fmt.Fprintf(w, "  hits: %d  misses: %d  hit rate: %.2f%%\n",
		s.Hits, s.Misses, 100*s.HitRate())
	_, _ = fmt.Fprintf(w, "  evictions: %d  writebacks: %d  cycles: %d\n",
		s.Evictions, s.Writebacks, s.Cycles)
}
