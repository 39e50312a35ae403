package buffer

import (
	"context"
	"sort"
	"sync"

	"github.com/dustin/go-humanize"
	"pkt.systems/pslog"
)

// Stats is a point-in-time view of buffer memory use.
type Stats struct {
	Buffers    int
	TotalBytes int64
	PerBuffer  map[int]int64
}

// Cache tracks every open Buffer's committed size. It never evicts: offsets
// handed to the line index must stay valid for the life of a source. A soft
// limit only produces a single warning once the total crosses it.
type Cache struct {
	mu        sync.Mutex
	buffers   map[int]*Buffer
	sizes     map[int]int64
	total     int64
	softLimit int64
	warned    bool
	log       pslog.Logger
}

// NewCache returns a Cache. softLimit <= 0 disables the warning.
func NewCache(softLimit int64, logger pslog.Logger) *Cache {
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &Cache{
		buffers:   make(map[int]*Buffer),
		sizes:     make(map[int]int64),
		softLimit: softLimit,
		log:       logger,
	}
}

// NewBuffer creates a Buffer registered under id.
func (c *Cache) NewBuffer(id int) *Buffer {
	b := New()
	b.onAppend = func(n int) { c.grew(id, n) }
	c.mu.Lock()
	c.buffers[id] = b
	c.sizes[id] = 0
	c.mu.Unlock()
	return b
}

// Buffer returns the buffer registered under id.
func (c *Cache) Buffer(id int) (*Buffer, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.buffers[id]
	return b, ok
}

func (c *Cache) grew(id int, n int) {
	c.mu.Lock()
	c.sizes[id] += int64(n)
	c.total += int64(n)
	total := c.total
	crossed := c.softLimit > 0 && !c.warned && total >= c.softLimit
	if crossed {
		c.warned = true
	}
	c.mu.Unlock()
	if crossed {
		c.log.Warn("buffered stream data exceeds soft limit",
			"total", humanize.IBytes(uint64(total)),
			"limit", humanize.IBytes(uint64(c.softLimit)),
			"buffers", c.Len())
	}
}

// Len returns the number of registered buffers.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.buffers)
}

// TotalBytes returns the committed bytes across all buffers.
func (c *Cache) TotalBytes() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

// Stats returns a copy of the current accounting.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	per := make(map[int]int64, len(c.sizes))
	for id, n := range c.sizes {
		per[id] = n
	}
	return Stats{Buffers: len(c.buffers), TotalBytes: c.total, PerBuffer: per}
}

// IDs returns registered buffer ids in ascending order.
func (c *Cache) IDs() []int {
	c.mu.Lock()
	ids := make([]int, 0, len(c.buffers))
	for id := range c.buffers {
		ids = append(ids, id)
	}
	c.mu.Unlock()
	sort.Ints(ids)
	return ids
}
