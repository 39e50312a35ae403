package line

import (
	"container/list"

	"github.com/kk-code-lab/spage/internal/overstrike"
)

// DefaultCacheLines bounds the cache when no capacity is configured.
const DefaultCacheLines = 10000

// DecodeFunc turns raw line bytes into styled runs.
type DecodeFunc func([]byte) []overstrike.Run

// Key identifies a line of a file.
type Key struct {
	File int
	Line int
}

type entry struct {
	key    Key
	runs   []overstrike.Run
	plain  string
	layout *Layout
}

// Cache memoizes decoded runs and wrapped layouts of finalized lines for
// the current width and wrap mode. Changing either drops every entry. The
// unterminated line of a loading file is never stored. Cache is owned by
// the render loop and is not safe for concurrent use.
type Cache struct {
	width    int
	wrap     WrapMode
	capacity int
	decode   DecodeFunc
	entries  map[Key]*list.Element
	order    *list.List
}

// NewCache returns a cache holding at most capacity lines.
func NewCache(capacity int) *Cache {
	return NewCacheWithDecoder(capacity, overstrike.Decode)
}

// NewCacheWithDecoder is NewCache with a custom decoder.
func NewCacheWithDecoder(capacity int, decode DecodeFunc) *Cache {
	if capacity <= 0 {
		capacity = DefaultCacheLines
	}
	if decode == nil {
		decode = overstrike.Decode
	}
	return &Cache{
		width:    80,
		wrap:     WrapChar,
		capacity: capacity,
		decode:   decode,
		entries:  make(map[Key]*list.Element),
		order:    list.New(),
	}
}

// Width returns the layout width.
func (c *Cache) Width() int { return c.width }

// Wrap returns the wrap mode.
func (c *Cache) Wrap() WrapMode { return c.wrap }

// Len returns the number of cached lines.
func (c *Cache) Len() int { return c.order.Len() }

// SetWidth changes the layout width, dropping all entries when it differs.
func (c *Cache) SetWidth(width int) {
	if width < 1 {
		width = 1
	}
	if width == c.width {
		return
	}
	c.width = width
	c.Clear()
}

// SetWrap changes the wrap mode, dropping all entries when it differs.
func (c *Cache) SetWrap(mode WrapMode) {
	if mode == c.wrap {
		return
	}
	c.wrap = mode
	c.Clear()
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.entries = make(map[Key]*list.Element)
	c.order.Init()
}

// Get returns the layout of line i of file.
func (c *Cache) Get(file int, idx *Index, i int) (*Layout, Status) {
	key := Key{File: file, Line: i}
	if el, ok := c.entries[key]; ok {
		c.order.MoveToFront(el)
		e := el.Value.(*entry)
		if e.layout == nil {
			e.layout = Wrap(e.runs, c.width, c.wrap)
		}
		return e.layout, Available
	}
	raw, status := idx.Bytes(i)
	if status != Available {
		return nil, status
	}
	runs := c.decode(raw)
	layout := Wrap(runs, c.width, c.wrap)
	if !idx.IsPending(i) {
		c.store(&entry{key: key, runs: runs, plain: overstrike.Plain(runs), layout: layout})
	}
	return layout, Available
}

// Runs returns the decoded runs of line i without laying them out.
func (c *Cache) Runs(file int, idx *Index, i int) ([]overstrike.Run, Status) {
	e, status := c.lookup(file, idx, i)
	if status != Available {
		return nil, status
	}
	return e.runs, Available
}

// Text returns the plain text of line i, used by search.
func (c *Cache) Text(file int, idx *Index, i int) (string, Status) {
	e, status := c.lookup(file, idx, i)
	if status != Available {
		return "", status
	}
	return e.plain, Available
}

func (c *Cache) lookup(file int, idx *Index, i int) (*entry, Status) {
	key := Key{File: file, Line: i}
	if el, ok := c.entries[key]; ok {
		c.order.MoveToFront(el)
		return el.Value.(*entry), Available
	}
	raw, status := idx.Bytes(i)
	if status != Available {
		return nil, status
	}
	runs := c.decode(raw)
	e := &entry{key: key, runs: runs, plain: overstrike.Plain(runs)}
	if !idx.IsPending(i) {
		c.store(e)
	}
	return e, Available
}

// Prefetch lays out up to n lines starting at from and returns how many
// were available.
func (c *Cache) Prefetch(file int, idx *Index, from, n int) int {
	done := 0
	for i := from; i < from+n; i++ {
		if _, status := c.Get(file, idx, i); status != Available {
			break
		}
		done++
	}
	return done
}

// Rows returns how many rows line i occupies, or zero when it is not
// available.
func (c *Cache) Rows(file int, idx *Index, i int) int {
	layout, status := c.Get(file, idx, i)
	if status != Available {
		return 0
	}
	return len(layout.Rows)
}

func (c *Cache) store(e *entry) {
	c.entries[e.key] = c.order.PushFront(e)
	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*entry).key)
	}
}

// Forget drops every entry of file.
func (c *Cache) Forget(file int) {
	for key, el := range c.entries {
		if key.File == file {
			c.order.Remove(el)
			delete(c.entries, key)
		}
	}
}
