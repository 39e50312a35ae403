// Package line splits buffered bytes into logical lines and keeps a
// width-dependent layout cache for them.
package line

import (
	"bytes"

	"github.com/kk-code-lab/spage/internal/buffer"
)

// Status reports whether a requested line can be served.
type Status int

const (
	// Available means the line exists and its bytes are returned.
	Available Status = iota
	// NotYet means the line may still arrive; the source is loading.
	NotYet
	// OutOfRange means the line will never exist.
	OutOfRange
)

func (s Status) String() string {
	switch s {
	case Available:
		return "available"
	case NotYet:
		return "not-yet"
	case OutOfRange:
		return "out-of-range"
	default:
		return "unknown"
	}
}

// Index records where each newline-terminated line of a Buffer ends.
// Update scans only bytes appended since the previous call.
type Index struct {
	buf     *buffer.Buffer
	data    []byte
	state   buffer.State
	cause   error
	ends    []int
	scanned int
}

// NewIndex returns an empty index over buf. Call Update to scan it.
func NewIndex(buf *buffer.Buffer) *Index {
	return &Index{buf: buf}
}

// Update indexes newly committed bytes and reports whether the visible
// content or lifecycle state changed.
func (x *Index) Update() bool {
	data, state := x.buf.Snapshot()
	changed := len(data) != len(x.data) || state != x.state
	for x.scanned < len(data) {
		rel := bytes.IndexByte(data[x.scanned:], '\n')
		if rel < 0 {
			x.scanned = len(data)
			break
		}
		x.scanned += rel + 1
		x.ends = append(x.ends, x.scanned)
	}
	x.data = data
	x.state = state
	if state == buffer.Errored {
		_, x.cause = x.buf.State()
	}
	return changed
}

// Len returns the number of bytes indexed so far.
func (x *Index) Len() int {
	return len(x.data)
}

// State returns the buffer state observed by the last Update.
func (x *Index) State() (buffer.State, error) {
	return x.state, x.cause
}

// Loading reports whether more bytes may still arrive.
func (x *Index) Loading() bool {
	return x.state == buffer.Loading
}

// Terminated returns the number of newline-terminated lines.
func (x *Index) Terminated() int {
	return len(x.ends)
}

func (x *Index) lastEnd() int {
	if len(x.ends) == 0 {
		return 0
	}
	return x.ends[len(x.ends)-1]
}

func (x *Index) trailing() bool {
	return len(x.data) > x.lastEnd()
}

// Pending reports whether the last line is unterminated and may still grow.
func (x *Index) Pending() bool {
	return x.trailing() && x.state == buffer.Loading
}

// LineCount returns the number of lines, counting unterminated trailing
// bytes as one more line.
func (x *Index) LineCount() int {
	n := len(x.ends)
	if x.trailing() {
		n++
	}
	return n
}

// IsPending reports whether line i is the unterminated line still loading.
func (x *Index) IsPending(i int) bool {
	return x.Pending() && i == len(x.ends)
}

// Range returns the byte range of line i. The end offset includes the
// newline terminator when present.
func (x *Index) Range(i int) (start, end int, status Status) {
	if i < 0 {
		return 0, 0, OutOfRange
	}
	if i < len(x.ends) {
		if i > 0 {
			start = x.ends[i-1]
		}
		return start, x.ends[i], Available
	}
	if i == len(x.ends) && x.trailing() {
		return x.lastEnd(), len(x.data), Available
	}
	if x.state == buffer.Loading {
		return 0, 0, NotYet
	}
	return 0, 0, OutOfRange
}

// Bytes returns the raw bytes of line i including its terminator.
func (x *Index) Bytes(i int) ([]byte, Status) {
	start, end, status := x.Range(i)
	if status != Available {
		return nil, status
	}
	return x.data[start:end:end], Available
}

// LineAt returns the line containing byte offset off.
func (x *Index) LineAt(off int) int {
	lo, hi := 0, len(x.ends)
	for lo < hi {
		mid := (lo + hi) / 2
		if x.ends[mid] <= off {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}
