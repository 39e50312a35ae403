package buffer

import (
	"errors"
	"sync"
)

// State is the lifecycle of a Buffer.
type State int

const (
	Loading State = iota
	Ended
	Errored
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ended:
		return "ended"
	case Errored:
		return "errored"
	default:
		return "unknown"
	}
}

var (
	// ErrOutOfRange reports a read beyond the committed length.
	ErrOutOfRange = errors.New("buffer: range beyond committed length")
	// ErrFinalized reports a write to a buffer that has ended or errored.
	ErrFinalized = errors.New("buffer: already finalized")
)

// Buffer is an append-only byte store. One reader task appends; any number
// of goroutines may read the committed prefix. Bytes below Len() are never
// rewritten, so slices handed out by ReadRange stay valid forever.
type Buffer struct {
	mu    sync.RWMutex
	data  []byte
	state State
	cause error

	onAppend func(n int)
}

// New returns an empty Buffer in the Loading state.
func New() *Buffer {
	return &Buffer{}
}

// Append commits p to the end of the buffer and returns the new length.
func (b *Buffer) Append(p []byte) (int, error) {
	b.mu.Lock()
	if b.state != Loading {
		b.mu.Unlock()
		return 0, ErrFinalized
	}
	b.data = append(b.data, p...)
	n := len(b.data)
	hook := b.onAppend
	b.mu.Unlock()
	if hook != nil && len(p) > 0 {
		hook(len(p))
	}
	return n, nil
}

// Len returns the number of committed bytes.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.data)
}

// ReadRange returns the bytes in [start, end). The returned slice aliases
// the buffer and must not be modified.
func (b *Buffer) ReadRange(start, end int) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if start < 0 || start > end || end > len(b.data) {
		return nil, ErrOutOfRange
	}
	return b.data[start:end:end], nil
}

// Snapshot returns the committed prefix as observed at call time together
// with the lifecycle state at that same instant.
func (b *Buffer) Snapshot() ([]byte, State) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := len(b.data)
	return b.data[:n:n], b.state
}

// State reports the lifecycle state and, when Errored, its cause.
func (b *Buffer) State() (State, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state, b.cause
}

// End marks the buffer complete. Later calls are no-ops.
func (b *Buffer) End() {
	b.mu.Lock()
	if b.state == Loading {
		b.state = Ended
	}
	b.mu.Unlock()
}

// Fail marks the buffer Errored with cause. The committed content is kept.
func (b *Buffer) Fail(cause error) {
	b.mu.Lock()
	if b.state == Loading {
		b.state = Errored
		b.cause = cause
	}
	b.mu.Unlock()
}
