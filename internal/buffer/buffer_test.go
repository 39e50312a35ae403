package buffer

import (
	"bytes"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"pkt.systems/pslog"
)

func TestBufferAppendAndReadRange(t *testing.T) {
	b := New()
	if n, err := b.Append([]byte("abc\n")); err != nil || n != 4 {
		t.Fatalf("Append = (%d, %v), want (4, nil)", n, err)
	}
	if n, err := b.Append([]byte("def\n")); err != nil || n != 8 {
		t.Fatalf("Append = (%d, %v), want (8, nil)", n, err)
	}

	got, err := b.ReadRange(4, 7)
	if err != nil {
		t.Fatalf("ReadRange: %v", err)
	}
	if string(got) != "def" {
		t.Fatalf("ReadRange(4,7) = %q, want %q", got, "def")
	}
	if b.Len() != 8 {
		t.Fatalf("Len = %d, want 8", b.Len())
	}
}

func TestBufferReadRangeBeyondLength(t *testing.T) {
	b := New()
	_, _ = b.Append([]byte("abc"))

	cases := []struct {
		name       string
		start, end int
	}{
		{"end past length", 0, 4},
		{"negative start", -1, 2},
		{"inverted", 2, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := b.ReadRange(tc.start, tc.end); !errors.Is(err, ErrOutOfRange) {
				t.Fatalf("ReadRange(%d,%d) err = %v, want ErrOutOfRange", tc.start, tc.end, err)
			}
		})
	}
}

func TestBufferFinalizedIsImmutable(t *testing.T) {
	b := New()
	_, _ = b.Append([]byte("data"))
	b.End()

	if _, err := b.Append([]byte("more")); !errors.Is(err, ErrFinalized) {
		t.Fatalf("Append after End err = %v, want ErrFinalized", err)
	}
	if b.Len() != 4 {
		t.Fatalf("Len changed after End: %d", b.Len())
	}

	b.Fail(errors.New("late failure"))
	if state, cause := b.State(); state != Ended || cause != nil {
		t.Fatalf("State after late Fail = (%v, %v), want (ended, nil)", state, cause)
	}
}

func TestBufferFailKeepsCause(t *testing.T) {
	b := New()
	_, _ = b.Append([]byte("partial"))
	cause := errors.New("pipe broke")
	b.Fail(cause)

	state, got := b.State()
	if state != Errored {
		t.Fatalf("state = %v, want errored", state)
	}
	if !errors.Is(got, cause) {
		t.Fatalf("cause = %v, want %v", got, cause)
	}
	if data, err := b.ReadRange(0, b.Len()); err != nil || string(data) != "partial" {
		t.Fatalf("content lost after Fail: %q, %v", data, err)
	}
}

func TestBufferSlicesStayValidAcrossGrowth(t *testing.T) {
	b := New()
	_, _ = b.Append([]byte("hello"))
	first, err := b.ReadRange(0, 5)
	if err != nil {
		t.Fatalf("ReadRange: %v", err)
	}
	for i := 0; i < 1000; i++ {
		_, _ = b.Append(bytes.Repeat([]byte{'x'}, 64))
	}
	if string(first) != "hello" {
		t.Fatalf("earlier slice changed to %q", first)
	}
}

func TestBufferConcurrentAppendAndRead(t *testing.T) {
	b := New()
	const chunks = 500
	chunk := []byte("0123456789\n")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < chunks; i++ {
			_, _ = b.Append(chunk)
		}
		b.End()
	}()

	for {
		data, state := b.Snapshot()
		if len(data)%len(chunk) != 0 && state == Ended {
			t.Fatalf("snapshot length %d not aligned after end", len(data))
		}
		for i, c := range data {
			if c != chunk[i%len(chunk)] {
				t.Fatalf("byte %d = %q, want %q", i, c, chunk[i%len(chunk)])
			}
		}
		if state == Ended {
			break
		}
	}
	wg.Wait()
	if b.Len() != chunks*len(chunk) {
		t.Fatalf("Len = %d, want %d", b.Len(), chunks*len(chunk))
	}
}

func TestCacheAccountsAppends(t *testing.T) {
	c := NewCache(0, nil)
	a := c.NewBuffer(0)
	e := c.NewBuffer(1)
	_, _ = a.Append([]byte("abc"))
	_, _ = e.Append([]byte("defgh"))
	_, _ = a.Append([]byte("ij"))

	stats := c.Stats()
	if stats.Buffers != 2 {
		t.Fatalf("Buffers = %d, want 2", stats.Buffers)
	}
	if stats.TotalBytes != 10 {
		t.Fatalf("TotalBytes = %d, want 10", stats.TotalBytes)
	}
	if stats.PerBuffer[0] != 5 || stats.PerBuffer[1] != 5 {
		t.Fatalf("PerBuffer = %v", stats.PerBuffer)
	}
	if ids := c.IDs(); len(ids) != 2 || ids[0] != 0 || ids[1] != 1 {
		t.Fatalf("IDs = %v", ids)
	}
	if got, ok := c.Buffer(1); !ok || got != e {
		t.Fatalf("Buffer(1) lookup failed")
	}
}

func TestCacheWarnsOnceAtSoftLimit(t *testing.T) {
	capture := &logCapture{}
	logger := pslog.NewWithOptions(capture, pslog.Options{
		Mode:          pslog.ModeStructured,
		NoColor:       true,
		MinLevel:      pslog.InfoLevel,
		VerboseFields: true,
	})
	c := NewCache(8, logger)
	b := c.NewBuffer(0)
	_, _ = b.Append([]byte("12345"))
	if capture.lines() != 0 {
		t.Fatalf("warned before crossing the limit")
	}
	_, _ = b.Append([]byte("6789"))
	_, _ = b.Append([]byte("more data"))

	if got := capture.lines(); got != 1 {
		t.Fatalf("expected exactly one warning, got %d", got)
	}
	entry := capture.firstEntry(t)
	if _, ok := entry["total"]; !ok {
		t.Fatalf("warning missing total field: %+v", entry)
	}
	if b.Len() != 18 {
		t.Fatalf("soft limit must not drop data, Len = %d", b.Len())
	}
}

type logCapture struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (c *logCapture) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Write(p)
}

func (c *logCapture) lines() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return bytes.Count(c.buf.Bytes(), []byte{'\n'})
}

func (c *logCapture) firstEntry(t *testing.T) map[string]any {
	t.Helper()
	c.mu.Lock()
	data := append([]byte(nil), c.buf.Bytes()...)
	c.mu.Unlock()
	idx := bytes.IndexByte(data, '\n')
	if idx == -1 {
		idx = len(data)
	}
	entry := map[string]any{}
	if err := json.Unmarshal(bytes.TrimSpace(data[:idx]), &entry); err != nil {
		t.Fatalf("parse log entry: %v", err)
	}
	return entry
}
