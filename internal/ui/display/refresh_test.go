package display

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestRefreshCoalescesBursts(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	r := NewRefresh(30*time.Millisecond, clock.now)

	if r.Timeout() >= 0 {
		t.Fatalf("idle timeout = %v, want negative", r.Timeout())
	}

	r.Data()
	if !r.Due() {
		t.Fatalf("first change after a quiet period should be due at once")
	}
	r.Rendered()

	clock.advance(10 * time.Millisecond)
	r.Data()
	r.Data()
	if r.Due() {
		t.Fatalf("change within the interval should wait")
	}
	if got := r.Timeout(); got != 20*time.Millisecond {
		t.Fatalf("timeout = %v, want 20ms", got)
	}

	clock.advance(25 * time.Millisecond)
	if !r.Due() || r.Timeout() != 0 {
		t.Fatalf("pending change should be due, timeout %v", r.Timeout())
	}
	r.Rendered()
	if r.Pending() || r.Due() {
		t.Fatalf("render should clear the pending change")
	}
}
