package display

import "time"

// Refresh coalesces redraws caused by incoming data. The first change after
// a quiet period is drawn at once; further changes within interval of the
// last redraw wait for the interval to pass and are drawn together.
type Refresh struct {
	interval time.Duration
	now      func() time.Time
	last     time.Time
	pending  bool
}

// NewRefresh returns a Refresh using now as its clock.
func NewRefresh(interval time.Duration, now func() time.Time) *Refresh {
	if now == nil {
		now = time.Now
	}
	return &Refresh{interval: interval, now: now}
}

// Data records that visible content changed.
func (r *Refresh) Data() { r.pending = true }

// Pending reports whether a change has not been drawn yet.
func (r *Refresh) Pending() bool { return r.pending }

// Due reports whether the pending change should be drawn now.
func (r *Refresh) Due() bool {
	return r.pending && !r.now().Before(r.last.Add(r.interval))
}

// Timeout is how long the loop may wait for events before a pending change
// is due. It is negative when nothing is pending.
func (r *Refresh) Timeout() time.Duration {
	if !r.pending {
		return -1
	}
	wait := r.last.Add(r.interval).Sub(r.now())
	if wait < 0 {
		return 0
	}
	return wait
}

// Rendered records a redraw.
func (r *Refresh) Rendered() {
	r.last = r.now()
	r.pending = false
}
