package event

import (
	"sync"
	"time"
)

// Sender is the producer side of a Stream.
type Sender interface {
	Send(ev Event)
}

// Stream is an unbounded FIFO with many producers and one consumer. Send
// never blocks and never drops; ordering is arrival order across producers.
type Stream struct {
	mu     sync.Mutex
	queue  []Event
	notify chan struct{}
}

// NewStream returns an empty Stream.
func NewStream() *Stream {
	return &Stream{notify: make(chan struct{}, 1)}
}

// Sender returns a handle producers use to enqueue events.
func (s *Stream) Sender() Sender {
	return s
}

// Send enqueues ev and wakes the consumer.
func (s *Stream) Send(ev Event) {
	if ev == nil {
		return
	}
	s.mu.Lock()
	s.queue = append(s.queue, ev)
	s.mu.Unlock()
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// TryGet returns the oldest queued event without blocking.
func (s *Stream) TryGet() (Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return nil, false
	}
	ev := s.queue[0]
	s.queue[0] = nil
	s.queue = s.queue[1:]
	if len(s.queue) == 0 {
		s.queue = nil
	}
	return ev, true
}

// Get waits for the next event. A negative timeout waits forever; on
// timeout it reports false.
func (s *Stream) Get(timeout time.Duration) (Event, bool) {
	if ev, ok := s.TryGet(); ok {
		return ev, true
	}

	var deadline <-chan time.Time
	if timeout >= 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	for {
		select {
		case <-s.notify:
			if ev, ok := s.TryGet(); ok {
				return ev, true
			}
		case <-deadline:
			return s.TryGet()
		}
	}
}

// Len returns the number of queued events.
func (s *Stream) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}
