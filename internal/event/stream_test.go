package event

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
)

func TestStreamPreservesArrivalOrder(t *testing.T) {
	s := NewStream()
	sender := s.Sender()
	sender.Send(DataAvailable{FileID: 1})
	sender.Send(StreamEnded{FileID: 1})
	sender.Send(DataAvailable{FileID: 0})

	want := []Event{DataAvailable{FileID: 1}, StreamEnded{FileID: 1}, DataAvailable{FileID: 0}}
	for i, w := range want {
		got, ok := s.Get(time.Second)
		if !ok {
			t.Fatalf("event %d: timed out", i)
		}
		if got != w {
			t.Fatalf("event %d = %#v, want %#v", i, got, w)
		}
	}
	if _, ok := s.TryGet(); ok {
		t.Fatalf("expected empty stream")
	}
}

func TestStreamGetTimesOut(t *testing.T) {
	s := NewStream()
	start := time.Now()
	if _, ok := s.Get(20 * time.Millisecond); ok {
		t.Fatalf("expected timeout on empty stream")
	}
	if elapsed := time.Since(start); elapsed < 15*time.Millisecond {
		t.Fatalf("Get returned too early: %v", elapsed)
	}
}

func TestStreamWakesBlockedConsumer(t *testing.T) {
	s := NewStream()
	done := make(chan Event, 1)
	go func() {
		ev, _ := s.Get(-1)
		done <- ev
	}()

	time.Sleep(10 * time.Millisecond)
	s.Send(StreamErrored{FileID: 3, Err: errors.New("boom")})

	select {
	case ev := <-done:
		if e, ok := ev.(StreamErrored); !ok || e.FileID != 3 {
			t.Fatalf("unexpected event %#v", ev)
		}
	case <-time.After(time.Second):
		t.Fatalf("consumer was not woken")
	}
}

func TestStreamNeverDropsUnderConcurrentProducers(t *testing.T) {
	s := NewStream()
	const producers = 8
	const perProducer = 1000

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				s.Send(DataAvailable{FileID: id})
			}
		}(p)
	}
	wg.Wait()

	if got := s.Len(); got != producers*perProducer {
		t.Fatalf("Len = %d, want %d", got, producers*perProducer)
	}
	counts := make(map[int]int)
	for {
		ev, ok := s.TryGet()
		if !ok {
			break
		}
		counts[ev.(DataAvailable).FileID]++
	}
	for p := 0; p < producers; p++ {
		if counts[p] != perProducer {
			t.Fatalf("producer %d delivered %d events, want %d", p, counts[p], perProducer)
		}
	}
}

func TestFromTerminal(t *testing.T) {
	key := tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)
	ev, ok := FromTerminal(key)
	if !ok {
		t.Fatalf("key event not converted")
	}
	if k, ok := ev.(KeyInput); !ok || k.Key != key {
		t.Fatalf("unexpected conversion %#v", ev)
	}

	ev, ok = FromTerminal(tcell.NewEventResize(100, 40))
	if !ok {
		t.Fatalf("resize event not converted")
	}
	if r := ev.(Resize); r.Width != 100 || r.Height != 40 {
		t.Fatalf("resize = %+v", r)
	}

	ev, ok = FromTerminal(tcell.NewEventInterrupt("resume"))
	if !ok || ev.(Interrupt).Reason != "resume" {
		t.Fatalf("interrupt = %#v, %v", ev, ok)
	}
}
