package event

import "github.com/gdamore/tcell/v2"

// Event is anything the render loop consumes. The set is closed: only the
// types in this file implement it.
type Event interface {
	isEvent()
}

// KeyInput carries a terminal key press.
type KeyInput struct {
	Key *tcell.EventKey
}

// Resize reports a new terminal size.
type Resize struct {
	Width  int
	Height int
}

// MouseInput carries a terminal mouse event.
type MouseInput struct {
	Mouse *tcell.EventMouse
}

// DataAvailable reports newly committed bytes for a file.
type DataAvailable struct {
	FileID int
}

// StreamEnded reports that a file reached end of data.
type StreamEnded struct {
	FileID int
}

// StreamErrored reports that reading a file failed.
type StreamErrored struct {
	FileID int
	Err    error
}

// ProgressUpdate carries one parsed progress report. Finished clears the
// indicator.
type ProgressUpdate struct {
	Fraction float64
	Label    string
	Finished bool
}

// Interrupt wakes the loop without input, e.g. on cancellation or resume.
type Interrupt struct {
	Reason string
}

func (KeyInput) isEvent() {}
func (Resize) isEvent() {}
func (MouseInput) isEvent() {}
func (DataAvailable) isEvent() {}
func (StreamEnded) isEvent() {}
func (StreamErrored) isEvent() {}
func (ProgressUpdate) isEvent() {}
func (Interrupt) isEvent() {}

// FromTerminal converts a tcell event into a pager event. Events the pager
// does not use report false.
func FromTerminal(ev tcell.Event) (Event, bool) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return KeyInput{Key: ev}, true
	case *tcell.EventResize:
		w, h := ev.Size()
		return Resize{Width: w, Height: h}, true
	case *tcell.EventMouse:
		return MouseInput{Mouse: ev}, true
	case *tcell.EventInterrupt:
		reason, _ := ev.Data().(string)
		return Interrupt{Reason: reason}, true
	default:
		return nil, false
	}
}
