package render

import (
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
)

// Screen writes frames to a terminal, sending only the cells that changed
// since the previous frame.
type Screen struct {
	term tcell.Screen
	prev *Frame
}

// NewScreen wraps a terminal screen.
func NewScreen(term tcell.Screen) *Screen {
	return &Screen{term: term}
}

// Size returns the terminal size.
func (s *Screen) Size() (int, int) {
	return s.term.Size()
}

// Draw emits the cells of f that differ from the last drawn frame and shows
// the result. It returns the number of cells written.
func (s *Screen) Draw(f *Frame) int {
	changes := Diff(s.prev, f)
	if s.prev == nil {
		s.term.Clear()
	}
	for _, ch := range changes {
		if ch.Cell.Width == 0 {
			// Covered by the wide cell to the left, which was drawn or is
			// unchanged.
			continue
		}
		mainc, combc := splitCluster(ch.Cell.Text)
		s.term.SetContent(ch.X, ch.Y, mainc, combc, ch.Cell.Style)
	}
	if f.ShowCursor {
		s.term.ShowCursor(f.CursorX, f.CursorY)
	} else {
		s.term.HideCursor()
	}
	s.term.Show()
	s.prev = f
	return len(changes)
}

// Invalidate drops the baseline so the next Draw repaints everything.
func (s *Screen) Invalidate() {
	s.prev = nil
}

// Sync invalidates the baseline and asks the terminal to repaint from
// scratch.
func (s *Screen) Sync() {
	s.prev = nil
	s.term.Sync()
}

func splitCluster(text string) (rune, []rune) {
	if text == "" {
		return ' ', nil
	}
	mainc, size := utf8.DecodeRuneInString(text)
	if size == len(text) {
		return mainc, nil
	}
	return mainc, []rune(text[size:])
}
