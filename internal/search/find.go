package search

import "github.com/kk-code-lab/spage/internal/line"

// Direction is the scan direction of a search.
type Direction int

const (
	Forward Direction = iota
	Backward
)

// Reverse returns the opposite direction.
func (d Direction) Reverse() Direction {
	if d == Forward {
		return Backward
	}
	return Forward
}

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// Outcome is the result kind of Find.
type Outcome int

const (
	// Found means Result.Match holds a match.
	Found Outcome = iota
	// NotYet means the scan reached lines that are still loading. The
	// search can resume from Result.Resume once more data arrives.
	NotYet
	// NoMatch means the pattern does not occur in the scanned direction.
	NoMatch
)

func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case NotYet:
		return "not-yet"
	default:
		return "no-match"
	}
}

// Position is a byte offset within a line.
type Position struct {
	Line   int
	Offset int
}

// Match is a located match.
type Match struct {
	FileID int
	Line   int
	Span
}

// Result is the outcome of a Find call.
type Result struct {
	Outcome Outcome
	Match   Match
	// Resume is where a NotYet search continues.
	Resume Position
}

// Lines yields the decoded text of a file's lines.
type Lines interface {
	Text(i int) (string, line.Status)
}

// LinesFunc adapts a function to Lines.
type LinesFunc func(i int) (string, line.Status)

func (f LinesFunc) Text(i int) (string, line.Status) { return f(i) }

// Find scans lines from start in direction dir. Forward scans take the first
// match starting at or after start.Offset on the start line; backward scans
// take the last match starting before it.
func Find(src Lines, fileID int, start Position, p *Pattern, dir Direction) Result {
	if dir == Backward {
		return findBackward(src, fileID, start, p)
	}
	return findForward(src, fileID, start, p)
}

func findForward(src Lines, fileID int, start Position, p *Pattern) Result {
	if start.Line < 0 {
		start = Position{}
	}
	for i := start.Line; ; i++ {
		text, status := src.Text(i)
		switch status {
		case line.NotYet:
			return Result{Outcome: NotYet, Resume: Position{Line: i}}
		case line.OutOfRange:
			return Result{Outcome: NoMatch}
		}
		for _, sp := range p.Spans(text) {
			if i == start.Line && sp.Start < start.Offset {
				continue
			}
			return Result{Outcome: Found, Match: Match{FileID: fileID, Line: i, Span: sp}}
		}
	}
}

func findBackward(src Lines, fileID int, start Position, p *Pattern) Result {
	for i := start.Line; i >= 0; i-- {
		text, status := src.Text(i)
		if status != line.Available {
			continue
		}
		spans := p.Spans(text)
		for j := len(spans) - 1; j >= 0; j-- {
			if i == start.Line && spans[j].Start >= start.Offset {
				continue
			}
			return Result{Outcome: Found, Match: Match{FileID: fileID, Line: i, Span: spans[j]}}
		}
	}
	return Result{Outcome: NoMatch}
}

// After returns the position just past m for a repeated forward search.
func After(m Match) Position {
	off := m.End
	if m.End == m.Start {
		off++
	}
	return Position{Line: m.Line, Offset: off}
}

// Before returns the position of m for a repeated backward search.
func Before(m Match) Position {
	return Position{Line: m.Line, Offset: m.Start}
}
