package display

import (
	"github.com/kk-code-lab/spage/internal/event"
	"github.com/kk-code-lab/spage/internal/line"
	"github.com/kk-code-lab/spage/internal/search"
	"github.com/kk-code-lab/spage/internal/ui/prompt"
)

// Mode is the input mode of the pager.
type Mode int

const (
	Viewing Mode = iota
	Searching
	Prompting
	Exiting
)

func (m Mode) String() string {
	switch m {
	case Viewing:
		return "viewing"
	case Searching:
		return "searching"
	case Prompting:
		return "prompting"
	case Exiting:
		return "exiting"
	default:
		return "unknown"
	}
}

// Position is a screen row inside a file: a line and a row of its layout.
type Position struct {
	Line int
	Row  int
}

func (p Position) before(q Position) bool {
	return p.Line < q.Line || (p.Line == q.Line && p.Row < q.Row)
}

// View is the scroll state of one displayed file.
type View struct {
	Top  Position
	Left int
}

// SearchState is the active search.
type SearchState struct {
	Pattern   *search.Pattern
	Direction search.Direction
	FileID    int
	// Current is the match last jumped to, if any.
	Current *search.Match
	// Pending is set while a forward search waits for more lines.
	Pending bool
	Resume  search.Position
}

// State is everything the render loop tracks between events. It is owned
// by the loop goroutine.
type State struct {
	Mode   Mode
	Active int
	// ErrorView is keyed by output file id.
	ErrorView   map[int]bool
	Views       map[int]*View
	LineNumbers bool
	Wrap        line.WrapMode
	Follow      bool
	Search      *SearchState
	Prompt      *prompt.Prompt
	Progress    *event.ProgressUpdate
	Message     string
	Help        bool
	HelpScroll  int
}

func newState(wrap line.WrapMode, lineNumbers, follow bool) State {
	return State{
		Mode:        Viewing,
		ErrorView:   make(map[int]bool),
		Views:       make(map[int]*View),
		LineNumbers: lineNumbers,
		Wrap:        wrap,
		Follow:      follow,
	}
}

func (s *State) view(fileID int) *View {
	v, ok := s.Views[fileID]
	if !ok {
		v = &View{}
		s.Views[fileID] = v
	}
	return v
}

func nextWrap(m line.WrapMode) line.WrapMode {
	switch m {
	case line.WrapNone:
		return line.WrapChar
	case line.WrapChar:
		return line.WrapWord
	default:
		return line.WrapNone
	}
}
