package display

import (
	"github.com/kk-code-lab/spage/internal/line"
	"github.com/kk-code-lab/spage/internal/search"
)

// startSearch compiles text and searches the current file from the top of
// the screen. An empty text repeats the previous pattern in direction dir.
func (d *Display) startSearch(text string, dir search.Direction) {
	f := d.current()
	if f == nil {
		return
	}
	if text == "" {
		if d.state.Search == nil {
			return
		}
		d.state.Search.Direction = dir
		d.findNext(false)
		return
	}
	p, err := search.Compile(text)
	if err != nil {
		d.state.Message = "invalid pattern: " + err.Error()
		d.log.Debug("search compile failed", "pattern", text, "err", err)
		return
	}
	d.state.Search = &SearchState{Pattern: p, Direction: dir, FileID: f.ID()}
	d.state.Follow = false
	d.runSearch(d.searchOrigin(), dir)
}

// searchOrigin is where a fresh search starts: the top line of the screen.
func (d *Display) searchOrigin() search.Position {
	f := d.current()
	return search.Position{Line: d.state.view(f.ID()).Top.Line}
}

// findNext repeats the search from the current match, in the search
// direction or the opposite one.
func (d *Display) findNext(reverse bool) {
	s := d.state.Search
	if s == nil {
		d.state.Message = "no previous search"
		return
	}
	f := d.current()
	if f == nil {
		return
	}
	dir := s.Direction
	if reverse {
		dir = dir.Reverse()
	}
	var start search.Position
	switch {
	case s.Current != nil && s.Current.FileID == f.ID() && dir == search.Forward:
		start = search.After(*s.Current)
	case s.Current != nil && s.Current.FileID == f.ID():
		start = search.Before(*s.Current)
	default:
		s.Current = nil
		start = d.searchOrigin()
	}
	s.FileID = f.ID()
	d.state.Follow = false
	d.runSearch(start, dir)
}

func (d *Display) runSearch(start search.Position, dir search.Direction) {
	s := d.state.Search
	f := d.current()
	c := d.cursorFor(f)
	src := search.LinesFunc(func(i int) (string, line.Status) {
		return d.cache.Text(c.id, c.idx, i)
	})
	res := search.Find(src, c.id, start, s.Pattern, dir)
	switch res.Outcome {
	case search.Found:
		m := res.Match
		s.Current = &m
		s.Pending = false
		d.state.Message = ""
		d.reveal(c, m)
	case search.NotYet:
		resume := res.Resume
		// The unterminated last line was searched already but may still
		// grow, so it is searched again once more data arrives.
		if c.idx.Pending() && resume.Line == c.lines() && resume.Line > 0 {
			resume = search.Position{Line: resume.Line - 1}
		}
		s.Pending = true
		s.Resume = resume
		s.FileID = c.id
		d.state.Message = "searching for " + s.Pattern.String() + "..."
	case search.NoMatch:
		s.Pending = false
		d.state.Message = "pattern not found: " + s.Pattern.String()
	}
}

// resumeSearch continues a pending forward search after new lines arrived.
func (d *Display) resumeSearch() {
	s := d.state.Search
	f := d.current()
	if f == nil || f.ID() != s.FileID {
		s.Pending = false
		return
	}
	d.runSearch(s.Resume, search.Forward)
	if !s.Pending {
		d.refresh.Data()
	}
}

// reveal scrolls so that m is on screen.
func (d *Display) reveal(c cursor, m search.Match) {
	g := d.layout()
	v := d.state.view(c.id)
	bottom := d.bottomOf(c, v.Top, g)
	if m.Line < v.Top.Line || m.Line > bottom.Line || (m.Line == v.Top.Line && v.Top.Row > 0) {
		v.Top = Position{Line: m.Line}
	}
	if d.state.Wrap == line.WrapNone && (m.StartCol < v.Left || m.EndCol > v.Left+g.textWidth) {
		v.Left = max(m.StartCol-g.textWidth/4, 0)
	}
	d.clamp(c, v, g)
}
