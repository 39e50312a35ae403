package display

import (
	"github.com/kk-code-lab/spage/internal/line"
	"github.com/kk-code-lab/spage/internal/source"
	"github.com/kk-code-lab/spage/internal/ui/render"
)

// geometry is the screen split for the current state.
type geometry struct {
	contentRows int
	gutter      int
	textWidth   int
	progressRow int
	promptRow   int
	rulerRow    int
}

// layout computes the geometry and sets the line cache to the text width,
// which drops cached layouts when the width changed.
func (d *Display) layout() geometry {
	g := geometry{progressRow: -1, promptRow: -1, rulerRow: -1}
	rows := d.height
	if rows > 0 {
		rows--
		g.rulerRow = rows
	}
	if rows > 0 && (d.state.Mode == Searching || d.state.Mode == Prompting || d.state.Message != "") {
		rows--
		g.promptRow = rows
	}
	if rows > 0 && d.state.Progress != nil {
		rows--
		g.progressRow = rows
	}
	g.contentRows = rows

	if d.state.LineNumbers {
		count := 0
		if f := d.current(); f != nil {
			if idx := d.indexFor(f.ID()); idx != nil {
				count = idx.LineCount()
			}
		}
		g.gutter = render.GutterWidth(count)
		if g.gutter >= d.width {
			g.gutter = 0
		}
	}
	g.textWidth = d.width - g.gutter
	if g.textWidth < 1 {
		g.textWidth = 1
	}
	d.cache.SetWidth(g.textWidth)
	return g
}

// cursor bundles the file being scrolled with its index.
type cursor struct {
	d   *Display
	id  int
	idx *line.Index
}

func (d *Display) cursorFor(f *source.File) cursor {
	return cursor{d: d, id: f.ID(), idx: d.indexFor(f.ID())}
}

func (c cursor) rows(i int) int {
	return c.d.cache.Rows(c.id, c.idx, i)
}

func (c cursor) lines() int {
	return c.idx.LineCount()
}

// advance moves pos forward by n rows, stopping on the last row that exists.
func (c cursor) advance(pos Position, n int) Position {
	for ; n > 0; n-- {
		if pos.Row+1 < c.rows(pos.Line) {
			pos.Row++
			continue
		}
		if pos.Line+1 >= c.lines() {
			break
		}
		pos = Position{Line: pos.Line + 1}
	}
	return pos
}

// retreat moves pos back by n rows, stopping at the first row.
func (c cursor) retreat(pos Position, n int) Position {
	for ; n > 0; n-- {
		if pos.Row > 0 {
			pos.Row--
			continue
		}
		if pos.Line == 0 {
			break
		}
		pos.Line--
		pos.Row = max(c.rows(pos.Line)-1, 0)
	}
	return pos
}

// last is the final row of the file as indexed so far.
func (c cursor) last() Position {
	n := c.lines()
	if n == 0 {
		return Position{}
	}
	return Position{Line: n - 1, Row: max(c.rows(n-1)-1, 0)}
}

// endTop is the top position that puts the last row on the bottom of a
// screen of height rows, or the first row when the file is shorter.
func (c cursor) endTop(height int) Position {
	if height < 1 {
		height = 1
	}
	return c.retreat(c.last(), height-1)
}

// clamp keeps top on an existing row and, unless scrolling past the end is
// allowed, no lower than endTop.
func (d *Display) clamp(c cursor, v *View, g geometry) {
	n := c.lines()
	if n == 0 {
		v.Top = Position{}
		return
	}
	if v.Top.Line >= n {
		v.Top = Position{Line: n - 1}
	}
	if rows := c.rows(v.Top.Line); v.Top.Row >= rows {
		v.Top.Row = max(rows-1, 0)
	}
	limit := c.last()
	if !d.cfg.ScrollPastEOF {
		limit = c.endTop(g.contentRows)
	}
	if limit.before(v.Top) {
		v.Top = limit
	}
	if d.state.Wrap != line.WrapNone {
		v.Left = 0
	}
	if v.Left < 0 {
		v.Left = 0
	}
}

// scroll moves the current view by delta rows.
func (d *Display) scroll(delta int) {
	f := d.current()
	if f == nil {
		return
	}
	g := d.layout()
	c := d.cursorFor(f)
	v := d.state.view(f.ID())
	if delta > 0 {
		v.Top = c.advance(v.Top, delta)
	} else if delta < 0 {
		v.Top = c.retreat(v.Top, -delta)
		d.state.Follow = false
	}
	d.clamp(c, v, g)
}

func (d *Display) scrollHorizontal(delta int) {
	f := d.current()
	if f == nil {
		return
	}
	if d.state.Wrap != line.WrapNone {
		d.state.Message = "horizontal scrolling needs wrapping off (w)"
		return
	}
	v := d.state.view(f.ID())
	v.Left = max(v.Left+delta, 0)
}

func (d *Display) jumpTop() {
	f := d.current()
	if f == nil {
		return
	}
	v := d.state.view(f.ID())
	v.Top = Position{}
	d.state.Follow = false
}

func (d *Display) jumpBottom() {
	f := d.current()
	if f == nil {
		return
	}
	g := d.layout()
	c := d.cursorFor(f)
	d.state.view(f.ID()).Top = c.endTop(g.contentRows)
}

// followEnd pins the current view to the end of its file.
func (d *Display) followEnd() {
	d.jumpBottom()
}

// bottomOf returns the last position on screen when the view starts at
// top.
func (d *Display) bottomOf(c cursor, top Position, g geometry) Position {
	if g.contentRows < 1 {
		return top
	}
	return c.advance(top, g.contentRows-1)
}
