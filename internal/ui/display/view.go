package display

import (
	"fmt"

	"github.com/kk-code-lab/spage/internal/buffer"
	"github.com/kk-code-lab/spage/internal/line"
	"github.com/kk-code-lab/spage/internal/ui/render"
)

// render draws the current state and lays out the read-ahead lines.
func (d *Display) render() {
	d.refresh.Rendered()
	frame := render.NewFrame(d.width, d.height)
	if d.state.Help {
		render.DrawHelp(frame, d.theme, d.helpEntries(), d.state.HelpScroll)
		d.screen.Draw(frame)
		return
	}

	g := d.layout()
	f := d.current()
	if f == nil {
		for y := 0; y < g.contentRows; y++ {
			render.DrawFiller(frame, y, d.theme)
		}
		if g.rulerRow >= 0 {
			render.DrawRuler(frame, g.rulerRow, d.theme, render.RulerInfo{Title: "(no input)"})
		}
		d.screen.Draw(frame)
		return
	}

	c := d.cursorFor(f)
	v := d.state.view(f.ID())
	d.clamp(c, v, g)
	left := 0
	if d.state.Wrap == line.WrapNone {
		left = v.Left
	}

	y := 0
	pos := v.Top
	lastLine := -1
	hlLine := -1
	var highlights []render.Highlight
	for y < g.contentRows {
		layout, status := d.cache.Get(c.id, c.idx, pos.Line)
		if status != line.Available {
			break
		}
		if pos.Row >= len(layout.Rows) {
			pos = Position{Line: pos.Line + 1}
			continue
		}
		if hlLine != pos.Line {
			highlights = d.highlights(c, pos.Line)
			hlLine = pos.Line
		}
		if g.gutter > 0 {
			number := 0
			if pos.Row == 0 {
				number = pos.Line + 1
			}
			render.DrawGutter(frame, y, g.gutter, number, d.theme)
		}
		render.DrawLineRow(frame, y, g.gutter, layout.Rows[pos.Row], left, highlights, d.theme)
		lastLine = pos.Line
		pos.Row++
		y++
	}

	state, cause := c.idx.State()
	if y < g.contentRows && state == buffer.Errored {
		render.DrawBanner(frame, y, d.theme, fmt.Sprintf("error reading %s: %v", f.Title(), cause))
		y++
	}
	for ; y < g.contentRows; y++ {
		render.DrawFiller(frame, y, d.theme)
	}

	if g.progressRow >= 0 && d.state.Progress != nil {
		render.DrawBar(frame, g.progressRow, d.theme, d.state.Progress.Fraction, d.state.Progress.Label)
	}
	if g.promptRow >= 0 {
		if p := d.state.Prompt; p != nil && (d.state.Mode == Searching || d.state.Mode == Prompting) {
			text, col := p.View(d.width)
			frame.FillRow(0, g.promptRow, d.theme.Prompt)
			frame.DrawText(0, g.promptRow, d.width, text, d.theme.Prompt)
			frame.CursorX, frame.CursorY, frame.ShowCursor = col, g.promptRow, true
		} else {
			render.DrawMessage(frame, g.promptRow, d.theme, d.state.Message)
		}
	}
	if g.rulerRow >= 0 {
		render.DrawRuler(frame, g.rulerRow, d.theme, d.rulerInfo(c, v, lastLine))
	}

	d.screen.Draw(frame)

	if n := d.cfg.ReadAheadLines; n > 0 && lastLine >= 0 {
		d.cache.Prefetch(c.id, c.idx, lastLine+1, n)
	}
}

func (d *Display) rulerInfo(c cursor, v *View, lastLine int) render.RulerInfo {
	f, _ := d.files.ByID(c.id)
	state, _ := c.idx.State()
	info := render.RulerInfo{
		Title:     f.Title(),
		FileIndex: d.state.Active,
		FileCount: d.files.Len(),
		Lines:     c.lines(),
		Loading:   state == buffer.Loading,
		Bytes:     int64(c.idx.Len()),
		Follow:    d.state.Follow,
		ErrorView: d.files.Owner(c.id) != c.id,
		Errored:   state == buffer.Errored,
	}
	if lastLine >= 0 {
		info.FirstLine = v.Top.Line + 1
		info.LastLine = lastLine + 1
	}
	if d.state.Wrap != d.cfg.WrapMode() {
		info.Wrap = d.state.Wrap.String()
	}
	return info
}

func (d *Display) highlights(c cursor, i int) []render.Highlight {
	s := d.state.Search
	if s == nil || s.Pattern == nil {
		return nil
	}
	text, status := d.cache.Text(c.id, c.idx, i)
	if status != line.Available {
		return nil
	}
	spans := s.Pattern.Spans(text)
	if len(spans) == 0 {
		return nil
	}
	out := make([]render.Highlight, 0, len(spans))
	for _, sp := range spans {
		current := s.Current != nil && s.Current.FileID == c.id && s.Current.Line == i && s.Current.Start == sp.Start
		out = append(out, render.Highlight{StartCol: sp.StartCol, EndCol: sp.EndCol, Current: current})
	}
	return out
}

func (d *Display) helpEntries() []render.HelpEntry {
	var entries []render.HelpEntry
	for _, h := range d.keymap.Help() {
		entries = append(entries, render.HelpEntry{Keys: h.Keys, Desc: h.Desc})
	}
	return entries
}
