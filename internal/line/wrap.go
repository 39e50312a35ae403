package line

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/kk-code-lab/spage/internal/overstrike"
)

// WrapMode selects how long lines are split into rows.
type WrapMode int

const (
	// WrapNone keeps each line on one row; the display scrolls horizontally.
	WrapNone WrapMode = iota
	// WrapChar breaks at the last grapheme that fits.
	WrapChar
	// WrapWord breaks after whitespace where possible.
	WrapWord
)

func (m WrapMode) String() string {
	switch m {
	case WrapNone:
		return "none"
	case WrapChar:
		return "char"
	case WrapWord:
		return "word"
	default:
		return "unknown"
	}
}

// ParseWrap parses a wrap mode name.
func ParseWrap(s string) (WrapMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "char":
		return WrapChar, nil
	case "none", "off":
		return WrapNone, nil
	case "word":
		return WrapWord, nil
	}
	return WrapNone, fmt.Errorf("unknown wrap mode %q", s)
}

// Cell is one grapheme cluster placed on a row.
type Cell struct {
	Text  string
	Style tcell.Style
	Width int
	// Col is the cluster's display column within the whole line.
	Col int
}

// Row is one screen row of a wrapped line.
type Row struct {
	Cells []Cell
	Width int
}

// Layout is a decoded line split into rows.
type Layout struct {
	Runs  []overstrike.Run
	Rows  []Row
	Width int
}

// Cells splits runs into grapheme cells with their columns. A zero-width
// cluster joins the cell before it, or the next cell when it leads the line.
func Cells(runs []overstrike.Run) []Cell {
	var cells []Cell
	var lead string
	col := 0
	for _, run := range runs {
		gr := uniseg.NewGraphemes(run.Text)
		for gr.Next() {
			cluster := gr.Str()
			w := gr.Width()
			if w == 0 {
				if n := len(cells); n > 0 {
					cells[n-1].Text += cluster
				} else {
					lead += cluster
				}
				continue
			}
			cells = append(cells, Cell{Text: lead + cluster, Style: run.Style, Width: w, Col: col})
			lead = ""
			col += w
		}
	}
	return cells
}

// Wrap lays runs out in rows no wider than width.
func Wrap(runs []overstrike.Run, width int, mode WrapMode) *Layout {
	cells := Cells(runs)
	total := 0
	if n := len(cells); n > 0 {
		total = cells[n-1].Col + cells[n-1].Width
	}
	layout := &Layout{Runs: runs, Width: total}
	if width < 1 {
		width = 1
	}
	if mode == WrapNone || total <= width {
		layout.Rows = []Row{{Cells: cells, Width: total}}
		return layout
	}

	start := 0
	for start < len(cells) {
		end, rowWidth := fit(cells, start, width)
		if mode == WrapWord && end < len(cells) {
			if brk := lastBreak(cells, start, end); brk > start {
				end = brk
				rowWidth = cells[end-1].Col + cells[end-1].Width - cells[start].Col
			}
		}
		layout.Rows = append(layout.Rows, Row{Cells: cells[start:end:end], Width: rowWidth})
		start = end
		if mode == WrapWord {
			// Whitespace at a soft break is not carried onto the next row.
			for start < len(cells) && isSpace(cells[start].Text) {
				start++
			}
		}
	}
	return layout
}

// fit returns the end of the longest run of cells from start that fits in
// width. At least one cell is always taken.
func fit(cells []Cell, start, width int) (int, int) {
	used := 0
	i := start
	for i < len(cells) {
		w := cells[i].Width
		if used+w > width && i > start {
			break
		}
		used += w
		i++
	}
	return i, used
}

// lastBreak finds the index just past the last whitespace cell in
// cells[start:end], or start when the row has none.
func lastBreak(cells []Cell, start, end int) int {
	// A break right after the row is allowed when the overflowing cell is
	// whitespace itself.
	if end < len(cells) && isSpace(cells[end].Text) {
		return end
	}
	for i := end - 1; i > start; i-- {
		if isSpace(cells[i].Text) {
			return i + 1
		}
	}
	return start
}

func isSpace(s string) bool {
	return s == " " || s == " " || s == "　"
}
