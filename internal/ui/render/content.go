package render

import (
	"fmt"

	"github.com/kk-code-lab/spage/internal/line"
)

// Highlight marks the display columns [StartCol, EndCol) of a line.
type Highlight struct {
	StartCol int
	EndCol   int
	Current  bool
}

// DrawLineRow paints one row of a laid out line at row y starting at screen
// column x0. Left is the horizontal scroll in columns; a wide cluster cut by
// it is shown as a space.
func DrawLineRow(f *Frame, y, x0 int, row line.Row, left int, highlights []Highlight, theme Theme) {
	f.FillRow(x0, y, theme.Text)
	if len(row.Cells) == 0 {
		return
	}
	base := row.Cells[0].Col + left
	for _, cell := range row.Cells {
		end := cell.Col + cell.Width
		if end <= base {
			continue
		}
		style := cell.Style
		if h, ok := highlightAt(highlights, cell.Col); ok {
			if h.Current {
				style = theme.CurrentMatch
			} else {
				style = theme.Match
			}
		}
		if cell.Col < base {
			for col := base; col < end; col++ {
				f.Set(x0+col-base, y, " ", style, 1)
			}
			continue
		}
		x := x0 + cell.Col - base
		if x >= f.Width {
			break
		}
		f.Set(x, y, cell.Text, style, cell.Width)
	}
}

func highlightAt(highlights []Highlight, col int) (Highlight, bool) {
	for _, h := range highlights {
		if col >= h.StartCol && col < h.EndCol {
			return h, true
		}
	}
	return Highlight{}, false
}

// GutterWidth returns the columns needed to number lines up to count,
// including the separating space.
func GutterWidth(count int) int {
	digits := len(fmt.Sprintf("%d", max(count, 1)))
	if digits < 3 {
		digits = 3
	}
	return digits + 1
}

// DrawGutter paints a line number right-aligned in width columns. A
// non-positive number leaves the gutter blank, as for continuation rows.
func DrawGutter(f *Frame, y, width, number int, theme Theme) {
	text := ""
	if number > 0 {
		text = fmt.Sprintf("%*d ", width-1, number)
	}
	for x := 0; x < width; x++ {
		f.Set(x, y, " ", theme.Gutter, 1)
	}
	f.DrawText(0, y, width, text, theme.Gutter)
}

// DrawFiller marks row y as past the end of the file.
func DrawFiller(f *Frame, y int, theme Theme) {
	f.FillRow(0, y, theme.Text)
	f.Set(0, y, "~", theme.Filler, 1)
}

// DrawBanner paints an inline notice such as a read error across row y.
func DrawBanner(f *Frame, y int, theme Theme, text string) {
	f.FillRow(0, y, theme.ErrorBanner)
	f.DrawText(0, y, f.Width, truncate(" "+text, f.Width), theme.ErrorBanner)
}
