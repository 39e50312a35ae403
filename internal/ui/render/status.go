package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
)

// RulerInfo is what the ruler reports about the displayed file.
type RulerInfo struct {
	Title     string
	FileIndex int // zero-based position among output files
	FileCount int
	// FirstLine and LastLine are the one-based lines on screen; zero when
	// nothing is shown.
	FirstLine int
	LastLine  int
	Lines     int
	Loading   bool
	Bytes     int64
	Follow    bool
	ErrorView bool
	Errored   bool
	Wrap      string
}

// RulerText returns the left and right parts of the ruler.
func RulerText(info RulerInfo) (string, string) {
	left := " " + info.Title
	if info.FileCount > 1 {
		left += fmt.Sprintf(" (%d/%d)", info.FileIndex+1, info.FileCount)
	}

	var parts []string
	if info.Errored {
		parts = append(parts, "[error]")
	}
	if info.ErrorView {
		parts = append(parts, "[stderr]")
	}
	if info.Follow {
		parts = append(parts, "[follow]")
	}
	if info.Wrap != "" {
		parts = append(parts, "[wrap:"+info.Wrap+"]")
	}

	total := fmt.Sprintf("%d", info.Lines)
	if info.Loading {
		total += "+"
	}
	if info.FirstLine > 0 {
		parts = append(parts, fmt.Sprintf("%d-%d/%s", info.FirstLine, info.LastLine, total))
	} else {
		parts = append(parts, "-/"+total)
	}
	if pct, ok := percent(info); ok {
		parts = append(parts, fmt.Sprintf("%d%%", pct))
	}
	parts = append(parts, humanize.Bytes(uint64(max(info.Bytes, 0))))
	return left, strings.Join(parts, " ") + " "
}

func percent(info RulerInfo) (int, bool) {
	if info.Lines == 0 || info.LastLine == 0 {
		return 0, false
	}
	if !info.Loading && info.LastLine >= info.Lines {
		return 100, true
	}
	return info.LastLine * 100 / info.Lines, true
}

// DrawRuler paints the ruler on row y. The title is cut before the right
// part.
func DrawRuler(f *Frame, y int, theme Theme, info RulerInfo) {
	left, right := RulerText(info)
	rightWidth := measure(right)
	f.FillRow(0, y, theme.Ruler)
	if rightWidth >= f.Width {
		f.DrawText(0, y, f.Width, truncate(right, f.Width), theme.Ruler)
		return
	}
	titleMax := f.Width - rightWidth - 1
	f.DrawText(0, y, titleMax, truncate(left, titleMax), theme.RulerTitle)
	f.DrawText(f.Width-rightWidth, y, f.Width, right, theme.Ruler)
}

// BarText renders a progress bar like "[#####.....] 42% label" in at most
// width columns.
func BarText(fraction float64, label string, width int) string {
	if math.IsNaN(fraction) || fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	pct := fmt.Sprintf("%d%%", int(math.Round(fraction*100)))

	inner := width / 4
	if inner > 40 {
		inner = 40
	}
	if inner < 10 {
		inner = 10
	}
	if inner+2+1+len(pct) > width {
		inner = width - 3 - len(pct)
	}
	if inner < 1 {
		return truncate(pct, width)
	}
	filled := int(math.Round(fraction * float64(inner)))
	text := "[" + strings.Repeat("#", filled) + strings.Repeat(".", inner-filled) + "] " + pct
	if label != "" {
		text += " " + label
	}
	return truncate(text, width)
}

// DrawBar paints the progress bar on row y.
func DrawBar(f *Frame, y int, theme Theme, fraction float64, label string) {
	text := BarText(fraction, label, f.Width)
	f.FillRow(0, y, theme.Text)
	end := strings.IndexByte(text, ']')
	if end < 0 {
		f.DrawText(0, y, f.Width, text, theme.Text)
		return
	}
	x := f.DrawText(0, y, f.Width, "[", theme.Text)
	for _, ch := range text[1:end] {
		style := theme.BarEmpty
		if ch == '#' {
			style = theme.BarFill
		}
		x = f.Set(x, y, string(ch), style, 1)
	}
	f.DrawText(x, y, f.Width, text[end:], theme.Text)
}

// DrawMessage paints a one-line message on row y.
func DrawMessage(f *Frame, y int, theme Theme, text string) {
	f.FillRow(0, y, theme.Text)
	f.DrawText(0, y, f.Width, truncate(text, f.Width), theme.Message)
}
