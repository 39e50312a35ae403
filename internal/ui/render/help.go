package render

import (
	"fmt"
	"strings"

	"github.com/kk-code-lab/spage/internal/textutil"
)

// HelpEntry is one key binding shown in the help overlay.
type HelpEntry struct {
	Keys string
	Desc string
}

// HelpLines formats entries as aligned "keys  description" lines.
func HelpLines(entries []HelpEntry) []string {
	keyWidth := 0
	for _, e := range entries {
		if w := measure(e.Keys); w > keyWidth {
			keyWidth = w
		}
	}
	if keyWidth > 24 {
		keyWidth = 24
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		keys := truncate(textutil.SanitizeTerminalText(e.Keys), keyWidth)
		desc := textutil.SanitizeTerminalText(e.Desc)
		lines = append(lines, fmt.Sprintf("  %s  %s", textutil.PadRight(keys, keyWidth), desc))
	}
	return lines
}

// DrawHelp fills f with the help overlay. Scroll is the first entry shown.
func DrawHelp(f *Frame, theme Theme, entries []HelpEntry, scroll int) {
	for y := 0; y < f.Height; y++ {
		f.FillRow(0, y, theme.Text)
	}
	if f.Height == 0 {
		return
	}

	title := " Help "
	titleStart := 0
	if w := measure(title); f.Width > w {
		titleStart = (f.Width - w) / 2
	}
	f.FillRow(0, 0, theme.HelpTitle)
	f.DrawText(titleStart, 0, f.Width, title, theme.HelpTitle)

	lines := HelpLines(entries)
	if scroll > len(lines) {
		scroll = len(lines)
	}
	if scroll < 0 {
		scroll = 0
	}
	row := 2
	for _, text := range lines[scroll:] {
		if row >= f.Height-1 {
			break
		}
		f.DrawText(0, row, f.Width, truncate(strings.TrimRight(text, " "), f.Width), theme.Text)
		row++
	}

	footer := " h/Esc/q close "
	f.FillRow(0, f.Height-1, theme.HelpTitle)
	f.DrawText(0, f.Height-1, f.Width, truncate(footer, f.Width), theme.HelpTitle)
}
