package textutil

import (
	"strings"

	"github.com/rivo/uniseg"
)

// DisplayWidth reports the number of terminal columns text occupies,
// measuring grapheme clusters rather than single runes.
func DisplayWidth(text string) int {
	return uniseg.StringWidth(text)
}

// Truncate shortens text to at most width columns, ending it with tail when
// something was cut. Clusters are never split.
func Truncate(text string, width int, tail string) string {
	if width <= 0 {
		return ""
	}
	if DisplayWidth(text) <= width {
		return text
	}
	tailWidth := DisplayWidth(tail)
	if tailWidth >= width {
		tail, tailWidth = "", 0
	}
	limit := width - tailWidth

	var b strings.Builder
	used := 0
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		w := gr.Width()
		if used+w > limit {
			break
		}
		b.WriteString(gr.Str())
		used += w
	}
	b.WriteString(tail)
	return b.String()
}

// TruncateLeft keeps the rightmost columns of text, prefixing head when
// something was cut. Paths read better with their end kept.
func TruncateLeft(text string, width int, head string) string {
	if width <= 0 {
		return ""
	}
	if DisplayWidth(text) <= width {
		return text
	}
	headWidth := DisplayWidth(head)
	if headWidth >= width {
		head, headWidth = "", 0
	}
	limit := width - headWidth

	var clusters []string
	var widths []int
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		clusters = append(clusters, gr.Str())
		widths = append(widths, gr.Width())
	}
	used := 0
	start := len(clusters)
	for start > 0 && used+widths[start-1] <= limit {
		start--
		used += widths[start]
	}
	return head + strings.Join(clusters[start:], "")
}

// PadRight pads text with spaces to width columns.
func PadRight(text string, width int) string {
	if w := DisplayWidth(text); w < width {
		return text + strings.Repeat(" ", width-w)
	}
	return text
}
