package render

import (
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/kk-code-lab/spage/internal/textutil"
)

// widths caches rune widths for status and prompt text, which is redrawn on
// every frame.
var widths runeWidths

type runeWidths struct {
	ascii   [128]int // width+1, zero means unknown
	asciiMu sync.RWMutex
	wide    sync.Map
}

func (c *runeWidths) of(ru rune) int {
	if ru >= 0 && ru < 128 {
		c.asciiMu.RLock()
		width := c.ascii[ru]
		c.asciiMu.RUnlock()
		if width == 0 && ru != 0 {
			actual := runewidth.RuneWidth(ru)
			if actual < 0 {
				actual = 0
			}
			c.asciiMu.Lock()
			c.ascii[ru] = actual + 1
			c.asciiMu.Unlock()
			return actual
		}
		return width - 1
	}

	if cached, ok := c.wide.Load(ru); ok {
		return cached.(int)
	}
	width := runewidth.RuneWidth(ru)
	if width < 0 {
		width = 0
	}
	c.wide.Store(ru, width)
	return width
}

func measure(text string) int {
	width := 0
	for _, ru := range text {
		width += widths.of(ru)
	}
	return width
}

const ellipsis = "…"

// truncate shortens text to maxWidth columns, ending with an ellipsis when
// something was cut.
func truncate(text string, maxWidth int) string {
	if maxWidth <= 0 || text == "" {
		return ""
	}
	if measure(text) <= maxWidth {
		return text
	}
	if maxWidth <= 1 {
		return ellipsis
	}

	available := maxWidth - 1
	var b strings.Builder
	used := 0
	for _, ru := range text {
		w := widths.of(ru)
		if used+w > available {
			break
		}
		b.WriteRune(ru)
		used += w
	}
	b.WriteString(ellipsis)
	return b.String()
}

// DrawText writes sanitized text at x, y, stopping at maxX. Zero-width runes
// join the preceding cell. It returns the column after the last cell.
func (f *Frame) DrawText(x, y, maxX int, text string, style tcell.Style) int {
	if maxX > f.Width {
		maxX = f.Width
	}
	text = textutil.SanitizeTerminalText(text)
	runes := []rune(text)
	for i := 0; i < len(runes); {
		if x >= maxX {
			break
		}
		cluster := string(runes[i])
		w := widths.of(runes[i])
		i++
		for i < len(runes) && widths.of(runes[i]) == 0 {
			cluster += string(runes[i])
			i++
		}
		if w == 0 {
			w = 1
		}
		if x+w > maxX {
			break
		}
		x = f.Set(x, y, cluster, style, w)
	}
	return x
}
