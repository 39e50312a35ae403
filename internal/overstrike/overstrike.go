// Package overstrike turns raw line bytes into styled text runs.
//
// Decoding is a pure function of its input. The control-byte table:
//
//	X BS X           X in bold
//	_ BS X, X BS _   X underlined (both forms combine with bold)
//	X BS Y           Y, the later character wins
//	TAB              spaces up to the next multiple of TabWidth columns
//	CR, LF           removed
//	ESC [ ... m      SGR: updates the current style
//	ESC [ ... other  removed
//	ESC ] ... BEL/ST removed
//	ESC other        removed with its intermediates and final byte
//	other C0, DEL    removed, as is a backspace with nothing to strike
//	invalid UTF-8    shown as <XX> in reverse video
package overstrike

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// TabWidth is the tab stop interval used when expanding tabs.
const TabWidth = 8

// Run is a span of text sharing one style.
type Run struct {
	Text  string
	Style tcell.Style
}

type cell struct {
	text      string
	style     tcell.Style
	bold      bool
	underline bool
	// strikable cells came from a printable rune and may be overstruck.
	strikable bool
}

type decoder struct {
	cells  []cell
	style  tcell.Style
	column int
	// pendingBS is set after a backspace that may strike the previous cell.
	pendingBS bool
}

// Decode converts one line of raw bytes into styled runs.
func Decode(b []byte) []Run {
	d := decoder{style: tcell.StyleDefault}
	for i := 0; i < len(b); {
		c := b[i]
		switch {
		case c == '\b':
			d.pendingBS = len(d.cells) > 0 && d.cells[len(d.cells)-1].strikable
			i++
			continue
		case c == '\t':
			d.pendingBS = false
			spaces := TabWidth - d.column%TabWidth
			for j := 0; j < spaces; j++ {
				d.push(" ", 1, false)
			}
			i++
			continue
		case c == 0x1b:
			d.pendingBS = false
			i = d.escape(b, i)
			continue
		case c < 0x20 || c == 0x7f:
			d.pendingBS = false
			i++
			continue
		}

		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size <= 1 {
			d.pendingBS = false
			d.invalid(b[i])
			i++
			continue
		}
		i += size
		if d.pendingBS {
			d.pendingBS = false
			d.strike(r)
			continue
		}
		w := runewidth.RuneWidth(r)
		d.push(string(r), w, true)
	}
	return d.runs()
}

func (d *decoder) push(text string, width int, strikable bool) {
	d.cells = append(d.cells, cell{text: text, style: d.style, strikable: strikable})
	if width > 0 {
		d.column += width
	}
}

func (d *decoder) strike(r rune) {
	last := &d.cells[len(d.cells)-1]
	prev, _ := utf8.DecodeRuneInString(last.text)
	switch {
	case prev == r:
		last.bold = true
	case prev == '_':
		oldWidth := runewidth.RuneWidth(prev)
		last.text = string(r)
		last.underline = true
		d.column += runewidth.RuneWidth(r) - oldWidth
	case r == '_':
		last.underline = true
	default:
		oldWidth := runewidth.RuneWidth(prev)
		last.text = string(r)
		d.column += runewidth.RuneWidth(r) - oldWidth
	}
}

func (d *decoder) invalid(c byte) {
	saved := d.style
	d.style = d.style.Reverse(true)
	d.push(fmt.Sprintf("<%02X>", c), 4, false)
	d.style = saved
}

// escape consumes an escape sequence starting at b[i] and returns the index
// just past it.
func (d *decoder) escape(b []byte, i int) int {
	if i+1 >= len(b) {
		return len(b)
	}
	switch b[i+1] {
	case '[':
		j := i + 2
		start := j
		for j < len(b) && b[j] >= 0x30 && b[j] <= 0x3f {
			j++
		}
		for j < len(b) && b[j] >= 0x20 && b[j] <= 0x2f {
			j++
		}
		if j >= len(b) {
			return len(b)
		}
		final := b[j]
		if final < 0x40 || final > 0x7e {
			// Malformed: drop the introducer and resume at the odd byte.
			return j
		}
		if final == 'm' {
			d.style = applySGR(d.style, string(b[start:j]))
		}
		return j + 1
	case ']':
		j := i + 2
		for j < len(b) {
			if b[j] == 0x07 {
				return j + 1
			}
			if b[j] == 0x1b && j+1 < len(b) && b[j+1] == '\\' {
				return j + 2
			}
			j++
		}
		return len(b)
	default:
		j := i + 1
		for j < len(b) && b[j] >= 0x20 && b[j] <= 0x2f {
			j++
		}
		if j < len(b) {
			j++
		}
		return j
	}
}

func (d *decoder) runs() []Run {
	if len(d.cells) == 0 {
		return nil
	}
	var out []Run
	var text strings.Builder
	var current tcell.Style
	for i, c := range d.cells {
		style := c.style
		if c.bold {
			style = style.Bold(true)
		}
		if c.underline {
			style = style.Underline(true)
		}
		if i > 0 && style != current {
			out = append(out, Run{Text: text.String(), Style: current})
			text.Reset()
		}
		current = style
		text.WriteString(c.text)
	}
	out = append(out, Run{Text: text.String(), Style: current})
	return out
}

// Plain returns the concatenated text of runs.
func Plain(runs []Run) string {
	switch len(runs) {
	case 0:
		return ""
	case 1:
		return runs[0].Text
	}
	var b strings.Builder
	for _, r := range runs {
		b.WriteString(r.Text)
	}
	return b.String()
}
