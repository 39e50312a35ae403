// Package prompt is the single-line editor used for search and go-to-line
// input.
package prompt

import (
	"context"
	"unicode"

	"github.com/gdamore/tcell/v2"

	"github.com/kk-code-lab/spage/internal/textutil"
	"github.com/kk-code-lab/spage/internal/ui/input"
)

// Outcome tells the caller what a key did to the prompt.
type Outcome int

const (
	// Editing means the prompt stays open.
	Editing Outcome = iota
	// Submitted means the user accepted the value.
	Submitted
	// Cancelled means the prompt was dismissed.
	Cancelled
)

// Prompt is an editable line with a label and optional history.
type Prompt struct {
	label   string
	runes   []rune
	cursor  int
	history *History
	histPos int
	draft   []rune
	offset  int
	accept  func(rune) bool
}

// New creates an empty prompt.
func New(label string, history *History) *Prompt {
	return &Prompt{label: label, history: history, histPos: history.Len()}
}

// NewNumeric creates a prompt that only accepts digits.
func NewNumeric(label string, history *History) *Prompt {
	p := New(label, history)
	p.accept = unicode.IsDigit
	return p
}

// Label returns the prompt label.
func (p *Prompt) Label() string { return p.label }

// Value returns the current text.
func (p *Prompt) Value() string { return string(p.runes) }

// Cursor returns the cursor position in runes.
func (p *Prompt) Cursor() int { return p.cursor }

// SetValue replaces the text and moves the cursor to the end.
func (p *Prompt) SetValue(s string) {
	p.runes = []rune(s)
	p.cursor = len(p.runes)
}

// HandleKey applies one key press.
func (p *Prompt) HandleKey(ev *tcell.EventKey) Outcome {
	name := input.KeyName(ev)
	switch name {
	case "enter":
		return Submitted
	case "esc", "ctrl+c", "ctrl+g":
		return Cancelled
	case "backspace", "ctrl+h":
		if len(p.runes) == 0 {
			return Cancelled
		}
		if p.cursor > 0 {
			p.runes = append(p.runes[:p.cursor-1], p.runes[p.cursor:]...)
			p.cursor--
		}
	case "delete", "ctrl+d":
		if p.cursor < len(p.runes) {
			p.runes = append(p.runes[:p.cursor], p.runes[p.cursor+1:]...)
		}
	case "left", "ctrl+b":
		if p.cursor > 0 {
			p.cursor--
		}
	case "right", "ctrl+f":
		if p.cursor < len(p.runes) {
			p.cursor++
		}
	case "alt+left", "ctrl+left", "alt+b":
		p.cursor = previousWordBoundary(p.runes, p.cursor)
	case "alt+right", "ctrl+right", "alt+f":
		p.cursor = nextWordBoundary(p.runes, p.cursor)
	case "home", "ctrl+a":
		p.cursor = 0
	case "end", "ctrl+e":
		p.cursor = len(p.runes)
	case "ctrl+w":
		start := previousWordBoundary(p.runes, p.cursor)
		p.runes = append(p.runes[:start], p.runes[p.cursor:]...)
		p.cursor = start
	case "ctrl+u":
		p.runes = append(p.runes[:0], p.runes[p.cursor:]...)
		p.cursor = 0
	case "ctrl+k":
		p.runes = p.runes[:p.cursor]
	case "up", "ctrl+p":
		p.historyPrev()
	case "down", "ctrl+n":
		p.historyNext()
	default:
		if ev.Key() == tcell.KeyRune && ev.Modifiers()&(tcell.ModAlt|tcell.ModCtrl) == 0 {
			p.insert(ev.Rune())
		}
	}
	return Editing
}

func (p *Prompt) insert(r rune) {
	if !unicode.IsPrint(r) && r != ' ' {
		return
	}
	if p.accept != nil && !p.accept(r) {
		return
	}
	p.runes = append(p.runes, 0)
	copy(p.runes[p.cursor+1:], p.runes[p.cursor:])
	p.runes[p.cursor] = r
	p.cursor++
}

func (p *Prompt) historyPrev() {
	if p.histPos <= 0 {
		return
	}
	if p.histPos == p.history.Len() {
		p.draft = append(p.draft[:0], p.runes...)
	}
	p.histPos--
	p.SetValue(p.history.At(p.histPos))
}

func (p *Prompt) historyNext() {
	n := p.history.Len()
	if p.histPos >= n {
		return
	}
	p.histPos++
	if p.histPos == n {
		p.runes = append(p.runes[:0], p.draft...)
		p.cursor = len(p.runes)
		return
	}
	p.SetValue(p.history.At(p.histPos))
}

// Commit records the current value in history.
func (p *Prompt) Commit(ctx context.Context) {
	p.history.Add(ctx, p.Value())
}

// View returns the text to draw in width columns, label included, and the
// column of the cursor. The value scrolls horizontally to keep the cursor
// visible.
func (p *Prompt) View(width int) (string, int) {
	label := textutil.SanitizeTerminalText(p.label)
	labelWidth := textutil.DisplayWidth(label)
	avail := width - labelWidth - 1
	if avail < 1 {
		label = ""
		labelWidth = 0
		avail = width - 1
		if avail < 1 {
			return "", 0
		}
	}

	if p.cursor < p.offset {
		p.offset = p.cursor
	}
	for p.offset < p.cursor && textutil.DisplayWidth(string(p.runes[p.offset:p.cursor])) > avail {
		p.offset++
	}

	visible := textutil.Truncate(string(p.runes[p.offset:]), avail+1, "")
	cursorCol := labelWidth + textutil.DisplayWidth(string(p.runes[p.offset:p.cursor]))
	return label + visible, cursorCol
}

func isWordChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func previousWordBoundary(runes []rune, pos int) int {
	if pos <= 0 {
		return 0
	}
	if pos > len(runes) {
		pos = len(runes)
	}
	i := pos - 1
	for i >= 0 && !isWordChar(runes[i]) {
		i--
	}
	for i >= 0 && isWordChar(runes[i]) {
		i--
	}
	return i + 1
}

func nextWordBoundary(runes []rune, pos int) int {
	if pos >= len(runes) {
		return len(runes)
	}
	if pos < 0 {
		pos = 0
	}
	i := pos
	for i < len(runes) && !isWordChar(runes[i]) {
		i++
	}
	for i < len(runes) && isWordChar(runes[i]) {
		i++
	}
	return i
}
