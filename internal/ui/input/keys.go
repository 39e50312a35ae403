package input

import (
	"strings"

	"github.com/gdamore/tcell/v2"
)

var namedKeys = map[tcell.Key]string{
	tcell.KeyUp:         "up",
	tcell.KeyDown:       "down",
	tcell.KeyLeft:       "left",
	tcell.KeyRight:      "right",
	tcell.KeyPgUp:       "pgup",
	tcell.KeyPgDn:       "pgdown",
	tcell.KeyHome:       "home",
	tcell.KeyEnd:        "end",
	tcell.KeyInsert:     "insert",
	tcell.KeyDelete:     "delete",
	tcell.KeyEnter:      "enter",
	tcell.KeyTab:        "tab",
	tcell.KeyBacktab:    "shift+tab",
	tcell.KeyEscape:     "esc",
	tcell.KeyBackspace:  "backspace",
	tcell.KeyBackspace2: "backspace",
	tcell.KeyF1:         "f1",
	tcell.KeyF2:         "f2",
	tcell.KeyF3:         "f3",
	tcell.KeyF4:         "f4",
	tcell.KeyF5:         "f5",
	tcell.KeyF6:         "f6",
	tcell.KeyF7:         "f7",
	tcell.KeyF8:         "f8",
	tcell.KeyF9:         "f9",
	tcell.KeyF10:        "f10",
	tcell.KeyF11:        "f11",
	tcell.KeyF12:        "f12",
}

// KeyName returns the name of a key press in the form used by key bindings:
// a printable rune ("q", "G"), "space", a named key ("pgdown"), or a
// modifier-prefixed name ("ctrl+c", "alt+x", "shift+up").
func KeyName(ev *tcell.EventKey) string {
	if ev == nil {
		return ""
	}
	mods := ev.Modifiers()
	if ev.Key() == tcell.KeyRune {
		r := ev.Rune()
		name := string(r)
		if r == ' ' {
			name = "space"
		}
		if mods&tcell.ModAlt != 0 {
			return "alt+" + name
		}
		if mods&tcell.ModCtrl != 0 {
			return "ctrl+" + strings.ToLower(name)
		}
		return name
	}
	if name, ok := namedKeys[ev.Key()]; ok {
		prefix := ""
		if mods&tcell.ModCtrl != 0 && ev.Key() != tcell.KeyBacktab {
			prefix += "ctrl+"
		}
		if mods&tcell.ModAlt != 0 {
			prefix += "alt+"
		}
		if mods&tcell.ModShift != 0 && ev.Key() != tcell.KeyBacktab {
			prefix += "shift+"
		}
		return prefix + name
	}
	if k := ev.Key(); k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ {
		return "ctrl+" + string(rune('a'+int(k-tcell.KeyCtrlA)))
	}
	if ev.Key() == tcell.KeyCtrlSpace {
		return "ctrl+space"
	}
	return ""
}

// NormalizeKeyName maps user-written key names onto the names KeyName
// produces.
func NormalizeKeyName(name string) string {
	switch name {
	case " ":
		return "space"
	case "":
		return ""
	}
	if len([]rune(name)) == 1 {
		return name
	}
	lower := strings.ToLower(name)
	switch lower {
	case "pagedown", "pgdn", "page_down":
		return "pgdown"
	case "pageup", "page_up":
		return "pgup"
	case "escape":
		return "esc"
	case "return":
		return "enter"
	case "del":
		return "delete"
	case "backtab":
		return "shift+tab"
	}
	return lower
}

type keyString string

func (k keyString) String() string { return string(k) }
