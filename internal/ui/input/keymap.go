// Package input maps terminal key presses onto pager actions.
package input

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/gdamore/tcell/v2"
)

// Action is a command bound to one or more keys.
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionScrollUp
	ActionScrollDown
	ActionScrollLeft
	ActionScrollRight
	ActionPageUp
	ActionPageDown
	ActionHalfPageUp
	ActionHalfPageDown
	ActionTop
	ActionBottom
	ActionGoToLine
	ActionSearchForward
	ActionSearchBackward
	ActionNextMatch
	ActionPrevMatch
	ActionToggleErrors
	ActionNextFile
	ActionPrevFile
	ActionToggleLineNumbers
	ActionToggleWrap
	ActionToggleFollow
	ActionRedraw
	ActionSuspend
	ActionHelp
	actionCount
)

var actionNames = [actionCount]string{
	ActionNone:              "none",
	ActionQuit:              "quit",
	ActionScrollUp:          "scroll_up",
	ActionScrollDown:        "scroll_down",
	ActionScrollLeft:        "scroll_left",
	ActionScrollRight:       "scroll_right",
	ActionPageUp:            "page_up",
	ActionPageDown:          "page_down",
	ActionHalfPageUp:        "half_page_up",
	ActionHalfPageDown:      "half_page_down",
	ActionTop:               "top",
	ActionBottom:            "bottom",
	ActionGoToLine:          "goto_line",
	ActionSearchForward:     "search_forward",
	ActionSearchBackward:    "search_backward",
	ActionNextMatch:         "next_match",
	ActionPrevMatch:         "prev_match",
	ActionToggleErrors:      "toggle_errors",
	ActionNextFile:          "next_file",
	ActionPrevFile:          "prev_file",
	ActionToggleLineNumbers: "toggle_line_numbers",
	ActionToggleWrap:        "toggle_wrap",
	ActionToggleFollow:      "toggle_follow",
	ActionRedraw:            "redraw",
	ActionSuspend:           "suspend",
	ActionHelp:              "help",
}

func (a Action) String() string {
	if a < 0 || a >= actionCount {
		return fmt.Sprintf("action(%d)", int(a))
	}
	return actionNames[a]
}

// ParseAction resolves a configuration name such as "page_down". Dashes are
// accepted in place of underscores.
func ParseAction(name string) (Action, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	for a := ActionQuit; a < actionCount; a++ {
		if actionNames[a] == normalized {
			return a, nil
		}
	}
	return ActionNone, fmt.Errorf("unknown action %q", name)
}

// Keymap binds key names to actions.
type Keymap struct {
	bindings [actionCount]key.Binding
}

// DefaultKeymap returns the built-in bindings.
func DefaultKeymap() *Keymap {
	km := &Keymap{}
	set := func(a Action, help, desc string, keys ...string) {
		km.bindings[a] = key.NewBinding(key.WithKeys(keys...), key.WithHelp(help, desc))
	}
	set(ActionQuit, "q", "quit", "q", "Q", "ctrl+c")
	set(ActionScrollDown, "j/↓", "down one line", "j", "down", "enter", "ctrl+n", "ctrl+e")
	set(ActionScrollUp, "k/↑", "up one line", "k", "up", "ctrl+p", "y", "ctrl+y")
	set(ActionScrollLeft, "←", "scroll left", "left")
	set(ActionScrollRight, "→", "scroll right", "right")
	set(ActionPageDown, "space", "page down", "space", "pgdown", "f", "ctrl+f")
	set(ActionPageUp, "b", "page up", "b", "pgup", "ctrl+b")
	set(ActionHalfPageDown, "d", "half page down", "d", "ctrl+d")
	set(ActionHalfPageUp, "u", "half page up", "u", "ctrl+u")
	set(ActionTop, "g", "first line", "g", "home", "<")
	set(ActionBottom, "G", "last line", "G", "end", ">")
	set(ActionGoToLine, ":", "go to line", ":")
	set(ActionSearchForward, "/", "search forward", "/")
	set(ActionSearchBackward, "?", "search backward", "?")
	set(ActionNextMatch, "n", "next match", "n")
	set(ActionPrevMatch, "N", "previous match", "N")
	set(ActionToggleErrors, "e", "toggle error output", "e", "E")
	set(ActionNextFile, "]", "next file", "]", "tab")
	set(ActionPrevFile, "[", "previous file", "[", "shift+tab")
	set(ActionToggleLineNumbers, "#", "line numbers", "#")
	set(ActionToggleWrap, "w", "wrap mode", "w", "\\")
	set(ActionToggleFollow, "F", "follow end", "F")
	set(ActionRedraw, "r", "redraw", "r", "ctrl+l")
	set(ActionSuspend, "ctrl+z", "suspend", "ctrl+z")
	set(ActionHelp, "h", "help", "h", "f1")
	return km
}

// Apply replaces the keys of the named actions. A name mapped to an empty
// list unbinds the action. Keys taken over by an override are removed from
// the actions that had them by default.
func (km *Keymap) Apply(overrides map[string][]string) error {
	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		action, err := ParseAction(name)
		if err != nil {
			return err
		}
		keys := make([]string, 0, len(overrides[name]))
		for _, k := range overrides[name] {
			if n := NormalizeKeyName(k); n != "" {
				keys = append(keys, n)
			}
		}
		for a := ActionQuit; a < actionCount; a++ {
			if a != action {
				km.release(a, keys)
			}
		}
		b := km.bindings[action]
		b.SetKeys(keys...)
		b.SetEnabled(len(keys) > 0)
		km.bindings[action] = b
	}
	return nil
}

func (km *Keymap) release(a Action, taken []string) {
	b := km.bindings[a]
	current := b.Keys()
	kept := current[:0:0]
	for _, k := range current {
		if !contains(taken, k) {
			kept = append(kept, k)
		}
	}
	if len(kept) == len(current) {
		return
	}
	b.SetKeys(kept...)
	b.SetEnabled(len(kept) > 0)
	km.bindings[a] = b
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Lookup returns the action bound to ev.
func (km *Keymap) Lookup(ev *tcell.EventKey) (Action, bool) {
	return km.LookupName(KeyName(ev))
}

// LookupName returns the action bound to a key name.
func (km *Keymap) LookupName(name string) (Action, bool) {
	if name == "" {
		return ActionNone, false
	}
	k := keyString(name)
	for a := ActionQuit; a < actionCount; a++ {
		if key.Matches(k, km.bindings[a]) {
			return a, true
		}
	}
	return ActionNone, false
}

// Binding returns the binding for an action.
func (km *Keymap) Binding(a Action) key.Binding {
	if a <= ActionNone || a >= actionCount {
		return key.Binding{}
	}
	return km.bindings[a]
}

// HelpEntry is one line of the help overlay.
type HelpEntry struct {
	Action Action
	Keys   string
	Desc   string
}

// Help lists enabled bindings in action order. Keys shows every bound key.
func (km *Keymap) Help() []HelpEntry {
	var out []HelpEntry
	for a := ActionQuit; a < actionCount; a++ {
		b := km.bindings[a]
		if !b.Enabled() {
			continue
		}
		out = append(out, HelpEntry{
			Action: a,
			Keys:   strings.Join(b.Keys(), " "),
			Desc:   b.Help().Desc,
		})
	}
	return out
}
