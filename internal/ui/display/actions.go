package display

import (
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/kk-code-lab/spage/internal/search"
	"github.com/kk-code-lab/spage/internal/ui/input"
	"github.com/kk-code-lab/spage/internal/ui/prompt"
)

const wheelRows = 3

func (d *Display) handleKey(ev *tcell.EventKey) bool {
	switch d.state.Mode {
	case Searching, Prompting:
		return d.promptKey(ev)
	case Exiting:
		return false
	}
	if d.state.Help {
		return d.helpKey(ev)
	}

	d.state.Message = ""
	action, ok := d.keymap.Lookup(ev)
	if !ok {
		return true
	}
	d.log.Debug("action", "action", action.String())
	d.apply(action)
	return true
}

// apply runs an action in Viewing mode.
func (d *Display) apply(action input.Action) {
	g := d.layout()
	page := max(g.contentRows, 1)
	half := max(page/2, 1)

	switch action {
	case input.ActionQuit:
		d.state.Mode = Exiting
	case input.ActionScrollDown:
		d.scroll(1)
	case input.ActionScrollUp:
		d.scroll(-1)
	case input.ActionPageDown:
		d.scroll(page)
	case input.ActionPageUp:
		d.scroll(-page)
	case input.ActionHalfPageDown:
		d.scroll(half)
	case input.ActionHalfPageUp:
		d.scroll(-half)
	case input.ActionScrollLeft:
		d.scrollHorizontal(-max(g.textWidth/2, 1))
	case input.ActionScrollRight:
		d.scrollHorizontal(max(g.textWidth/2, 1))
	case input.ActionTop:
		d.jumpTop()
	case input.ActionBottom:
		d.jumpBottom()
	case input.ActionGoToLine:
		d.openPrompt(Prompting, prompt.NewNumeric(":", d.gotoHistory))
	case input.ActionSearchForward:
		d.searchDir = search.Forward
		d.openPrompt(Searching, prompt.New("/", d.searchHistory))
	case input.ActionSearchBackward:
		d.searchDir = search.Backward
		d.openPrompt(Searching, prompt.New("?", d.searchHistory))
	case input.ActionNextMatch:
		d.findNext(false)
	case input.ActionPrevMatch:
		d.findNext(true)
	case input.ActionToggleErrors:
		d.toggleErrorView()
	case input.ActionNextFile:
		d.switchFile(1)
	case input.ActionPrevFile:
		d.switchFile(-1)
	case input.ActionToggleLineNumbers:
		d.state.LineNumbers = !d.state.LineNumbers
	case input.ActionToggleWrap:
		d.state.Wrap = nextWrap(d.state.Wrap)
		d.cache.SetWrap(d.state.Wrap)
		d.state.Message = "wrap: " + d.state.Wrap.String()
		d.scroll(0)
	case input.ActionToggleFollow:
		d.state.Follow = !d.state.Follow
		if d.state.Follow {
			d.followEnd()
			d.state.Message = "following end of file"
		} else {
			d.state.Message = "follow off"
		}
	case input.ActionRedraw:
		d.screen.Sync()
	case input.ActionSuspend:
		d.suspend()
	case input.ActionHelp:
		d.state.Help = true
		d.state.HelpScroll = 0
	}
}

func (d *Display) openPrompt(mode Mode, p *prompt.Prompt) {
	d.state.Mode = mode
	d.state.Prompt = p
}

func (d *Display) promptKey(ev *tcell.EventKey) bool {
	p := d.state.Prompt
	switch p.HandleKey(ev) {
	case prompt.Submitted:
		mode := d.state.Mode
		value := p.Value()
		d.state.Mode = Viewing
		d.state.Prompt = nil
		if value != "" {
			p.Commit(d.ctx)
		}
		if mode == Searching {
			d.startSearch(value, d.searchDir)
		} else {
			d.gotoLine(value)
		}
	case prompt.Cancelled:
		d.state.Mode = Viewing
		d.state.Prompt = nil
	}
	return true
}

func (d *Display) helpKey(ev *tcell.EventKey) bool {
	name := input.KeyName(ev)
	action, _ := d.keymap.Lookup(ev)
	switch {
	case name == "esc" || action == input.ActionHelp || action == input.ActionQuit:
		d.state.Help = false
	case action == input.ActionScrollDown || action == input.ActionPageDown || action == input.ActionHalfPageDown:
		d.state.HelpScroll = min(d.state.HelpScroll+1, max(len(d.keymap.Help())-1, 0))
	case action == input.ActionScrollUp || action == input.ActionPageUp || action == input.ActionHalfPageUp:
		d.state.HelpScroll = max(d.state.HelpScroll-1, 0)
	default:
		return false
	}
	return true
}

func (d *Display) handleMouse(ev *tcell.EventMouse) bool {
	if d.state.Help || d.state.Mode != Viewing {
		return false
	}
	buttons := ev.Buttons()
	switch {
	case buttons&tcell.WheelUp != 0:
		d.scroll(-wheelRows)
	case buttons&tcell.WheelDown != 0:
		d.scroll(wheelRows)
	default:
		return false
	}
	return true
}

func (d *Display) gotoLine(value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		d.state.Message = "invalid line number: " + value
		return
	}
	f := d.current()
	if f == nil {
		return
	}
	g := d.layout()
	c := d.cursorFor(f)
	count := c.lines()
	target := n - 1
	if target >= count {
		if c.idx.Loading() {
			d.state.Message = "line " + value + " is not loaded yet"
		} else {
			d.state.Message = "file has only " + strconv.Itoa(count) + " lines"
		}
		target = max(count-1, 0)
	}
	v := d.state.view(f.ID())
	v.Top = Position{Line: target}
	d.state.Follow = false
	d.clamp(c, v, g)
}

func (d *Display) toggleErrorView() {
	out := d.files.At(d.state.Active)
	if out == nil {
		return
	}
	if _, ok := d.files.ErrorFile(out.ID()); !ok {
		d.state.Message = "no error output for " + out.Title()
		return
	}
	d.state.ErrorView[out.ID()] = !d.state.ErrorView[out.ID()]
	if d.state.Follow {
		d.followEnd()
	}
}

func (d *Display) switchFile(delta int) {
	n := d.files.Len()
	if n < 2 {
		d.state.Message = "no other file"
		return
	}
	d.state.Active = ((d.state.Active+delta)%n + n) % n
	if d.state.Follow {
		d.followEnd()
	}
}
