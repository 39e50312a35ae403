package app

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/muesli/termenv"

	"github.com/kk-code-lab/spage/internal/buffer"
	"github.com/kk-code-lab/spage/internal/config"
	"github.com/kk-code-lab/spage/internal/event"
	"github.com/kk-code-lab/spage/internal/history"
	"github.com/kk-code-lab/spage/internal/line"
	"github.com/kk-code-lab/spage/internal/ui/display"
	"github.com/kk-code-lab/spage/internal/ui/prompt"
	"github.com/kk-code-lab/spage/internal/ui/render"
)

// ErrNoTerminal reports that the terminal cannot be described.
var ErrNoTerminal = errors.New("app: TERM is not set")

// Run shows the files until the user quits or ctx is cancelled. Depending
// on interface_mode the content may instead be copied to stdout.
func (p *Pager) Run(ctx context.Context) error {
	mode, err := config.ParseInterfaceMode(string(p.cfg.InterfaceMode))
	if err != nil {
		return err
	}
	if mode != config.Direct && !p.isTerminal() {
		p.log.Debug("stdout is not a terminal, copying directly", "mode", string(mode))
		mode = config.Direct
	}
	p.log.Info("pager starting", "mode", string(mode), "files", p.files.Len())

	switch mode {
	case config.Direct:
		return p.runDirect(ctx)
	case config.Hybrid, config.Delayed:
		fits, err := p.waitForFit(ctx, mode == config.Delayed)
		if err != nil {
			return err
		}
		if fits {
			return p.runDirect(ctx)
		}
	}
	return p.runFullScreen(ctx)
}

// probe checks the terminal capabilities and initializes the screen.
func (p *Pager) probe() (tcell.Screen, render.Theme, error) {
	if runtime.GOOS != "windows" && p.getenv("TERM") == "" {
		return nil, render.Theme{}, ErrNoTerminal
	}
	screen, err := p.newScreen()
	if err != nil {
		return nil, render.Theme{}, fmt.Errorf("terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, render.Theme{}, fmt.Errorf("terminal init: %w", err)
	}
	profile := termenv.EnvColorProfile()
	p.log.Debug("terminal ready", "term", p.getenv("TERM"), "profile", profileName(profile))
	return screen, render.DefaultTheme(profile), nil
}

func profileName(p termenv.Profile) string {
	switch p {
	case termenv.Ascii:
		return "ascii"
	case termenv.ANSI:
		return "ansi"
	case termenv.ANSI256:
		return "ansi256"
	default:
		return "truecolor"
	}
}

func (p *Pager) runFullScreen(ctx context.Context) error {
	screen, theme, err := p.probe()
	if err != nil {
		return err
	}
	screen.EnableMouse()
	if err := flushConsoleInput(); err != nil {
		p.log.Debug("console input flush failed", "err", err)
	}

	searchHistory, gotoHistory, closeHistory := p.openHistories(ctx)
	defer closeHistory()

	d := display.New(screen, p.events, p.files, display.Options{
		Config:        p.cfg,
		Keymap:        p.keymap,
		Theme:         theme,
		SearchHistory: searchHistory,
		GotoHistory:   gotoHistory,
		Log:           p.log,
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		pollInput(screen, p.events)
	}()

	err = d.Run(ctx)
	// Fini makes PollEvent return nil, which ends the input goroutine.
	screen.Fini()
	<-done
	return err
}

// pollInput forwards terminal events until the screen is finalized.
func pollInput(screen tcell.Screen, events event.Sender) {
	for {
		ev := screen.PollEvent()
		if ev == nil {
			return
		}
		if e, ok := event.FromTerminal(ev); ok {
			events.Send(e)
		}
	}
}

// openHistories loads the prompt histories. Without a usable store they
// are kept in memory only.
func (p *Pager) openHistories(ctx context.Context) (*prompt.History, *prompt.History, func()) {
	var store prompt.Persister
	closeStore := func() {}
	if path := p.cfg.HistoryPath; path != "" {
		s, err := history.Open(ctx, path)
		if err != nil {
			p.log.Warn("history unavailable, keeping it in memory", "path", path, "err", err)
		} else {
			store = s
			closeStore = func() {
				if err := s.Close(); err != nil {
					p.log.Warn("history close failed", "err", err)
				}
			}
		}
	}
	return prompt.NewHistory(ctx, "search", store, p.log),
		prompt.NewHistory(ctx, "goto", store, p.log),
		closeStore
}

// waitForFit watches the files until they end within one screen, which
// reports true, or outgrow it, which reports false. With delayed set the
// wait also gives up after interface_delay.
func (p *Pager) waitForFit(ctx context.Context, delayed bool) (bool, error) {
	width, height, err := p.termSize()
	if err != nil || width < 1 || height < 1 {
		p.log.Debug("terminal size unknown, paging", "err", err)
		return false, nil
	}
	var deadline time.Time
	if delayed {
		deadline = time.Now().Add(p.cfg.InterfaceDelay)
	}

	m := newRowMeter(p, width)
	var lastProgress event.Event
	defer func() {
		if lastProgress != nil {
			p.events.Send(lastProgress)
		}
	}()
	stop := context.AfterFunc(ctx, func() {
		p.events.Send(event.Interrupt{Reason: "cancelled"})
	})
	defer stop()

	for {
		rows, ended := m.measure()
		if rows > height-1 {
			p.log.Debug("content outgrew the screen", "rows", rows, "height", height)
			return false, nil
		}
		if ended {
			return true, nil
		}
		timeout := time.Duration(-1)
		if delayed {
			timeout = time.Until(deadline)
			if timeout <= 0 {
				p.log.Debug("interface delay passed", "rows", rows)
				return false, nil
			}
		}
		ev, ok := p.events.Get(timeout)
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		if ok {
			if u, isProgress := ev.(event.ProgressUpdate); isProgress {
				lastProgress = u
			}
		}
	}
}

// rowMeter counts the screen rows the files need at a given width.
type rowMeter struct {
	p       *Pager
	cache   *line.Cache
	indexes map[int]*line.Index
	counted map[int]int
	rows    int
}

func newRowMeter(p *Pager, width int) *rowMeter {
	cache := line.NewCache(p.cfg.LineCacheLines)
	cache.SetWidth(width)
	cache.SetWrap(p.cfg.WrapMode())
	return &rowMeter{p: p, cache: cache, indexes: make(map[int]*line.Index), counted: make(map[int]int)}
}

// measure returns the rows needed so far and whether every file ended.
// Lines already counted are not laid out again, except a pending last
// line which may still grow.
func (m *rowMeter) measure() (int, bool) {
	ended := true
	pending := 0
	for _, f := range directFiles(m.p) {
		idx, ok := m.indexes[f.ID()]
		if !ok {
			idx = line.NewIndex(f.Buffer())
			m.indexes[f.ID()] = idx
		}
		idx.Update()
		if state, _ := idx.State(); state == buffer.Loading {
			ended = false
		}
		complete := idx.LineCount()
		if idx.Pending() {
			complete--
			pending += m.cache.Rows(f.ID(), idx, complete)
		}
		for i := m.counted[f.ID()]; i < complete; i++ {
			m.rows += m.cache.Rows(f.ID(), idx, i)
			m.counted[f.ID()] = i + 1
		}
	}
	return m.rows + pending, ended
}
