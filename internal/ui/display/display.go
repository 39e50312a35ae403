// Package display runs the pager's event loop: it consumes the merged event
// stream, updates the pager state and redraws the terminal.
package display

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"
	"pkt.systems/pslog"

	"github.com/kk-code-lab/spage/internal/config"
	"github.com/kk-code-lab/spage/internal/event"
	"github.com/kk-code-lab/spage/internal/line"
	"github.com/kk-code-lab/spage/internal/logx"
	"github.com/kk-code-lab/spage/internal/search"
	"github.com/kk-code-lab/spage/internal/source"
	"github.com/kk-code-lab/spage/internal/ui/input"
	"github.com/kk-code-lab/spage/internal/ui/prompt"
	"github.com/kk-code-lab/spage/internal/ui/render"
)

// Options are the collaborators of a Display besides the terminal, the
// event stream and the files.
type Options struct {
	Config        config.Config
	Keymap        *input.Keymap
	Theme         render.Theme
	SearchHistory *prompt.History
	GotoHistory   *prompt.History
	Log           pslog.Logger
	// Now is the clock used to pace redraws.
	Now func() time.Time
}

// Display owns the terminal while the pager runs.
type Display struct {
	term    tcell.Screen
	screen  *render.Screen
	events  *event.Stream
	files   *source.List
	cache   *line.Cache
	indexes map[int]*line.Index
	keymap  *input.Keymap
	theme   render.Theme
	cfg     config.Config
	log     pslog.Logger
	refresh *Refresh
	state   State

	searchHistory *prompt.History
	gotoHistory   *prompt.History
	searchDir     search.Direction

	ctx    context.Context
	width  int
	height int
	// resuming is set between a suspend and the matching resume.
	resuming bool
}

// New prepares a Display. The terminal must already be initialized.
func New(term tcell.Screen, events *event.Stream, files *source.List, opts Options) *Display {
	log := opts.Log
	if log == nil {
		log = pslog.Ctx(context.Background())
	}
	keymap := opts.Keymap
	if keymap == nil {
		keymap = input.DefaultKeymap()
	}
	cacheLines := opts.Config.LineCacheLines
	if cacheLines <= 0 {
		cacheLines = line.DefaultCacheLines
	}
	cfg := opts.Config
	d := &Display{
		term:          term,
		screen:        render.NewScreen(term),
		events:        events,
		files:         files,
		cache:         line.NewCache(cacheLines),
		indexes:       make(map[int]*line.Index),
		keymap:        keymap,
		theme:         opts.Theme,
		cfg:           cfg,
		log:           log,
		refresh:       NewRefresh(cfg.RefreshInterval, opts.Now),
		state:         newState(cfg.WrapMode(), cfg.LineNumbers, cfg.FollowFiles),
		searchHistory: opts.SearchHistory,
		gotoHistory:   opts.GotoHistory,
		ctx:           context.Background(),
	}
	d.cache.SetWrap(d.state.Wrap)
	d.width, d.height = term.Size()
	return d
}

// State returns a copy of the pager state.
func (d *Display) State() State { return d.state }

// Run processes events until the user quits or ctx is cancelled.
func (d *Display) Run(ctx context.Context) error {
	d.ctx = ctx
	stop := context.AfterFunc(ctx, func() {
		d.events.Send(event.Interrupt{Reason: "cancelled"})
	})
	defer stop()
	stopResume := d.watchResume()
	defer stopResume()

	d.log.Info("display started", "files", d.files.Len(), "width", d.width, "height", d.height)
	d.syncIndexes()
	d.render()

	for d.state.Mode != Exiting {
		ev, ok := d.events.Get(d.refresh.Timeout())
		redraw := false
		if ok {
			redraw = d.handle(ev)
			for d.state.Mode != Exiting {
				next, ok := d.events.TryGet()
				if !ok {
					break
				}
				redraw = d.handle(next) || redraw
			}
		}
		if ctx.Err() != nil {
			d.log.Info("display cancelled", "err", ctx.Err())
			d.state.Mode = Exiting
		}
		if d.state.Mode == Exiting {
			break
		}
		if redraw || d.refresh.Due() {
			d.render()
		}
	}
	d.log.Info("display stopped")
	return nil
}

// handle applies one event and reports whether it needs an immediate
// redraw. Data events instead mark the refresh as pending.
func (d *Display) handle(ev event.Event) bool {
	switch ev := ev.(type) {
	case event.KeyInput:
		return d.handleKey(ev.Key)
	case event.Resize:
		d.width, d.height = ev.Width, ev.Height
		d.screen.Invalidate()
		d.log.Debug("resize", "width", ev.Width, "height", ev.Height)
		return true
	case event.MouseInput:
		return d.handleMouse(ev.Mouse)
	case event.DataAvailable:
		d.dataChanged(ev.FileID)
		return false
	case event.StreamEnded:
		d.dataChanged(ev.FileID)
		d.fileLog(ev.FileID).Debug("stream ended")
		return d.visible(ev.FileID)
	case event.StreamErrored:
		d.dataChanged(ev.FileID)
		d.fileLog(ev.FileID).Warn("stream errored", "err", ev.Err)
		return d.visible(ev.FileID)
	case event.ProgressUpdate:
		if ev.Finished {
			d.state.Progress = nil
			return true
		}
		p := ev
		d.state.Progress = &p
		d.refresh.Data()
		return false
	case event.Interrupt:
		return d.interrupted(ev.Reason)
	}
	return false
}

func (d *Display) fileLog(id int) pslog.Logger {
	if f, ok := d.files.ByID(id); ok {
		return logx.WithFile(d.log, id, f.Title())
	}
	return d.log.With("file", id)
}

func (d *Display) interrupted(reason string) bool {
	switch reason {
	case "resume":
		if !d.resuming {
			return false
		}
		d.resuming = false
		if err := d.term.Resume(); err != nil {
			d.log.Error("terminal resume failed", "err", err)
			d.state.Mode = Exiting
			return false
		}
		d.term.EnableMouse()
		d.width, d.height = d.term.Size()
		d.screen.Sync()
		return true
	case "cancelled":
		d.state.Mode = Exiting
	}
	return false
}

// dataChanged brings the index of a file up to date and reacts to the new
// lines.
func (d *Display) dataChanged(id int) {
	idx := d.indexFor(id)
	if idx == nil || !idx.Update() {
		return
	}
	if s := d.state.Search; s != nil && s.Pending && s.FileID == id {
		d.resumeSearch()
	}
	if !d.visible(id) {
		return
	}
	if d.state.Follow {
		d.followEnd()
	}
	d.refresh.Data()
}

func (d *Display) indexFor(id int) *line.Index {
	if idx, ok := d.indexes[id]; ok {
		return idx
	}
	f, ok := d.files.ByID(id)
	if !ok {
		return nil
	}
	idx := line.NewIndex(f.Buffer())
	d.indexes[id] = idx
	return idx
}

func (d *Display) syncIndexes() {
	for _, out := range d.files.Outputs() {
		d.indexFor(out.ID()).Update()
		if ef, ok := d.files.ErrorFile(out.ID()); ok {
			d.indexFor(ef.ID()).Update()
		}
	}
	if d.state.Follow {
		d.followEnd()
	}
}

// current returns the file on screen: the active output file, or its error
// file when the error view is on.
func (d *Display) current() *source.File {
	out := d.files.At(d.state.Active)
	if out == nil {
		return nil
	}
	if d.state.ErrorView[out.ID()] {
		if ef, ok := d.files.ErrorFile(out.ID()); ok {
			return ef
		}
	}
	return out
}

func (d *Display) visible(id int) bool {
	f := d.current()
	return f != nil && f.ID() == id
}
