// Package app wires sources, configuration and the terminal into a running
// pager.
package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/gdamore/tcell/v2"
	xterm "golang.org/x/term"
	"pkt.systems/pslog"

	"github.com/kk-code-lab/spage/internal/buffer"
	"github.com/kk-code-lab/spage/internal/config"
	"github.com/kk-code-lab/spage/internal/event"
	"github.com/kk-code-lab/spage/internal/progress"
	"github.com/kk-code-lab/spage/internal/source"
	"github.com/kk-code-lab/spage/internal/ui/input"
)

// Pager collects the inputs of one pager run. Sources start reading as
// soon as they are added.
type Pager struct {
	cfg    config.Config
	log    pslog.Logger
	keymap *input.Keymap
	files  *source.List
	events *event.Stream
	cache  *buffer.Cache

	stdout     io.Writer
	stderr     io.Writer
	getenv     func(string) string
	isTerminal func() bool
	termSize   func() (int, int, error)
	newScreen  func() (tcell.Screen, error)
}

// New validates cfg and prepares an empty pager.
func New(cfg config.Config, log pslog.Logger) (*Pager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if log == nil {
		log = pslog.Ctx(context.Background())
	}
	keymap := input.DefaultKeymap()
	if err := keymap.Apply(cfg.Keys); err != nil {
		return nil, fmt.Errorf("config: keys: %w", err)
	}
	stdoutFD := int(os.Stdout.Fd())
	return &Pager{
		cfg:        cfg,
		log:        log,
		keymap:     keymap,
		files:      source.NewList(),
		events:     event.NewStream(),
		cache:      buffer.NewCache(cfg.MemoryWarnBytes, log),
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		getenv:     os.Getenv,
		isTerminal: func() bool { return xterm.IsTerminal(stdoutFD) },
		termSize:   func() (int, int, error) { return xterm.GetSize(stdoutFD) },
		newScreen:  tcell.NewScreen,
	}, nil
}

func (p *Pager) sourceOptions() source.Options {
	return source.Options{Sender: p.events, Cache: p.cache, Log: p.log}
}

// AddOutputStream adds r as an output file and returns its id.
func (p *Pager) AddOutputStream(r io.Reader, title string) int {
	f := source.NewStream(p.files.NextID(), r, title, source.KindStream, p.sourceOptions())
	p.files.Add(f)
	return f.ID()
}

// AddErrorStream adds r as the error file of the most recently added output
// file.
func (p *Pager) AddErrorStream(r io.Reader, title string) error {
	if p.files.Len() == 0 {
		return source.ErrNoOutput
	}
	if _, ok := p.files.ErrorFile(p.files.At(p.files.Len() - 1).ID()); ok {
		return source.ErrHasErrorFile
	}
	f := source.NewStream(p.files.NextID(), r, title, source.KindStream, p.sourceOptions())
	return p.files.AttachError(f)
}

// AddOutputFile opens path as an output file. It is followed when
// follow_files is set.
func (p *Pager) AddOutputFile(path string) (int, error) {
	f, err := source.OpenDisk(p.files.NextID(), path, source.DiskOptions{Follow: p.cfg.FollowFiles}, p.sourceOptions())
	if err != nil {
		return 0, err
	}
	p.files.Add(f)
	return f.ID(), nil
}

// AddSubprocess starts name with args and adds its stdout as an output file
// with stderr as the linked error file.
func (p *Pager) AddSubprocess(name string, args []string, title string) (int, error) {
	outID := p.files.NextID()
	errID := p.files.NextID()
	out, errf, err := source.StartCommand(outID, errID, name, args, title, p.sourceOptions())
	if err != nil {
		return 0, err
	}
	p.files.Add(out)
	if err := p.files.Link(out.ID(), errf); err != nil {
		return 0, err
	}
	return out.ID(), nil
}

// SetProgressStream reads progress updates from r.
func (p *Pager) SetProgressStream(r io.Reader) {
	progress.Start(r, p.events, p.log.With("source", "progress"))
}

// Files returns the number of output files added so far.
func (p *Pager) Files() int { return p.files.Len() }
