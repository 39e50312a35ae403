package app

import (
	"context"
	"fmt"
	"io"

	"github.com/kk-code-lab/spage/internal/buffer"
	"github.com/kk-code-lab/spage/internal/event"
	"github.com/kk-code-lab/spage/internal/source"
)

// directFiles lists every output file followed by its error file.
func directFiles(p *Pager) []*source.File {
	var files []*source.File
	for _, out := range p.files.Outputs() {
		files = append(files, out)
		if ef, ok := p.files.ErrorFile(out.ID()); ok {
			files = append(files, ef)
		}
	}
	return files
}

// runDirect copies output files to stdout one after another and error
// files to stderr as their data arrives, until everything ended.
func (p *Pager) runDirect(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		p.events.Send(event.Interrupt{Reason: "cancelled"})
	})
	defer stop()

	c := &copier{p: p, offsets: make(map[int]int), reported: make(map[int]bool)}
	for {
		done, err := c.flush()
		if err != nil {
			return err
		}
		if done {
			p.log.Debug("direct copy finished", "files", len(c.offsets))
			return nil
		}
		p.events.Get(-1)
		if ctx.Err() != nil {
			p.log.Info("direct copy cancelled")
			return nil
		}
	}
}

type copier struct {
	p        *Pager
	offsets  map[int]int
	reported map[int]bool
	// current is the position of the output file being copied.
	current int
}

// flush writes all new data and reports whether every file ended.
func (c *copier) flush() (bool, error) {
	errorsDone := true
	for _, out := range c.p.files.Outputs() {
		ef, ok := c.p.files.ErrorFile(out.ID())
		if !ok {
			continue
		}
		finished, err := c.copy(ef, c.p.stderr)
		if err != nil {
			return false, err
		}
		errorsDone = errorsDone && finished
	}
	for c.current < c.p.files.Len() {
		finished, err := c.copy(c.p.files.At(c.current), c.p.stdout)
		if err != nil {
			return false, err
		}
		if !finished {
			return false, nil
		}
		c.current++
	}
	return errorsDone, nil
}

// copy writes the bytes of f not written yet and reports whether f ended.
func (c *copier) copy(f *source.File, w io.Writer) (bool, error) {
	buf := f.Buffer()
	// The state is read first so that an ended buffer's length is final.
	state, cause := buf.State()
	n := buf.Len()
	if off := c.offsets[f.ID()]; n > off {
		data, err := buf.ReadRange(off, n)
		if err != nil {
			return false, fmt.Errorf("read %s: %w", f.Title(), err)
		}
		if _, err := w.Write(data); err != nil {
			return false, fmt.Errorf("write %s: %w", f.Title(), err)
		}
		c.offsets[f.ID()] = n
	}
	switch state {
	case buffer.Loading:
		return false, nil
	case buffer.Errored:
		if !c.reported[f.ID()] {
			c.reported[f.ID()] = true
			fmt.Fprintf(c.p.stderr, "spage: error reading %s: %v\n", f.Title(), cause)
		}
	}
	return true, nil
}
