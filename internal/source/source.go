// Package source feeds bytes from files, streams and subprocesses into
// buffers. Every source runs one reader goroutine that appends to its
// Buffer and reports progress on the event stream.
package source

import (
	"context"
	"errors"
	"io"

	"pkt.systems/pslog"

	"github.com/kk-code-lab/spage/internal/buffer"
	"github.com/kk-code-lab/spage/internal/event"
	"github.com/kk-code-lab/spage/internal/logx"
)

// ChunkSize is the read size of a source's reader goroutine.
const ChunkSize = 64 * 1024

// ErrTruncated reports a followed file that shrank below the bytes already
// loaded.
var ErrTruncated = errors.New("source: file truncated")

// Kind is the closed set of source kinds.
type Kind int

const (
	KindDisk Kind = iota
	KindStream
	KindSubprocessOut
	KindSubprocessErr
)

func (k Kind) String() string {
	switch k {
	case KindDisk:
		return "disk"
	case KindStream:
		return "stream"
	case KindSubprocessOut:
		return "subprocess-out"
	case KindSubprocessErr:
		return "subprocess-err"
	default:
		return "unknown"
	}
}

// File is one source with its backing buffer.
type File struct {
	id    int
	title string
	kind  Kind
	buf   *buffer.Buffer
	log   pslog.Logger
}

func (f *File) ID() int                { return f.id }
func (f *File) Title() string          { return f.title }
func (f *File) Kind() Kind             { return f.kind }
func (f *File) Buffer() *buffer.Buffer { return f.buf }

// Options carries what every source needs to run.
type Options struct {
	Sender event.Sender
	Cache  *buffer.Cache
	Log    pslog.Logger
	// ChunkSize overrides the read size when positive.
	ChunkSize int
}

func (o Options) logger() pslog.Logger {
	if o.Log != nil {
		return o.Log
	}
	return pslog.Ctx(context.Background())
}

func newFile(id int, title string, kind Kind, opts Options) *File {
	var buf *buffer.Buffer
	if opts.Cache != nil {
		buf = opts.Cache.NewBuffer(id)
	} else {
		buf = buffer.New()
	}
	log := logx.WithKind(logx.WithFile(opts.logger(), id, title), kind)
	return &File{id: id, title: title, kind: kind, buf: buf, log: log}
}

// NewStream starts reading r into a new source of the given kind.
func NewStream(id int, r io.Reader, title string, kind Kind, opts Options) *File {
	f := newFile(id, title, kind, opts)
	go run(f, r, opts)
	return f
}

func run(f *File, r io.Reader, opts Options) {
	err := pump(f, r, opts)
	if closer, ok := r.(io.Closer); ok && f.kind == KindDisk {
		_ = closer.Close()
	}
	finish(f, err, opts.Sender)
}

// pump copies r into the buffer until EOF or an error. EOF yields nil.
func pump(f *File, r io.Reader, opts Options) error {
	size := opts.ChunkSize
	if size <= 0 {
		size = ChunkSize
	}
	chunk := make([]byte, size)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			if _, aerr := f.buf.Append(chunk[:n]); aerr != nil {
				return aerr
			}
			if opts.Sender != nil {
				opts.Sender.Send(event.DataAvailable{FileID: f.id})
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func finish(f *File, err error, sender event.Sender) {
	if err == nil {
		f.buf.End()
		f.log.Debug("source ended", "bytes", f.buf.Len())
		if sender != nil {
			sender.Send(event.StreamEnded{FileID: f.id})
		}
		return
	}
	f.buf.Fail(err)
	f.log.Warn("source failed", "err", err, "bytes", f.buf.Len())
	if sender != nil {
		sender.Send(event.StreamErrored{FileID: f.id, Err: err})
	}
}
