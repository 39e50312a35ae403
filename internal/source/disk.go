package source

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

type encoding int

const (
	encodingPlain encoding = iota
	encodingUTF8BOM
	encodingUTF16LE
	encodingUTF16BE
)

func (e encoding) String() string {
	switch e {
	case encodingUTF8BOM:
		return "utf-8-bom"
	case encodingUTF16LE:
		return "utf-16le"
	case encodingUTF16BE:
		return "utf-16be"
	default:
		return "plain"
	}
}

func detectEncoding(head []byte) encoding {
	switch {
	case bytes.HasPrefix(head, []byte{0xEF, 0xBB, 0xBF}):
		return encodingUTF8BOM
	case bytes.HasPrefix(head, []byte{0xFF, 0xFE}):
		return encodingUTF16LE
	case bytes.HasPrefix(head, []byte{0xFE, 0xFF}):
		return encodingUTF16BE
	}
	return encodingPlain
}

// DiskOptions tunes a disk source.
type DiskOptions struct {
	// Follow keeps the source loading at EOF and reads data appended later.
	Follow bool
}

// OpenDisk opens path and starts reading it. Open errors are returned to the
// caller; read errors later mark the source Errored.
func OpenDisk(id int, path string, disk DiskOptions, opts Options) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	info, err := fh.Stat()
	if err != nil {
		_ = fh.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		_ = fh.Close()
		return nil, fmt.Errorf("open %s: is a directory", path)
	}

	head := make([]byte, 3)
	n, _ := io.ReadFull(fh, head)
	enc := detectEncoding(head[:n])
	skip := int64(0)
	if enc == encodingUTF8BOM {
		skip = 3
	}
	if _, err := fh.Seek(skip, io.SeekStart); err != nil {
		_ = fh.Close()
		return nil, fmt.Errorf("seek %s: %w", path, err)
	}

	f := newFile(id, filepath.Base(path), KindDisk, opts)
	if enc != encodingPlain {
		f.log.Debug("source encoding", "encoding", enc.String())
	}

	var r io.Reader = fh
	switch {
	case enc == encodingUTF16LE || enc == encodingUTF16BE:
		// Transcoded output has no stable mapping to file offsets, so a
		// UTF-16 file is read once even when following.
		r = readCloser{transform.NewReader(fh, unicode.BOMOverride(unicode.UTF8.NewDecoder())), fh}
		if disk.Follow {
			f.log.Info("follow disabled for transcoded file", "encoding", enc.String())
		}
	case disk.Follow:
		fr, err := newFollowReader(fh, path, skip)
		if err != nil {
			_ = fh.Close()
			return nil, err
		}
		r = fr
	}

	go run(f, r, opts)
	return f, nil
}

type readCloser struct {
	io.Reader
	io.Closer
}

// followReader reads a file like tail -f: at EOF it waits for the file to
// change instead of ending.
type followReader struct {
	fh      *os.File
	path    string
	watcher *fsnotify.Watcher
	offset  int64
}

func newFollowReader(fh *os.File, path string, offset int64) (*followReader, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	if err := w.Add(path); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	return &followReader{fh: fh, path: path, watcher: w, offset: offset}, nil
}

func (r *followReader) Read(p []byte) (int, error) {
	for {
		n, err := r.fh.Read(p)
		r.offset += int64(n)
		if n > 0 {
			return n, nil
		}
		if err != nil && err != io.EOF {
			return 0, err
		}
		if err := r.wait(); err != nil {
			return 0, err
		}
	}
}

// wait blocks until the file grows. It returns io.EOF once the file is
// removed or renamed.
func (r *followReader) wait() error {
	for {
		select {
		case ev, ok := <-r.watcher.Events:
			if !ok {
				return io.EOF
			}
			switch {
			case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
				return io.EOF
			case ev.Has(fsnotify.Write):
				info, err := r.fh.Stat()
				if err != nil {
					return err
				}
				if info.Size() < r.offset {
					return ErrTruncated
				}
				return nil
			case ev.Has(fsnotify.Chmod):
				// Unlinking a file that is still open only changes its
				// link count.
				if _, err := os.Stat(r.path); os.IsNotExist(err) {
					return io.EOF
				}
			}
		case err, ok := <-r.watcher.Errors:
			if !ok {
				return io.EOF
			}
			return fmt.Errorf("watch %s: %w", r.path, err)
		}
	}
}

func (r *followReader) Close() error {
	werr := r.watcher.Close()
	ferr := r.fh.Close()
	if werr != nil {
		return werr
	}
	return ferr
}
