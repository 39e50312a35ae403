package logx

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"pkt.systems/pslog"
)

// Ctx returns the logger bound to the provided context.
func Ctx(ctx context.Context) pslog.Logger {
	return pslog.Ctx(ctx)
}

// WithFile annotates the logger with a source's id and title.
func WithFile(log pslog.Logger, id int, title string) pslog.Logger {
	log = log.With("file", id)
	if title != "" {
		log = log.With("title", title)
	}
	return log
}

// WithKind annotates the logger with a source kind.
func WithKind(log pslog.Logger, kind fmt.Stringer) pslog.Logger {
	if kind == nil {
		return log
	}
	return log.With("kind", kind.String())
}

// Open builds the process logger. The pager owns the terminal, so records
// go to path when set and are discarded otherwise. The returned closer
// releases the log file.
func Open(path, level string) (pslog.Logger, io.Closer, error) {
	opts := pslog.Options{
		Mode:    pslog.ModeStructured,
		NoColor: true,
	}
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		opts.MinLevel = pslog.TraceLevel
	case "debug":
		opts.MinLevel = pslog.DebugLevel
	case "", "info":
		opts.MinLevel = pslog.InfoLevel
	case "warn", "warning":
		opts.MinLevel = pslog.WarnLevel
	case "error":
		opts.MinLevel = pslog.ErrorLevel
	default:
		return nil, nil, fmt.Errorf("unknown log level %q", level)
	}

	if path == "" {
		return pslog.NewWithOptions(io.Discard, opts), io.NopCloser(nil), nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return pslog.NewWithOptions(f, opts), f, nil
}
