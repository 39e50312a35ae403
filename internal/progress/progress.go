// Package progress reads completion updates from a side channel. Each line
// is "<fraction> [label]" where fraction is a decimal such as 0.42, a
// percentage such as 42%, or a count such as 12/40.
package progress

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"strings"

	"pkt.systems/pslog"

	"github.com/kk-code-lab/spage/internal/event"
	"github.com/kk-code-lab/spage/internal/textutil"
)

// maxLine bounds a single progress line.
const maxLine = 64 * 1024

// Parse reads one progress line. Malformed lines report false.
func Parse(line string) (event.ProgressUpdate, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return event.ProgressUpdate{}, false
	}
	head, label, _ := strings.Cut(line, " ")
	fraction, ok := parseFraction(head)
	if !ok {
		return event.ProgressUpdate{}, false
	}
	return event.ProgressUpdate{
		Fraction: fraction,
		Label:    textutil.SanitizeTerminalText(strings.TrimSpace(label)),
	}, true
}

func parseFraction(s string) (float64, bool) {
	var f float64
	switch {
	case strings.HasSuffix(s, "%"):
		v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		if err != nil {
			return 0, false
		}
		f = v / 100
	case strings.Contains(s, "/"):
		numStr, denStr, _ := strings.Cut(s, "/")
		num, err := strconv.ParseFloat(numStr, 64)
		if err != nil {
			return 0, false
		}
		den, err := strconv.ParseFloat(denStr, 64)
		if err != nil || den <= 0 {
			return 0, false
		}
		f = num / den
	default:
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = v
	}
	if f != f || f < 0 {
		return 0, false
	}
	if f > 1 {
		f = 1
	}
	return f, true
}

// Start reads updates from r on its own goroutine and forwards them to
// sender. When r ends, a finished update clears the bar.
func Start(r io.Reader, sender event.Sender, logger pslog.Logger) {
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	go func() {
		ignored, err := readLines(r, func(line []byte) bool {
			update, ok := Parse(string(line))
			if ok {
				sender.Send(update)
			}
			return ok
		})
		if err != nil {
			logger.Warn("progress stream failed", "err", err)
		}
		if ignored > 0 {
			logger.Debug("progress lines ignored", "count", ignored)
		}
		sender.Send(event.ProgressUpdate{Finished: true})
	}()
}

// readLines calls fn for every newline-terminated line of r, and for a final
// unterminated one. Lines longer than maxLine are skipped without buffering
// them and count as ignored, as do lines fn rejects.
func readLines(r io.Reader, fn func(line []byte) bool) (int, error) {
	reader := bufio.NewReaderSize(r, 4096)
	var line []byte
	overlong := false
	ignored := 0
	for {
		chunk, err := reader.ReadSlice('\n')
		switch {
		case overlong:
		case len(line)+len(chunk) > maxLine+1:
			overlong = true
			line = line[:0]
		default:
			line = append(line, chunk...)
		}
		if err == bufio.ErrBufferFull {
			continue
		}
		if overlong {
			ignored++
		} else if len(line) > 0 && !fn(line) {
			ignored++
		}
		line = line[:0]
		overlong = false
		if err == io.EOF {
			return ignored, nil
		}
		if err != nil {
			return ignored, err
		}
	}
}
