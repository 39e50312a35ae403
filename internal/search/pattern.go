// Package search finds regular-expression matches in the decoded text of a
// file's lines.
package search

import (
	"errors"
	"fmt"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
	"golang.org/x/text/unicode/norm"

	"github.com/kk-code-lab/spage/internal/textutil"
)

// MatchTimeout bounds a single line match so a pathological pattern cannot
// stall the render loop.
const MatchTimeout = 200 * time.Millisecond

// ErrEmptyPattern is returned when compiling an empty pattern.
var ErrEmptyPattern = errors.New("search: empty pattern")

// Pattern is a compiled search pattern.
type Pattern struct {
	source      string
	re          *regexp2.Regexp
	insensitive bool
}

// Compile builds a pattern. Matching ignores case unless the pattern has
// an upper-case letter.
func Compile(pattern string) (*Pattern, error) {
	if pattern == "" {
		return nil, ErrEmptyPattern
	}
	normalized := norm.NFC.String(pattern)
	opts := regexp2.RegexOptions(regexp2.None)
	insensitive := smartCaseInsensitive(normalized)
	if insensitive {
		opts |= regexp2.IgnoreCase
	}
	re, err := regexp2.Compile(normalized, opts)
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", pattern, err)
	}
	re.MatchTimeout = MatchTimeout
	return &Pattern{source: pattern, re: re, insensitive: insensitive}, nil
}

func smartCaseInsensitive(query string) bool {
	for _, r := range query {
		if unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

// String returns the pattern as typed.
func (p *Pattern) String() string { return p.source }

// CaseInsensitive reports whether matching ignores case.
func (p *Pattern) CaseInsensitive() bool { return p.insensitive }

// Span is one match within a line. Start and End are byte offsets into the
// line text; StartCol and EndCol are display columns.
type Span struct {
	Start    int
	End      int
	StartCol int
	EndCol   int
}

// Spans returns every non-overlapping match in text, in order. A match that
// times out ends the scan of that line.
func (p *Pattern) Spans(text string) []Span {
	if text == "" {
		return nil
	}
	runes := []rune(text)
	offsets := byteOffsets(text, len(runes))

	var spans []Span
	m, err := p.re.FindRunesMatch(runes)
	for err == nil && m != nil {
		start := offsets[m.Index]
		end := offsets[m.Index+m.Length]
		startCol := textutil.DisplayWidth(text[:start])
		spans = append(spans, Span{
			Start:    start,
			End:      end,
			StartCol: startCol,
			EndCol:   startCol + textutil.DisplayWidth(text[start:end]),
		})
		m, err = p.re.FindNextMatch(m)
	}
	return spans
}

// byteOffsets maps rune indexes to byte offsets, with one extra entry for
// the end of text.
func byteOffsets(text string, n int) []int {
	offsets := make([]int, 0, n+1)
	for i := 0; i < len(text); {
		offsets = append(offsets, i)
		_, size := utf8.DecodeRuneInString(text[i:])
		i += size
	}
	return append(offsets, len(text))
}

// MergeSpans joins overlapping or touching spans, which must be sorted by
// start column.
func MergeSpans(spans []Span) []Span {
	if len(spans) == 0 {
		return nil
	}
	merged := make([]Span, 0, len(spans))
	current := spans[0]
	for _, next := range spans[1:] {
		if next.StartCol <= current.EndCol {
			if next.EndCol > current.EndCol {
				current.EndCol = next.EndCol
				current.End = next.End
			}
			continue
		}
		merged = append(merged, current)
		current = next
	}
	return append(merged, current)
}
