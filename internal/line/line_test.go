package line

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/kk-code-lab/spage/internal/buffer"
	"github.com/kk-code-lab/spage/internal/overstrike"
)

func newIndex(t *testing.T, chunks ...string) (*buffer.Buffer, *Index) {
	t.Helper()
	buf := buffer.New()
	for _, c := range chunks {
		if _, err := buf.Append([]byte(c)); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	idx := NewIndex(buf)
	idx.Update()
	return buf, idx
}

func TestIndexTwoTerminatedLines(t *testing.T) {
	buf, idx := newIndex(t, "abc\ndef\n")
	buf.End()
	idx.Update()

	if got := idx.LineCount(); got != 2 {
		t.Fatalf("LineCount = %d, want 2", got)
	}
	if idx.Pending() {
		t.Fatalf("no line should be pending")
	}
	for i, want := range []string{"abc\n", "def\n"} {
		b, status := idx.Bytes(i)
		if status != Available || string(b) != want {
			t.Fatalf("line %d = %q (%v), want %q", i, b, status, want)
		}
	}
	if _, status := idx.Bytes(2); status != OutOfRange {
		t.Fatalf("line 2 status = %v, want out-of-range", status)
	}
}

func TestIndexLinesPartitionBytes(t *testing.T) {
	chunks := []string{"al", "pha\nbe", "ta\n\ngam", "ma"}
	buf := buffer.New()
	idx := NewIndex(buf)
	for _, c := range chunks {
		if _, err := buf.Append([]byte(c)); err != nil {
			t.Fatalf("Append: %v", err)
		}
		idx.Update()
	}
	buf.End()
	idx.Update()

	var joined strings.Builder
	prevEnd := 0
	for i := 0; i < idx.LineCount(); i++ {
		start, end, status := idx.Range(i)
		if status != Available {
			t.Fatalf("line %d status %v", i, status)
		}
		if start != prevEnd {
			t.Fatalf("line %d starts at %d, previous ended at %d", i, start, prevEnd)
		}
		b, _ := idx.Bytes(i)
		joined.Write(b)
		prevEnd = end
	}
	if joined.String() != strings.Join(chunks, "") {
		t.Fatalf("lines do not reproduce input: %q", joined.String())
	}
	if idx.LineCount() != 4 {
		t.Fatalf("LineCount = %d, want 4", idx.LineCount())
	}
}

func TestIndexPendingLineGrows(t *testing.T) {
	buf, idx := newIndex(t, "one\ntw")
	if !idx.Pending() || idx.LineCount() != 2 || idx.Terminated() != 1 {
		t.Fatalf("pending=%v count=%d terminated=%d", idx.Pending(), idx.LineCount(), idx.Terminated())
	}
	if _, status := idx.Bytes(2); status != NotYet {
		t.Fatalf("line beyond loading data = %v, want not-yet", status)
	}

	if _, err := buf.Append([]byte("o\n")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if !idx.Update() {
		t.Fatalf("Update should report growth")
	}
	if idx.Pending() || idx.Terminated() != 2 {
		t.Fatalf("pending=%v terminated=%d after newline", idx.Pending(), idx.Terminated())
	}
	b, _ := idx.Bytes(1)
	if string(b) != "two\n" {
		t.Fatalf("line 1 = %q", b)
	}
	if idx.Update() {
		t.Fatalf("Update without new data should report no change")
	}
}

func TestIndexFinalUnterminatedLine(t *testing.T) {
	buf, idx := newIndex(t, "x\ny")
	buf.Fail(errors.New("pipe closed"))
	idx.Update()

	if idx.Pending() {
		t.Fatalf("errored buffer has no pending line")
	}
	if idx.LineCount() != 2 {
		t.Fatalf("LineCount = %d, want 2", idx.LineCount())
	}
	if b, _ := idx.Bytes(1); string(b) != "y" {
		t.Fatalf("final line = %q", b)
	}
	state, err := idx.State()
	if state != buffer.Errored || err == nil {
		t.Fatalf("State = %v, %v", state, err)
	}
}

func TestIndexRangesStayWithinCommittedBytes(t *testing.T) {
	buf := buffer.New()
	idx := NewIndex(buf)
	const lines = 2000

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < lines; i++ {
			text := fmt.Sprintf("line %d of the growing file\n", i)
			half := len(text) / 2
			for _, part := range []string{text[:half], text[half:]} {
				if _, err := buf.Append([]byte(part)); err != nil {
					t.Errorf("Append: %v", err)
					return
				}
			}
		}
		buf.End()
	}()

	check := func() {
		for i := 0; i < idx.LineCount(); i++ {
			start, end, status := idx.Range(i)
			if status != Available {
				t.Fatalf("line %d status = %v, want available", i, status)
			}
			if start > end || end > buf.Len() {
				t.Fatalf("line %d range [%d,%d) beyond committed %d", i, start, end, buf.Len())
			}
		}
	}
	for running := true; running; {
		select {
		case <-done:
			running = false
		default:
		}
		idx.Update()
		check()
	}
	idx.Update()
	check()

	if got := idx.LineCount(); got != lines {
		t.Fatalf("LineCount = %d, want %d", got, lines)
	}
	if idx.Pending() {
		t.Fatalf("ended buffer should not leave a pending line")
	}
	got, _ := idx.Bytes(lines - 1)
	if want := fmt.Sprintf("line %d of the growing file\n", lines-1); string(got) != want {
		t.Fatalf("last line = %q, want %q", got, want)
	}
}

func TestIndexLineAt(t *testing.T) {
	_, idx := newIndex(t, "ab\ncd\nef")
	cases := map[int]int{0: 0, 2: 0, 3: 1, 5: 1, 6: 2, 7: 2}
	for off, want := range cases {
		if got := idx.LineAt(off); got != want {
			t.Fatalf("LineAt(%d) = %d, want %d", off, got, want)
		}
	}
}

type countingDecoder struct {
	calls int
}

func (d *countingDecoder) decode(b []byte) []overstrike.Run {
	d.calls++
	return overstrike.Decode(b)
}

func TestCacheLayoutIsMemoized(t *testing.T) {
	buf, idx := newIndex(t, "abc\ndef\n")
	buf.End()
	idx.Update()
	dec := &countingDecoder{}
	c := NewCacheWithDecoder(16, dec.decode)
	c.SetWidth(10)

	first, status := c.Get(0, idx, 0)
	if status != Available {
		t.Fatalf("status %v", status)
	}
	second, _ := c.Get(0, idx, 0)
	if first != second {
		t.Fatalf("second Get returned a new layout")
	}
	if dec.calls != 1 {
		t.Fatalf("decoder called %d times, want 1", dec.calls)
	}
	if got := overstrike.Plain(first.Runs); got != "abc" {
		t.Fatalf("decoded = %q", got)
	}
}

func TestCacheWidthChangeDropsEntries(t *testing.T) {
	buf, idx := newIndex(t, "abcdefghij\n")
	buf.End()
	idx.Update()
	dec := &countingDecoder{}
	c := NewCacheWithDecoder(16, dec.decode)

	c.SetWidth(20)
	layout, _ := c.Get(0, idx, 0)
	if len(layout.Rows) != 1 {
		t.Fatalf("rows at width 20 = %d", len(layout.Rows))
	}

	c.SetWidth(4)
	if c.Len() != 0 {
		t.Fatalf("width change kept %d entries", c.Len())
	}
	layout, _ = c.Get(0, idx, 0)
	if len(layout.Rows) != 3 {
		t.Fatalf("rows at width 4 = %d, want 3", len(layout.Rows))
	}
	if dec.calls != 2 {
		t.Fatalf("decoder calls = %d, want 2", dec.calls)
	}

	// Switching back does not restore the old layout.
	c.SetWidth(20)
	c.Get(0, idx, 0)
	if dec.calls != 3 {
		t.Fatalf("decoder calls after returning to width 20 = %d, want 3", dec.calls)
	}

	c.SetWrap(WrapNone)
	if c.Len() != 0 {
		t.Fatalf("wrap change kept %d entries", c.Len())
	}
}

func TestCacheDoesNotStorePendingLine(t *testing.T) {
	buf, idx := newIndex(t, "done\npart")
	dec := &countingDecoder{}
	c := NewCacheWithDecoder(16, dec.decode)

	c.Get(0, idx, 1)
	c.Get(0, idx, 1)
	if dec.calls != 2 {
		t.Fatalf("pending line decoded %d times, want 2", dec.calls)
	}
	if c.Len() != 0 {
		t.Fatalf("pending line was cached")
	}

	if _, err := buf.Append([]byte("ial\n")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	idx.Update()
	layout, _ := c.Get(0, idx, 1)
	if got := overstrike.Plain(layout.Runs); got != "partial" {
		t.Fatalf("completed line = %q", got)
	}
	if c.Len() != 1 {
		t.Fatalf("completed line not cached")
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	buf, idx := newIndex(t, "a\nb\nc\n")
	buf.End()
	idx.Update()
	dec := &countingDecoder{}
	c := NewCacheWithDecoder(2, dec.decode)

	c.Get(0, idx, 0)
	c.Get(0, idx, 1)
	c.Get(0, idx, 0)
	c.Get(0, idx, 2) // evicts line 1
	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}
	calls := dec.calls
	c.Get(0, idx, 0)
	if dec.calls != calls {
		t.Fatalf("recently used line was evicted")
	}
	c.Get(0, idx, 1)
	if dec.calls != calls+1 {
		t.Fatalf("least recently used line was kept")
	}
}

func TestCacheKeysByFile(t *testing.T) {
	bufA, a := newIndex(t, "from a\n")
	bufB, b := newIndex(t, "from b\n")
	bufA.End()
	bufB.End()
	a.Update()
	b.Update()
	c := NewCache(8)

	la, _ := c.Get(0, a, 0)
	lb, _ := c.Get(1, b, 0)
	if overstrike.Plain(la.Runs) == overstrike.Plain(lb.Runs) {
		t.Fatalf("files share a cache entry")
	}
	c.Forget(0)
	if c.Len() != 1 {
		t.Fatalf("Forget left %d entries, want 1", c.Len())
	}
}

func TestCachePrefetchStopsAtMissingLines(t *testing.T) {
	_, idx := newIndex(t, "1\n2\n3\n")
	c := NewCache(8)
	if got := c.Prefetch(0, idx, 1, 10); got != 2 {
		t.Fatalf("Prefetch = %d, want 2", got)
	}
	if c.Len() != 2 {
		t.Fatalf("Len = %d after prefetch", c.Len())
	}
	if text, status := c.Text(0, idx, 2); status != Available || text != "3" {
		t.Fatalf("Text = %q, %v", text, status)
	}
}

func rowsText(l *Layout) []string {
	var out []string
	for _, r := range l.Rows {
		var b strings.Builder
		for _, c := range r.Cells {
			b.WriteString(c.Text)
		}
		out = append(out, b.String())
	}
	return out
}

func TestWrapModes(t *testing.T) {
	runs := overstrike.Decode([]byte("the quick brown fox"))
	tests := []struct {
		mode  WrapMode
		width int
		want  []string
	}{
		{WrapNone, 5, []string{"the quick brown fox"}},
		{WrapChar, 5, []string{"the q", "uick ", "brown", " fox"}},
		{WrapWord, 10, []string{"the quick ", "brown fox"}},
		{WrapWord, 4, []string{"the ", "quic", "k ", "brow", "n ", "fox"}},
		{WrapChar, 40, []string{"the quick brown fox"}},
	}
	for _, tt := range tests {
		got := rowsText(Wrap(runs, tt.width, tt.mode))
		if strings.Join(got, "|") != strings.Join(tt.want, "|") {
			t.Fatalf("Wrap(%v, %d) = %q, want %q", tt.mode, tt.width, got, tt.want)
		}
	}
}

func TestWrapWideGraphemes(t *testing.T) {
	runs := overstrike.Decode([]byte("日本語e\u0301"))
	layout := Wrap(runs, 3, WrapChar)
	got := rowsText(layout)
	want := []string{"日", "本", "語e\u0301"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("rows = %q, want %q", got, want)
	}
	if layout.Width != 7 {
		t.Fatalf("line width = %d, want 7", layout.Width)
	}
	last := layout.Rows[2].Cells[1]
	if last.Col != 6 || last.Width != 1 {
		t.Fatalf("combining cluster cell = %+v", last)
	}
}

func TestCellsKeepZeroWidthClusters(t *testing.T) {
	runs := overstrike.Decode([]byte("\u0301abc \x1b[1m\u200d\x1b[0mx"))
	cells := Cells(runs)

	var text strings.Builder
	for i, c := range cells {
		if c.Col != i || c.Width != 1 {
			t.Fatalf("cell %d = %+v, want col %d width 1", i, c, i)
		}
		text.WriteString(c.Text)
	}
	if len(cells) != 5 {
		t.Fatalf("cells = %d, want 5: %+v", len(cells), cells)
	}
	if got, want := text.String(), overstrike.Plain(runs); got != want {
		t.Fatalf("cell text = %q, want %q", got, want)
	}
	if cells[0].Text != "\u0301a" {
		t.Fatalf("leading mark should join the first cell, got %q", cells[0].Text)
	}
	if cells[3].Text != " \u200d" {
		t.Fatalf("styled joiner should join the space, got %q", cells[3].Text)
	}
}

func TestWrapEmptyLineKeepsOneRow(t *testing.T) {
	layout := Wrap(nil, 10, WrapWord)
	if len(layout.Rows) != 1 || len(layout.Rows[0].Cells) != 0 {
		t.Fatalf("empty line layout = %+v", layout.Rows)
	}
}

func TestParseWrap(t *testing.T) {
	for in, want := range map[string]WrapMode{"none": WrapNone, "char": WrapChar, "Word": WrapWord, "": WrapChar} {
		got, err := ParseWrap(in)
		if err != nil || got != want {
			t.Fatalf("ParseWrap(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseWrap("sideways"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}
