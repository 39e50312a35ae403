package search

import (
	"errors"
	"testing"

	"github.com/kk-code-lab/spage/internal/buffer"
	"github.com/kk-code-lab/spage/internal/line"
)

type fileLines struct {
	idx   *line.Index
	cache *line.Cache
}

func (f fileLines) Text(i int) (string, line.Status) {
	return f.cache.Text(0, f.idx, i)
}

func newLines(t *testing.T, data string, ended bool) (*buffer.Buffer, fileLines) {
	t.Helper()
	buf := buffer.New()
	if _, err := buf.Append([]byte(data)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if ended {
		buf.End()
	}
	idx := line.NewIndex(buf)
	idx.Update()
	return buf, fileLines{idx: idx, cache: line.NewCache(64)}
}

func TestFindForwardScenario(t *testing.T) {
	_, src := newLines(t, "abc\ndef\n", true)
	p, err := Compile("def")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	res := Find(src, 0, Position{Line: 0}, p, Forward)
	if res.Outcome != Found {
		t.Fatalf("outcome = %v, want found", res.Outcome)
	}
	if res.Match.Line != 1 || res.Match.Start != 0 || res.Match.End != 3 {
		t.Fatalf("match = %+v", res.Match)
	}
	if res.Match.StartCol != 0 || res.Match.EndCol != 3 {
		t.Fatalf("columns = %d..%d", res.Match.StartCol, res.Match.EndCol)
	}

	again := Find(src, 0, After(res.Match), p, Forward)
	if again.Outcome != NoMatch {
		t.Fatalf("repeat outcome = %v, want no-match", again.Outcome)
	}
}

func TestFindNotYetWhileLoading(t *testing.T) {
	buf, src := newLines(t, "one\ntwo\n", false)
	p, _ := Compile("three")

	res := Find(src, 7, Position{}, p, Forward)
	if res.Outcome != NotYet || res.Resume.Line != 2 {
		t.Fatalf("result = %+v, want not-yet at line 2", res)
	}

	if _, err := buf.Append([]byte("three\n")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	src.idx.Update()
	res = Find(src, 7, res.Resume, p, Forward)
	if res.Outcome != Found || res.Match.Line != 2 || res.Match.FileID != 7 {
		t.Fatalf("resumed result = %+v", res)
	}
}

func TestFindBackward(t *testing.T) {
	_, src := newLines(t, "foo 1\nbar\nfoo 2 foo 3\n", true)
	p, _ := Compile("foo")

	res := Find(src, 0, Position{Line: 2, Offset: 6}, p, Backward)
	if res.Outcome != Found || res.Match.Line != 2 || res.Match.Start != 0 {
		t.Fatalf("first backward = %+v", res)
	}
	res = Find(src, 0, Before(res.Match), p, Backward)
	if res.Outcome != Found || res.Match.Line != 0 {
		t.Fatalf("second backward = %+v", res)
	}
	res = Find(src, 0, Before(res.Match), p, Backward)
	if res.Outcome != NoMatch {
		t.Fatalf("third backward = %+v, want no-match", res)
	}
}

func TestFindRepeatsWithinLine(t *testing.T) {
	_, src := newLines(t, "ab ab ab\n", true)
	p, _ := Compile("ab")
	pos := Position{}
	var starts []int
	for {
		res := Find(src, 0, pos, p, Forward)
		if res.Outcome != Found {
			break
		}
		starts = append(starts, res.Match.Start)
		pos = After(res.Match)
	}
	if len(starts) != 3 || starts[0] != 0 || starts[1] != 3 || starts[2] != 6 {
		t.Fatalf("starts = %v", starts)
	}
}

func TestFindMatchesDecodedText(t *testing.T) {
	_, src := newLines(t, "h\bhe\bel\bll\blo\bo and \x1b[1mworld\x1b[0m\n", true)
	p, _ := Compile("hello and world")
	res := Find(src, 0, Position{}, p, Forward)
	if res.Outcome != Found || res.Match.Start != 0 {
		t.Fatalf("overstruck text not matched: %+v", res)
	}
}

func TestSmartCase(t *testing.T) {
	lower, _ := Compile("error")
	if !lower.CaseInsensitive() {
		t.Fatalf("lower-case pattern should ignore case")
	}
	if spans := lower.Spans("ERROR Error error"); len(spans) != 3 {
		t.Fatalf("insensitive spans = %d, want 3", len(spans))
	}

	mixed, _ := Compile("Error")
	if mixed.CaseInsensitive() {
		t.Fatalf("pattern with upper case should be case sensitive")
	}
	if spans := mixed.Spans("ERROR Error error"); len(spans) != 1 || spans[0].Start != 6 {
		t.Fatalf("sensitive spans = %+v", spans)
	}
}

func TestSpansUseByteOffsetsAndColumns(t *testing.T) {
	p, _ := Compile("b+")
	spans := p.Spans("日本 bb")
	if len(spans) != 1 {
		t.Fatalf("spans = %+v", spans)
	}
	sp := spans[0]
	if sp.Start != 7 || sp.End != 9 {
		t.Fatalf("byte range = %d..%d, want 7..9", sp.Start, sp.End)
	}
	if sp.StartCol != 5 || sp.EndCol != 7 {
		t.Fatalf("column range = %d..%d, want 5..7", sp.StartCol, sp.EndCol)
	}
}

func TestCompileNormalizesPattern(t *testing.T) {
	p, err := Compile("cafe\u0301")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if spans := p.Spans("un caf\u00e9"); len(spans) != 1 {
		t.Fatalf("decomposed pattern should match composed text, got %+v", spans)
	}
}

func TestCompileErrors(t *testing.T) {
	if _, err := Compile(""); !errors.Is(err, ErrEmptyPattern) {
		t.Fatalf("empty pattern err = %v", err)
	}
	if _, err := Compile("(unclosed"); err == nil {
		t.Fatalf("expected error for invalid pattern")
	}
}

func TestMergeSpans(t *testing.T) {
	got := MergeSpans([]Span{
		{StartCol: 0, EndCol: 2},
		{StartCol: 1, EndCol: 4},
		{StartCol: 4, EndCol: 5},
		{StartCol: 7, EndCol: 8},
	})
	if len(got) != 2 || got[0].EndCol != 5 || got[1].StartCol != 7 {
		t.Fatalf("merged = %+v", got)
	}
}

func TestDirectionReverse(t *testing.T) {
	if Forward.Reverse() != Backward || Backward.Reverse() != Forward {
		t.Fatalf("Reverse broken")
	}
}
