package overstrike

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/google/go-cmp/cmp"
)

var (
	plain     = tcell.StyleDefault
	bold      = tcell.StyleDefault.Bold(true)
	underline = tcell.StyleDefault.Underline(true)

	styleEqual = cmp.Comparer(func(a, b tcell.Style) bool { return a == b })
)

func TestDecodeOverstrike(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []Run
	}{
		{
			name: "plain text",
			in:   "hello",
			want: []Run{{Text: "hello", Style: plain}},
		},
		{
			name: "bold by repeat",
			in:   "a\bab",
			want: []Run{{Text: "a", Style: bold}, {Text: "b", Style: plain}},
		},
		{
			name: "underline prefix form",
			in:   "_\bx",
			want: []Run{{Text: "x", Style: underline}},
		},
		{
			name: "underline suffix form",
			in:   "x\b_",
			want: []Run{{Text: "x", Style: underline}},
		},
		{
			name: "bold and underline",
			in:   "_\bx\bx",
			want: []Run{{Text: "x", Style: bold.Underline(true)}},
		},
		{
			name: "later character wins",
			in:   "a\bb",
			want: []Run{{Text: "b", Style: plain}},
		},
		{
			name: "leading backspace is dropped",
			in:   "\bz",
			want: []Run{{Text: "z", Style: plain}},
		},
		{
			name: "carriage return and newline removed",
			in:   "ab\r\n",
			want: []Run{{Text: "ab", Style: plain}},
		},
		{
			name: "other control bytes removed",
			in:   "a\x01\x7fb",
			want: []Run{{Text: "ab", Style: plain}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decode([]byte(tt.in))
			if diff := cmp.Diff(tt.want, got, styleEqual); diff != "" {
				t.Fatalf("Decode(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestDecodeExpandsTabsToStops(t *testing.T) {
	got := Plain(Decode([]byte("ab\tc\td")))
	want := "ab      c       d"
	if got != want {
		t.Fatalf("tabs expanded to %q, want %q", got, want)
	}

	// Wide runes count two columns toward the next stop.
	got = Plain(Decode([]byte("世\tx")))
	if want := "世      x"; got != want {
		t.Fatalf("tabs after wide rune expanded to %q, want %q", got, want)
	}
}

func TestDecodeSGR(t *testing.T) {
	red := tcell.StyleDefault.Foreground(tcell.PaletteColor(1))
	got := Decode([]byte("\x1b[31mred\x1b[0m plain"))
	want := []Run{{Text: "red", Style: red}, {Text: " plain", Style: plain}}
	if diff := cmp.Diff(want, got, styleEqual); diff != "" {
		t.Fatalf("SGR mismatch (-want +got):\n%s", diff)
	}

	got = Decode([]byte("\x1b[38;2;10;20;30mx\x1b[m"))
	rgb := tcell.StyleDefault.Foreground(tcell.NewRGBColor(10, 20, 30))
	if diff := cmp.Diff([]Run{{Text: "x", Style: rgb}}, got, styleEqual); diff != "" {
		t.Fatalf("truecolor mismatch (-want +got):\n%s", diff)
	}

	got = Decode([]byte("\x1b[48;5;200;1mx"))
	indexed := tcell.StyleDefault.Background(tcell.PaletteColor(200)).Bold(true)
	if diff := cmp.Diff([]Run{{Text: "x", Style: indexed}}, got, styleEqual); diff != "" {
		t.Fatalf("indexed mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeStripsNonSGREscapes(t *testing.T) {
	tests := map[string]string{
		"cursor move":   "a\x1b[2Kb",
		"osc with bel":  "a\x1b]0;title\x07b",
		"osc with st":   "a\x1b]8;;http://x\x1b\\b",
		"two byte esc":  "a\x1b(Bb",
		"trailing esc":  "ab\x1b",
		"truncated csi": "ab\x1b[31",
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			if got := Plain(Decode([]byte(in))); got != "ab" {
				t.Fatalf("Plain(Decode(%q)) = %q, want %q", in, got, "ab")
			}
		})
	}
}

func TestDecodeMarksInvalidUTF8(t *testing.T) {
	got := Decode([]byte{'a', 0xff, 'b'})
	want := []Run{
		{Text: "a", Style: plain},
		{Text: "<FF>", Style: plain.Reverse(true)},
		{Text: "b", Style: plain},
	}
	if diff := cmp.Diff(want, got, styleEqual); diff != "" {
		t.Fatalf("invalid utf8 mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeIsDeterministic(t *testing.T) {
	in := []byte("\x1b[1mh\bhe\x1b[0m_\bl\tlo\xfe")
	first := Decode(in)
	for i := 0; i < 5; i++ {
		if diff := cmp.Diff(first, Decode(in), styleEqual); diff != "" {
			t.Fatalf("decode %d differs (-first +got):\n%s", i, diff)
		}
	}
}

func TestDecodeEmpty(t *testing.T) {
	if got := Decode(nil); got != nil {
		t.Fatalf("Decode(nil) = %#v, want nil", got)
	}
	if got := Plain(nil); got != "" {
		t.Fatalf("Plain(nil) = %q", got)
	}
}
