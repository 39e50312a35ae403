// Package render turns pager state into frames of styled cells and writes
// the difference between consecutive frames to the terminal.
package render

import "github.com/gdamore/tcell/v2"

// Cell is one screen cell. Text holds a whole grapheme cluster. A cell with
// Width 0 is covered by the wide cell to its left.
type Cell struct {
	Text  string
	Style tcell.Style
	Width int
}

var blank = Cell{Text: " ", Style: tcell.StyleDefault, Width: 1}

// Frame is a grid of cells plus the cursor position.
type Frame struct {
	Width  int
	Height int
	cells  []Cell

	CursorX    int
	CursorY    int
	ShowCursor bool
}

// NewFrame returns a blank frame.
func NewFrame(width, height int) *Frame {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	f := &Frame{Width: width, Height: height, cells: make([]Cell, width*height)}
	for i := range f.cells {
		f.cells[i] = blank
	}
	return f
}

// At returns the cell at x, y. Cells outside the frame read as blank.
func (f *Frame) At(x, y int) Cell {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return blank
	}
	return f.cells[y*f.Width+x]
}

// Set stores a cluster at x, y. A wide cluster that does not fit before the
// right edge is replaced by a space. Returns the column after the cluster.
func (f *Frame) Set(x, y int, text string, style tcell.Style, width int) int {
	if y < 0 || y >= f.Height || x < 0 || x >= f.Width {
		return x + width
	}
	if width < 1 {
		width = 1
	}
	if x+width > f.Width {
		for ; x < f.Width; x++ {
			f.cells[y*f.Width+x] = Cell{Text: " ", Style: style, Width: 1}
		}
		return x
	}
	f.cells[y*f.Width+x] = Cell{Text: text, Style: style, Width: width}
	for i := 1; i < width; i++ {
		f.cells[y*f.Width+x+i] = Cell{Style: style}
	}
	return x + width
}

// FillRow paints row y from column x to the right edge with spaces.
func (f *Frame) FillRow(x, y int, style tcell.Style) {
	for ; x < f.Width; x++ {
		f.Set(x, y, " ", style, 1)
	}
}

// Change is a cell that differs from the previous frame.
type Change struct {
	X, Y int
	Cell Cell
}

// Diff lists the cells of next that differ from prev in row-major order. A
// nil prev or a size change reports every cell of next.
func Diff(prev, next *Frame) []Change {
	full := prev == nil || prev.Width != next.Width || prev.Height != next.Height
	var changes []Change
	for y := 0; y < next.Height; y++ {
		for x := 0; x < next.Width; x++ {
			c := next.cells[y*next.Width+x]
			if !full && prev.cells[y*next.Width+x] == c {
				continue
			}
			changes = append(changes, Change{X: x, Y: y, Cell: c})
		}
	}
	return changes
}
