package source

import "errors"

var (
	// ErrNoOutput reports an error stream added before any output file.
	ErrNoOutput = errors.New("source: no output file to attach error stream to")
	// ErrHasErrorFile reports a second error stream for one output file.
	ErrHasErrorFile = errors.New("source: output file already has an error file")
)

// List holds the output files in display order and maps each to at most
// one companion error file. It is filled before the pager runs.
type List struct {
	outputs []*File
	byID    map[int]*File
	errors  map[int]*File
	owners  map[int]int
	nextID  int
}

// NewList returns an empty List.
func NewList() *List {
	return &List{
		byID:   make(map[int]*File),
		errors: make(map[int]*File),
		owners: make(map[int]int),
	}
}

// NextID reserves the next file id. Ids follow addition order.
func (l *List) NextID() int {
	id := l.nextID
	l.nextID++
	return id
}

// Add appends an output file.
func (l *List) Add(f *File) {
	l.outputs = append(l.outputs, f)
	l.byID[f.id] = f
}

// AttachError links f as the error file of the most recently added output.
func (l *List) AttachError(f *File) error {
	if len(l.outputs) == 0 {
		return ErrNoOutput
	}
	return l.Link(l.outputs[len(l.outputs)-1].id, f)
}

// Link sets f as the error file of the output with id outID.
func (l *List) Link(outID int, f *File) error {
	if _, ok := l.errors[outID]; ok {
		return ErrHasErrorFile
	}
	l.errors[outID] = f
	l.owners[f.id] = outID
	l.byID[f.id] = f
	return nil
}

// Len returns the number of output files.
func (l *List) Len() int { return len(l.outputs) }

// At returns the output file at display position i.
func (l *List) At(i int) *File {
	if i < 0 || i >= len(l.outputs) {
		return nil
	}
	return l.outputs[i]
}

// Outputs returns the output files in display order.
func (l *List) Outputs() []*File {
	return append([]*File(nil), l.outputs...)
}

// ByID returns any file, output or error, by id.
func (l *List) ByID(id int) (*File, bool) {
	f, ok := l.byID[id]
	return f, ok
}

// ErrorFile returns the error file linked to output outID.
func (l *List) ErrorFile(outID int) (*File, bool) {
	f, ok := l.errors[outID]
	return f, ok
}

// Owner returns the output id an error file belongs to. For an output file
// it returns its own id.
func (l *List) Owner(id int) int {
	if out, ok := l.owners[id]; ok {
		return out
	}
	return id
}

// Position returns the display position of output outID, or -1.
func (l *List) Position(outID int) int {
	for i, f := range l.outputs {
		if f.id == outID {
			return i
		}
	}
	return -1
}
