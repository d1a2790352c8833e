package engine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chojs23/enkai/internal/markers"
)

var ErrIncompleteResolution = errors.New("incomplete resolution")

// IncompleteResolutionError is returned when output is requested while some
// hunks still have no resolution.
type IncompleteResolutionError struct {
	Path       string
	Unresolved int
	Total      int
}

func (e *IncompleteResolutionError) Error() string {
	return fmt.Sprintf("%s: %v: %d of %d conflicts unresolved", e.Path, ErrIncompleteResolution, e.Unresolved, e.Total)
}

func (e *IncompleteResolutionError) Unwrap() error {
	return ErrIncompleteResolution
}

// IndexError reports a hunk index outside [0, Count).
type IndexError struct {
	Index int
	Count int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("conflict index %d out of bounds [0, %d)", e.Index, e.Count)
}

// ConflictedFile binds a file's original text to its parsed hunks and the
// resolution chosen for each. The hunk list never changes after parsing.
type ConflictedFile struct {
	path            string
	original        []byte
	lines           []string
	trailingNewline bool
	hunks           []markers.Hunk
	resolutions     []markers.Resolution
}

// NewConflictedFile parses data. Parse errors carry path.
func NewConflictedFile(path string, data []byte) (*ConflictedFile, error) {
	lines, trailing := markers.SplitLines(string(data))
	hunks, err := markers.ParseLines(lines)
	if err != nil {
		var pe *markers.ParseError
		if errors.As(err, &pe) {
			pe.Path = path
		}
		return nil, err
	}
	return &ConflictedFile{
		path:            path,
		original:        append([]byte(nil), data...),
		lines:           lines,
		trailingNewline: trailing,
		hunks:           hunks,
		resolutions:     make([]markers.Resolution, len(hunks)),
	}, nil
}

// LoadConflictedFile reads and parses the file at path.
func LoadConflictedFile(path string) (*ConflictedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return NewConflictedFile(path, data)
}

func (f *ConflictedFile) Path() string { return f.path }

// Name is the base name of the file.
func (f *ConflictedFile) Name() string { return filepath.Base(f.path) }

// Original returns the verbatim text the file was parsed from.
func (f *ConflictedFile) Original() []byte { return f.original }

func (f *ConflictedFile) Hunks() []markers.Hunk { return f.hunks }

func (f *ConflictedFile) HunkCount() int { return len(f.hunks) }

// Hunk returns the hunk at index i. It panics if i is out of range.
func (f *ConflictedFile) Hunk(i int) markers.Hunk { return f.hunks[i] }

// Resolution returns the resolution chosen for hunk i, or ResolutionUnset.
func (f *ConflictedFile) Resolution(i int) markers.Resolution {
	if i < 0 || i >= len(f.resolutions) {
		return markers.ResolutionUnset
	}
	return f.resolutions[i]
}

// SetResolution records r for hunk i.
func (f *ConflictedFile) SetResolution(i int, r markers.Resolution) error {
	if i < 0 || i >= len(f.hunks) {
		return &IndexError{Index: i, Count: len(f.hunks)}
	}
	if !r.Valid() {
		return fmt.Errorf("invalid resolution: %q", r)
	}
	f.resolutions[i] = r
	return nil
}

// ClearResolution unsets hunk i. Clearing an unset hunk is a no-op.
func (f *ConflictedFile) ClearResolution(i int) error {
	if i < 0 || i >= len(f.hunks) {
		return &IndexError{Index: i, Count: len(f.hunks)}
	}
	f.resolutions[i] = markers.ResolutionUnset
	return nil
}

// ApplyAll sets r on every hunk.
func (f *ConflictedFile) ApplyAll(r markers.Resolution) error {
	if !r.Valid() {
		return fmt.Errorf("invalid resolution: %q", r)
	}
	for i := range f.resolutions {
		f.resolutions[i] = r
	}
	return nil
}

func (f *ConflictedFile) ResolvedCount() int {
	n := 0
	for _, r := range f.resolutions {
		if r != markers.ResolutionUnset {
			n++
		}
	}
	return n
}

func (f *ConflictedFile) UnresolvedCount() int {
	return len(f.resolutions) - f.ResolvedCount()
}

// IsFullyResolved is vacuously true for a file without hunks.
func (f *ConflictedFile) IsFullyResolved() bool {
	return f.UnresolvedCount() == 0
}

// Reconstruct replays the original lines with every hunk replaced by its
// combined resolution. The original trailing-newline presence is kept.
func (f *ConflictedFile) Reconstruct() ([]byte, error) {
	if n := f.UnresolvedCount(); n > 0 {
		return nil, &IncompleteResolutionError{Path: f.path, Unresolved: n, Total: len(f.hunks)}
	}

	out := make([]string, 0, len(f.lines))
	next := 0
	for i, h := range f.hunks {
		out = append(out, f.lines[next:h.StartLine]...)
		out = append(out, markers.Combine(f.resolutions[i], h.Current, h.Incoming)...)
		next = h.EndLine + 1
	}
	out = append(out, f.lines[next:]...)

	return []byte(markers.JoinLines(out, f.trailingNewline)), nil
}

// PreviewLine is one line of the in-progress result. Hunk is the index of the
// hunk the line came from, or -1 for lines outside any hunk. A hunk resolved
// to no lines still yields one Elided line so it keeps a position.
type PreviewLine struct {
	Text     string
	Hunk     int
	Resolved bool
	Elided   bool
}

// Preview is Reconstruct with unresolved hunks left as their original marker
// block, for display while resolution is in progress.
func (f *ConflictedFile) Preview() []PreviewLine {
	out := make([]PreviewLine, 0, len(f.lines))
	plain := func(lines []string) {
		for _, l := range lines {
			out = append(out, PreviewLine{Text: l, Hunk: -1})
		}
	}

	next := 0
	for i, h := range f.hunks {
		plain(f.lines[next:h.StartLine])
		r := f.resolutions[i]
		lines := f.lines[h.StartLine : h.EndLine+1]
		if r != markers.ResolutionUnset {
			lines = markers.Combine(r, h.Current, h.Incoming)
			if len(lines) == 0 {
				out = append(out, PreviewLine{Hunk: i, Resolved: true, Elided: true})
			}
		}
		for _, l := range lines {
			out = append(out, PreviewLine{Text: l, Hunk: i, Resolved: r != markers.ResolutionUnset})
		}
		next = h.EndLine + 1
	}
	plain(f.lines[next:])
	return out
}
