package gitutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sourcegraph/go-diff/diff"
)

type LineKind int

const (
	LineContext LineKind = iota
	LineAdded
	LineDeleted
	LineHunk
	LineNote
)

type DiffLine struct {
	Kind LineKind
	Text string
}

// FileDiff is a single file's diff flattened for display.
type FileDiff struct {
	Path    string
	Lines   []DiffLine
	Added   int
	Deleted int
	Binary  bool
}

func (d *FileDiff) Empty() bool { return len(d.Lines) == 0 && !d.Binary }

// Diff returns the change recorded for st: the index side for staged-only
// entries, the worktree side otherwise. Untracked files show as fully added.
func (r *Repo) Diff(ctx context.Context, st FileStatus) (*FileDiff, error) {
	if st.Untracked() {
		return r.untrackedDiff(st.Path)
	}

	args := []string{"diff", "--no-color", "--no-ext-diff"}
	if st.Section() == SectionStaged {
		args = append(args, "--cached")
	}
	args = append(args, "--", st.Path)

	out, err := r.git(ctx, args...)
	if err != nil {
		return nil, err
	}
	fd, err := ParseUnifiedDiff(out)
	if err != nil {
		return nil, fmt.Errorf("parse diff of %s: %w", st.Path, err)
	}
	fd.Path = st.Path
	return fd, nil
}

// ParseUnifiedDiff flattens the first file of a unified diff.
func ParseUnifiedDiff(data []byte) (*FileDiff, error) {
	files, err := diff.ParseMultiFileDiff(data)
	if err != nil {
		return nil, err
	}
	out := &FileDiff{}
	if len(files) == 0 {
		return out, nil
	}

	fd := files[0]
	out.Path = strings.TrimPrefix(fd.NewName, "b/")
	for _, ext := range fd.Extended {
		if strings.HasPrefix(ext, "Binary files") {
			out.Binary = true
			out.Lines = append(out.Lines, DiffLine{Kind: LineNote, Text: ext})
		}
	}

	for _, h := range fd.Hunks {
		header := fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.OrigStartLine, h.OrigLines, h.NewStartLine, h.NewLines)
		if h.Section != "" {
			header += " " + h.Section
		}
		out.Lines = append(out.Lines, DiffLine{Kind: LineHunk, Text: header})

		body := strings.TrimSuffix(string(h.Body), "\n")
		for _, line := range strings.Split(body, "\n") {
			switch {
			case strings.HasPrefix(line, "+"):
				out.Added++
				out.Lines = append(out.Lines, DiffLine{Kind: LineAdded, Text: line[1:]})
			case strings.HasPrefix(line, "-"):
				out.Deleted++
				out.Lines = append(out.Lines, DiffLine{Kind: LineDeleted, Text: line[1:]})
			case strings.HasPrefix(line, `\`):
				out.Lines = append(out.Lines, DiffLine{Kind: LineNote, Text: line})
			default:
				out.Lines = append(out.Lines, DiffLine{Kind: LineContext, Text: strings.TrimPrefix(line, " ")})
			}
		}
	}
	return out, nil
}

func (r *Repo) untrackedDiff(path string) (*FileDiff, error) {
	data, err := os.ReadFile(filepath.Join(r.Root, path))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	out := &FileDiff{Path: path}
	text := strings.TrimSuffix(string(data), "\n")
	if text == "" {
		return out, nil
	}
	for _, line := range strings.Split(text, "\n") {
		out.Added++
		out.Lines = append(out.Lines, DiffLine{Kind: LineAdded, Text: line})
	}
	return out, nil
}
