package gitutil

import (
	"context"
	"strings"
)

// Section groups a change by where it lives.
type Section int

const (
	SectionStaged Section = iota
	SectionBoth
	SectionUnstaged
)

func (s Section) String() string {
	switch s {
	case SectionStaged:
		return "STAGED"
	case SectionBoth:
		return "BOTH"
	default:
		return "UNSTAGED"
	}
}

// FileStatus is one entry of `git status --porcelain`. Index and Worktree hold
// the X and Y status letters; ' ' means unchanged.
type FileStatus struct {
	Path     string
	OrigPath string
	Index    byte
	Worktree byte
}

func (s FileStatus) Untracked() bool { return s.Index == '?' }

// Conflicted reports an unmerged entry (any U, or both added / both deleted).
func (s FileStatus) Conflicted() bool {
	if s.Index == 'U' || s.Worktree == 'U' {
		return true
	}
	return (s.Index == 'A' && s.Worktree == 'A') || (s.Index == 'D' && s.Worktree == 'D')
}

func (s FileStatus) Staged() bool {
	return s.Index != ' ' && !s.Untracked() && !s.Conflicted()
}

func (s FileStatus) Unstaged() bool {
	return s.Worktree != ' ' || s.Untracked() || s.Conflicted()
}

func (s FileStatus) Section() Section {
	switch {
	case s.Staged() && s.Unstaged():
		return SectionBoth
	case s.Staged():
		return SectionStaged
	default:
		return SectionUnstaged
	}
}

// Code is the two-letter porcelain code.
func (s FileStatus) Code() string {
	return string([]byte{s.Index, s.Worktree})
}

// Status lists working tree changes ordered staged, both, unstaged, keeping
// git's path order inside each section.
func (r *Repo) Status(ctx context.Context) ([]FileStatus, error) {
	out, err := r.git(ctx, "status", "--porcelain=v1", "-z", "--untracked-files=all")
	if err != nil {
		return nil, err
	}
	return SortBySection(ParsePorcelain(out)), nil
}

// ParsePorcelain parses NUL-terminated porcelain v1 output.
func ParsePorcelain(out []byte) []FileStatus {
	fields := strings.Split(string(out), "\x00")
	var statuses []FileStatus
	for i := 0; i < len(fields); i++ {
		entry := fields[i]
		if len(entry) < 4 {
			continue
		}
		st := FileStatus{Index: entry[0], Worktree: entry[1], Path: entry[3:]}
		// Renames and copies carry the source path as the next field.
		if (st.Index == 'R' || st.Index == 'C') && i+1 < len(fields) {
			st.OrigPath = fields[i+1]
			i++
		}
		statuses = append(statuses, st)
	}
	return statuses
}

func SortBySection(statuses []FileStatus) []FileStatus {
	out := make([]FileStatus, 0, len(statuses))
	for _, section := range []Section{SectionStaged, SectionBoth, SectionUnstaged} {
		for _, st := range statuses {
			if st.Section() == section {
				out = append(out, st)
			}
		}
	}
	return out
}
