package engine

import (
	"fmt"

	"github.com/chojs23/enkai/internal/markers"
)

// CheckResolvedFile reports whether path is free of conflict blocks.
func CheckResolvedFile(path string) (bool, error) {
	file, err := LoadConflictedFile(path)
	if err != nil {
		// Treat malformed markers as an error to avoid false success.
		return false, err
	}
	return file.HunkCount() == 0, nil
}

// ApplyAllAndWrite resolves every hunk of path with r and writes the result.
// A file without conflicts is left untouched. It returns the number of hunks
// resolved.
func ApplyAllAndWrite(path string, r markers.Resolution, applier *Applier) (int, error) {
	file, err := LoadConflictedFile(path)
	if err != nil {
		return 0, err
	}
	if file.HunkCount() == 0 {
		return 0, nil
	}
	if err := file.ApplyAll(r); err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	if err := applier.Apply(file); err != nil {
		return 0, err
	}
	return file.HunkCount(), nil
}
