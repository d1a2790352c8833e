package engine

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/chojs23/enkai/internal/markers"
)

const twoConflicts = "line1\n" +
	"<<<<<<< HEAD\nours1\n=======\ntheirs1\n>>>>>>> branch\n" +
	"middle\n" +
	"<<<<<<< HEAD\nours2\n=======\ntheirs2\n>>>>>>> branch\n" +
	"line3\n"

func TestApplyAllAndWrite_WritesResolvedAndBackup(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "merged.txt")
	if err := os.WriteFile(path, []byte(twoConflicts), 0o644); err != nil {
		t.Fatal(err)
	}

	n, err := ApplyAllAndWrite(path, markers.ResolutionCurrent, NewApplier(true))
	if err != nil {
		t.Fatalf("ApplyAllAndWrite failed: %v", err)
	}
	if n != 2 {
		t.Fatalf("resolved %d hunks, want 2", n)
	}

	resolved, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	expected := "line1\nours1\nmiddle\nours2\nline3\n"
	if string(resolved) != expected {
		t.Errorf("resolved output mismatch:\nexpected: %q\ngot: %q", expected, string(resolved))
	}

	bak, err := os.ReadFile(BackupPath(path))
	if err != nil {
		t.Fatalf("backup not found: %v", err)
	}
	if string(bak) != twoConflicts {
		t.Errorf("backup mismatch: expected original merged content")
	}
}

func TestApplyAllAndWrite_NoConflictsNoWrite(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "merged.txt")
	if err := os.WriteFile(path, []byte("clean file\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	n, err := ApplyAllAndWrite(path, markers.ResolutionIncoming, NewApplier(true))
	if err != nil {
		t.Fatalf("ApplyAllAndWrite failed: %v", err)
	}
	if n != 0 {
		t.Fatalf("resolved %d hunks, want 0", n)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "clean file\n" {
		t.Fatalf("merged content changed unexpectedly: %q", string(data))
	}
	if _, err := os.Stat(BackupPath(path)); err == nil {
		t.Fatalf("expected no backup file when no conflicts")
	}
}

func TestApplyAllAndWrite_MalformedIsError(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "bad.txt")
	original := "<<<<<<< HEAD\nno end\n"
	if err := os.WriteFile(path, []byte(original), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := ApplyAllAndWrite(path, markers.ResolutionBoth, NewApplier(false))
	if !errors.Is(err, markers.ErrMalformedConflict) {
		t.Fatalf("expected malformed error, got %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != original {
		t.Fatalf("malformed file was rewritten: %q", data)
	}
}

func TestCheckResolvedFile(t *testing.T) {
	tmpDir := t.TempDir()

	resolvedPath := filepath.Join(tmpDir, "resolved.txt")
	if err := os.WriteFile(resolvedPath, []byte("ok\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	resolved, err := CheckResolvedFile(resolvedPath)
	if err != nil {
		t.Fatalf("CheckResolvedFile error: %v", err)
	}
	if !resolved {
		t.Fatalf("expected resolved true")
	}

	unresolvedPath := filepath.Join(tmpDir, "unresolved.txt")
	if err := os.WriteFile(unresolvedPath, []byte("<<<<<<< HEAD\nours\n=======\ntheirs\n>>>>>>> branch\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	resolved, err = CheckResolvedFile(unresolvedPath)
	if err != nil {
		t.Fatalf("CheckResolvedFile error: %v", err)
	}
	if resolved {
		t.Fatalf("expected resolved false")
	}

	malformedPath := filepath.Join(tmpDir, "malformed.txt")
	if err := os.WriteFile(malformedPath, []byte("<<<<<<< HEAD\nno end\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := CheckResolvedFile(malformedPath); err == nil {
		t.Fatalf("expected error for malformed markers")
	}

	if _, err := CheckResolvedFile(filepath.Join(tmpDir, "missing.txt")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
