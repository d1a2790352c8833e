package engine

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/chojs23/enkai/internal/markers"
)

func writeConflict(t *testing.T, perm os.FileMode) (string, *ConflictedFile) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "conflict.go")
	if err := os.WriteFile(path, []byte(twoConflicts), perm); err != nil {
		t.Fatal(err)
	}
	f, err := LoadConflictedFile(path)
	if err != nil {
		t.Fatalf("LoadConflictedFile failed: %v", err)
	}
	return path, f
}

func TestApplyReplacesFile(t *testing.T) {
	path, f := writeConflict(t, 0o600)
	if err := f.ApplyAll(markers.ResolutionIncoming); err != nil {
		t.Fatal(err)
	}

	if err := NewApplier(false).Apply(f); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := "line1\ntheirs1\nmiddle\ntheirs2\nline3\n"; string(data) != want {
		t.Fatalf("content = %q, want %q", data, want)
	}
	if _, err := os.Stat(TempPath(path)); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind after success")
	}
	if _, err := os.Stat(BackupPath(path)); !os.IsNotExist(err) {
		t.Fatalf("backup written while disabled")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestApplyIncompleteTouchesNothing(t *testing.T) {
	path, f := writeConflict(t, 0o644)
	if err := f.SetResolution(0, markers.ResolutionCurrent); err != nil {
		t.Fatal(err)
	}

	err := NewApplier(true).Apply(f)
	if !errors.Is(err, ErrIncompleteResolution) {
		t.Fatalf("expected ErrIncompleteResolution, got %v", err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != twoConflicts {
		t.Fatalf("target changed on incomplete apply")
	}
	for _, p := range []string{TempPath(path), BackupPath(path)} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Fatalf("%s exists after incomplete apply", p)
		}
	}
}

func TestApplyRenameFailureKeepsTarget(t *testing.T) {
	path, f := writeConflict(t, 0o644)
	if err := f.ApplyAll(markers.ResolutionBoth); err != nil {
		t.Fatal(err)
	}

	renameErr := errors.New("rename refused")
	a := NewApplier(false)
	a.rename = func(string, string) error { return renameErr }

	err := a.Apply(f)
	if !errors.Is(err, renameErr) {
		t.Fatalf("expected rename error, got %v", err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != twoConflicts {
		t.Fatalf("target changed after failed rename: %q", data)
	}
	tmp, err := os.ReadFile(TempPath(path))
	if err != nil {
		t.Fatalf("temp file missing after failed rename: %v", err)
	}
	if want := "line1\nours1\ntheirs1\nmiddle\nours2\ntheirs2\nline3\n"; string(tmp) != want {
		t.Fatalf("temp content = %q, want %q", tmp, want)
	}
}

func TestApplyWriteFailureKeepsTarget(t *testing.T) {
	path, f := writeConflict(t, 0o644)
	if err := f.ApplyAll(markers.ResolutionCurrent); err != nil {
		t.Fatal(err)
	}

	a := NewApplier(false)
	a.writeFile = func(string, []byte, os.FileMode) error { return errors.New("disk full") }
	if err := a.Apply(f); err == nil {
		t.Fatalf("expected write error")
	}

	data, _ := os.ReadFile(path)
	if string(data) != twoConflicts {
		t.Fatalf("target changed after failed write")
	}
}

func TestApplyWritesBackup(t *testing.T) {
	path, f := writeConflict(t, 0o644)
	if err := f.ApplyAll(markers.ResolutionCurrent); err != nil {
		t.Fatal(err)
	}
	if err := NewApplier(true).Apply(f); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	bak, err := os.ReadFile(BackupPath(path))
	if err != nil {
		t.Fatalf("backup missing: %v", err)
	}
	if string(bak) != twoConflicts {
		t.Fatalf("backup content = %q", bak)
	}
}

func TestTempPath(t *testing.T) {
	got := TempPath(filepath.Join("a", "b", "file.txt"))
	want := filepath.Join("a", "b", ".file.txt.enkai.tmp")
	if got != want {
		t.Fatalf("TempPath() = %q, want %q", got, want)
	}
}
