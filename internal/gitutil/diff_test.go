package gitutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

const sampleDiff = `diff --git a/main.go b/main.go
index 3b18e51..a042389 100644
--- a/main.go
+++ b/main.go
@@ -1,3 +1,3 @@ package main
 line1
-old
+new
 line3
`

func TestParseUnifiedDiff(t *testing.T) {
	fd, err := ParseUnifiedDiff([]byte(sampleDiff))
	if err != nil {
		t.Fatalf("ParseUnifiedDiff error: %v", err)
	}
	if fd.Path != "main.go" {
		t.Errorf("path = %q, want main.go", fd.Path)
	}
	if fd.Added != 1 || fd.Deleted != 1 {
		t.Errorf("stats = +%d -%d, want +1 -1", fd.Added, fd.Deleted)
	}

	want := []DiffLine{
		{LineHunk, "@@ -1,3 +1,3 @@ package main"},
		{LineContext, "line1"},
		{LineDeleted, "old"},
		{LineAdded, "new"},
		{LineContext, "line3"},
	}
	if len(fd.Lines) != len(want) {
		t.Fatalf("lines = %+v", fd.Lines)
	}
	for i := range want {
		if fd.Lines[i] != want[i] {
			t.Errorf("line %d = %+v, want %+v", i, fd.Lines[i], want[i])
		}
	}
}

func TestParseUnifiedDiffEmpty(t *testing.T) {
	fd, err := ParseUnifiedDiff(nil)
	if err != nil {
		t.Fatalf("ParseUnifiedDiff error: %v", err)
	}
	if !fd.Empty() {
		t.Fatalf("expected empty diff, got %+v", fd)
	}
}

func TestDiffUsesCachedForStaged(t *testing.T) {
	log := withRecordingGit(t, 0)
	repo := &Repo{Root: t.TempDir()}

	if _, err := repo.Diff(context.Background(), FileStatus{Path: "a.go", Index: 'M', Worktree: ' '}); err != nil {
		t.Fatalf("Diff error: %v", err)
	}
	if got := readLog(t, log); got != "diff --no-color --no-ext-diff --cached -- a.go" {
		t.Fatalf("git args = %q", got)
	}
}

func TestDiffUntrackedShowsContentAsAdded(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "new.txt"), []byte("a\nb\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	repo := &Repo{Root: root}

	fd, err := repo.Diff(context.Background(), FileStatus{Path: "new.txt", Index: '?', Worktree: '?'})
	if err != nil {
		t.Fatalf("Diff error: %v", err)
	}
	if fd.Added != 2 || len(fd.Lines) != 2 || fd.Lines[1].Text != "b" {
		t.Fatalf("untracked diff = %+v", fd)
	}
}
