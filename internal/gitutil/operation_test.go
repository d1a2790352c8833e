package gitutil

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDetectOperation(t *testing.T) {
	tests := []struct {
		name  string
		setup []string
		want  Operation
	}{
		{"none", nil, OpNone},
		{"merge", []string{"MERGE_HEAD"}, OpMerge},
		{"rebase merge backend", []string{"rebase-merge/"}, OpRebase},
		{"rebase apply backend", []string{"rebase-apply/"}, OpRebase},
		{"interactive", []string{"rebase-merge/", "rebase-merge/interactive"}, OpRebaseInteractive},
		{"rebase wins over merge", []string{"MERGE_HEAD", "rebase-apply/"}, OpRebase},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gitDir := t.TempDir()
			for _, entry := range tt.setup {
				path := filepath.Join(gitDir, entry)
				if entry[len(entry)-1] == '/' {
					if err := os.MkdirAll(path, 0o755); err != nil {
						t.Fatal(err)
					}
					continue
				}
				if err := os.WriteFile(path, nil, 0o644); err != nil {
					t.Fatal(err)
				}
			}

			repo := &Repo{Root: t.TempDir(), GitDir: gitDir}
			if got := repo.DetectOperation(); got != tt.want {
				t.Fatalf("DetectOperation() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectOperationMissingGitDir(t *testing.T) {
	repo := &Repo{GitDir: filepath.Join(t.TempDir(), "missing")}
	if got := repo.DetectOperation(); got != OpNone {
		t.Fatalf("DetectOperation() = %v, want none", got)
	}
}

func TestOperationCommands(t *testing.T) {
	tests := []struct {
		name   string
		marker string
		run    func(*Repo, context.Context) error
		want   string
	}{
		{"rebase continue", "rebase-merge", (*Repo).Continue, "rebase --continue\nGIT_EDITOR=true"},
		{"rebase abort", "rebase-apply", (*Repo).Abort, "rebase --abort\nGIT_EDITOR=true"},
		{"rebase skip", "rebase-merge", (*Repo).Skip, "rebase --skip\nGIT_EDITOR=true"},
		{"merge continue", "MERGE_HEAD", (*Repo).Continue, "merge --continue\nGIT_EDITOR=true"},
		{"merge abort", "MERGE_HEAD", (*Repo).Abort, "merge --abort\nGIT_EDITOR=true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := withRecordingGit(t, 0)
			gitDir := t.TempDir()
			if err := os.MkdirAll(filepath.Join(gitDir, tt.marker), 0o755); err != nil {
				t.Fatal(err)
			}
			repo := &Repo{Root: t.TempDir(), GitDir: gitDir}

			if err := tt.run(repo, context.Background()); err != nil {
				t.Fatalf("command error: %v", err)
			}
			if got := readLog(t, log); got != tt.want {
				t.Fatalf("git log = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSkipDuringMergeUnsupported(t *testing.T) {
	log := withRecordingGit(t, 0)
	gitDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(gitDir, "MERGE_HEAD"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	repo := &Repo{Root: t.TempDir(), GitDir: gitDir}

	if err := repo.Skip(context.Background()); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
	if got := readLog(t, log); got != "" {
		t.Fatalf("git ran: %q", got)
	}
}

func TestContinueWithoutOperation(t *testing.T) {
	withRecordingGit(t, 0)
	repo := &Repo{Root: t.TempDir(), GitDir: t.TempDir()}
	if err := repo.Continue(context.Background()); !errors.Is(err, ErrNoOperation) {
		t.Fatalf("expected ErrNoOperation, got %v", err)
	}
}

func TestContinueFailureIsCommandError(t *testing.T) {
	withFakeGit(t, "#!/bin/sh\necho 'error: could not apply abc123' 1>&2\nexit 1\n")
	gitDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(gitDir, "rebase-merge"), 0o755); err != nil {
		t.Fatal(err)
	}
	repo := &Repo{Root: t.TempDir(), GitDir: gitDir}

	err := repo.Continue(context.Background())
	var ce *CommandError
	if !errors.As(err, &ce) {
		t.Fatalf("expected CommandError, got %v", err)
	}
	if err.Error() != "git rebase --continue failed: error: could not apply abc123" {
		t.Fatalf("error = %q", err.Error())
	}
}

func TestOperationString(t *testing.T) {
	if OpRebaseInteractive.String() != "interactive rebase" || OpNone.String() != "none" {
		t.Fatalf("unexpected operation names")
	}
	if !OpRebaseInteractive.IsRebase() || OpMerge.IsRebase() {
		t.Fatalf("IsRebase misclassified")
	}
}
