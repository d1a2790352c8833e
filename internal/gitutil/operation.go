package gitutil

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Operation is the repository action that left conflicts behind.
type Operation int

const (
	OpNone Operation = iota
	OpMerge
	OpRebase
	OpRebaseInteractive
)

func (o Operation) String() string {
	switch o {
	case OpMerge:
		return "merge"
	case OpRebase:
		return "rebase"
	case OpRebaseInteractive:
		return "interactive rebase"
	default:
		return "none"
	}
}

func (o Operation) IsRebase() bool {
	return o == OpRebase || o == OpRebaseInteractive
}

var (
	ErrNoOperation = errors.New("no merge or rebase in progress")
	ErrUnsupported = errors.New("not supported for this operation")
)

// DetectOperation inspects the git dir. It never fails; anything unreadable
// counts as absent.
func (r *Repo) DetectOperation() Operation {
	if exists(filepath.Join(r.GitDir, "rebase-merge")) || exists(filepath.Join(r.GitDir, "rebase-apply")) {
		if exists(filepath.Join(r.GitDir, "rebase-merge", "interactive")) {
			return OpRebaseInteractive
		}
		return OpRebase
	}
	if exists(filepath.Join(r.GitDir, "MERGE_HEAD")) {
		return OpMerge
	}
	return OpNone
}

// Continue finishes the operation in progress. The editor is suppressed so
// git keeps the prepared commit message.
func (r *Repo) Continue(ctx context.Context) error {
	return r.operationCommand(ctx, "--continue")
}

func (r *Repo) Abort(ctx context.Context) error {
	return r.operationCommand(ctx, "--abort")
}

// Skip drops the commit being replayed. Only rebases can skip.
func (r *Repo) Skip(ctx context.Context) error {
	return r.operationCommand(ctx, "--skip")
}

func (r *Repo) operationCommand(ctx context.Context, flag string) error {
	op := r.DetectOperation()
	var verb string
	switch {
	case op.IsRebase():
		verb = "rebase"
	case op == OpMerge:
		if flag == "--skip" {
			return fmt.Errorf("merge %s: %w", flag, ErrUnsupported)
		}
		verb = "merge"
	default:
		return fmt.Errorf("%s: %w", flag, ErrNoOperation)
	}
	_, err := runGit(ctx, r.Root, []string{"GIT_EDITOR=true"}, verb, flag)
	return err
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
