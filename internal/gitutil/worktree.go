package gitutil

import (
	"context"
	"errors"
	"strings"
)

var ErrEmptyCommitMessage = errors.New("commit message is empty")

func (r *Repo) Stage(ctx context.Context, path string) error {
	_, err := r.git(ctx, "add", "--", path)
	return err
}

// StagePaths stages several files in one invocation.
func (r *Repo) StagePaths(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	_, err := r.git(ctx, append([]string{"add", "--"}, paths...)...)
	return err
}

func (r *Repo) Unstage(ctx context.Context, path string) error {
	_, err := r.git(ctx, "restore", "--staged", "--", path)
	return err
}

// Restore discards worktree changes to path.
func (r *Repo) Restore(ctx context.Context, path string) error {
	_, err := r.git(ctx, "restore", "--", path)
	return err
}

func (r *Repo) StageAll(ctx context.Context) error {
	_, err := r.git(ctx, "add", "--all")
	return err
}

func (r *Repo) UnstageAll(ctx context.Context) error {
	_, err := r.git(ctx, "restore", "--staged", ".")
	return err
}

func (r *Repo) RestoreAll(ctx context.Context) error {
	_, err := r.git(ctx, "restore", ".")
	return err
}

func (r *Repo) Commit(ctx context.Context, message string) error {
	if strings.TrimSpace(message) == "" {
		return ErrEmptyCommitMessage
	}
	_, err := r.git(ctx, "commit", "-m", message)
	return err
}
