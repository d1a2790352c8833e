package app

import (
	"context"

	"github.com/chojs23/enkai/internal/engine"
	"github.com/chojs23/enkai/internal/gitutil"
)

// Provider runs repository commands on behalf of the state machine.
// *gitutil.Repo implements it.
type Provider interface {
	Continue(ctx context.Context) error
	Abort(ctx context.Context) error
	Skip(ctx context.Context) error

	Stage(ctx context.Context, path string) error
	StagePaths(ctx context.Context, paths []string) error
	Unstage(ctx context.Context, path string) error
	Restore(ctx context.Context, path string) error
	StageAll(ctx context.Context) error
	UnstageAll(ctx context.Context) error
	RestoreAll(ctx context.Context) error
	Commit(ctx context.Context, message string) error

	Status(ctx context.Context) ([]gitutil.FileStatus, error)
}

// FileApplier persists a fully resolved file. *engine.Applier implements it.
type FileApplier interface {
	Apply(f *engine.ConflictedFile) error
}

// Env carries the collaborators a dispatch may call.
type Env struct {
	Applier  FileApplier
	Provider Provider

	// AutoStage stages saved files before continuing.
	AutoStage bool
}
