package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/dustin/go-humanize"

	"github.com/chojs23/enkai/internal/engine"
	"github.com/chojs23/enkai/internal/gitutil"
)

var ErrNoSelection = errors.New("nothing selected")

// Dispatch applies one command and returns the next state. On error the
// returned state equals s: a failed command never leaves a partial change
// behind. Commands that mean nothing in the current mode are ignored. Once
// Quit is set every command is a no-op.
func Dispatch(ctx context.Context, s State, cmd Command, env Env) (State, error) {
	if s.Quit {
		return s, nil
	}
	orig := s
	s.Notice = ""

	if cmd.Kind == CmdQuit {
		s.Quit = true
		return s, nil
	}

	slog.Debug("dispatch", "command", cmd.Kind.String(), "mode", s.Mode.Kind.String())

	var (
		next State
		err  error
	)
	switch s.Mode.Kind {
	case ModeFileList:
		next, err = dispatchFileList(s, cmd)
	case ModeConflictResolve:
		next, err = dispatchResolve(s, cmd, env)
	case ModeRebaseActions:
		next, err = dispatchActions(ctx, s, cmd, env)
	case ModeStatus:
		next, err = dispatchStatus(ctx, s, cmd, env)
	case ModeDone:
		next, err = s, nil
	default:
		panic(fmt.Sprintf("app: unknown mode %d", s.Mode.Kind))
	}
	if err != nil {
		slog.Warn("command failed", "command", cmd.Kind.String(), "error", err)
		return orig, err
	}
	return next, nil
}

func dispatchFileList(s State, cmd Command) (State, error) {
	switch cmd.Kind {
	case CmdCursorUp:
		s.Selected = clamp(s.Selected-1, 0, len(s.Files)-1)
	case CmdCursorDown:
		s.Selected = clamp(s.Selected+1, 0, len(s.Files)-1)
	case CmdOpen:
		return openFile(s, s.Selected)
	case CmdSelectFile:
		return openFile(s, cmd.Index)
	}
	return s, nil
}

func openFile(s State, i int) (State, error) {
	if i < 0 || i >= len(s.Files) {
		return s, &engine.IndexError{Index: i, Count: len(s.Files)}
	}
	s.Selected = i
	s.Mode = ConflictResolve(i, 0)
	return s, nil
}

func dispatchResolve(s State, cmd Command, env Env) (State, error) {
	f := s.ActiveFile()
	if f == nil {
		return s, fmt.Errorf("file %d: %w", s.Mode.FileIndex, ErrNoSelection)
	}
	last := f.HunkCount() - 1

	switch cmd.Kind {
	case CmdNextHunk:
		s.Mode.HunkIndex = clamp(s.Mode.HunkIndex+1, 0, last)
	case CmdPrevHunk:
		s.Mode.HunkIndex = clamp(s.Mode.HunkIndex-1, 0, last)
	case CmdResolve:
		if err := f.SetResolution(s.Mode.HunkIndex, cmd.Resolution); err != nil {
			return s, err
		}
	case CmdResolveAll:
		if err := f.ApplyAll(cmd.Resolution); err != nil {
			return s, err
		}
	case CmdClear:
		if err := f.ClearResolution(s.Mode.HunkIndex); err != nil {
			return s, err
		}
	case CmdBack:
		s.Selected = s.Mode.FileIndex
		s.Mode = FileList()
	case CmdSave:
		return save(s, f, env)
	}
	return s, nil
}

func save(s State, f *engine.ConflictedFile, env Env) (State, error) {
	data, err := f.Reconstruct()
	if err != nil {
		return s, err
	}
	if err := env.Applier.Apply(f); err != nil {
		return s, err
	}
	slog.Info("saved", "path", f.Path(), "bytes", len(data))

	i := s.Mode.FileIndex
	s.Files = slices.Delete(slices.Clone(s.Files), i, i+1)
	s.Saved = append(slices.Clone(s.Saved), f.Path())
	s.Notice = fmt.Sprintf("Saved %s (%s)", f.Name(), humanize.Bytes(uint64(len(data))))

	switch {
	case len(s.Files) > 0:
		s.Selected = clamp(i, 0, len(s.Files)-1)
		s.Mode = FileList()
	case s.Operation != gitutil.OpNone:
		s.Selected = 0
		s.ActionIndex = 0
		s.Mode = RebaseActions()
	default:
		s.Selected = 0
		s.Mode = Done()
	}
	return s, nil
}

func dispatchActions(ctx context.Context, s State, cmd Command, env Env) (State, error) {
	kind := cmd.Kind
	switch kind {
	case CmdCursorUp:
		s.ActionIndex = clamp(s.ActionIndex-1, 0, len(s.Actions())-1)
		return s, nil
	case CmdCursorDown:
		s.ActionIndex = clamp(s.ActionIndex+1, 0, len(s.Actions())-1)
		return s, nil
	case CmdOpen:
		switch s.SelectedAction() {
		case ActionContinue:
			kind = CmdContinue
		case ActionAbort:
			kind = CmdAbort
		case ActionSkip:
			kind = CmdSkip
		}
	}

	var err error
	switch kind {
	case CmdContinue:
		if env.AutoStage && len(s.Saved) > 0 {
			if err := env.Provider.StagePaths(ctx, s.Saved); err != nil {
				return s, err
			}
		}
		err = env.Provider.Continue(ctx)
	case CmdAbort:
		err = env.Provider.Abort(ctx)
	case CmdSkip:
		err = env.Provider.Skip(ctx)
	default:
		return s, nil
	}
	if err != nil {
		return s, err
	}
	slog.Info("operation finished", "command", kind.String(), "operation", s.Operation.String())
	s.Quit = true
	return s, nil
}

func dispatchStatus(ctx context.Context, s State, cmd Command, env Env) (State, error) {
	switch cmd.Kind {
	case CmdCursorUp, CmdCursorDown:
		delta := 1
		if cmd.Kind == CmdCursorUp {
			delta = -1
		}
		if s.Mode.Status == StatusMenu {
			s.MenuIndex = clamp(s.MenuIndex+delta, 0, len(menuItems)-1)
		} else {
			s.ChangeIndex = clamp(s.ChangeIndex+delta, 0, len(s.Changes)-1)
		}
		return s, nil
	case CmdBack:
		s.Mode = Status(StatusMenu)
		return s, nil
	case CmdRefresh:
		return refreshChanges(ctx, s, env)
	case CmdOpen:
		if s.Mode.Status != StatusMenu {
			return s, nil
		}
		switch s.SelectedMenuItem() {
		case MenuViewChanges:
			s.Mode = Status(StatusChanges)
			return refreshChanges(ctx, s, env)
		case MenuStageAll:
			return statusCommand(ctx, s, env, "Staged all changes", env.Provider.StageAll)
		case MenuQuit:
			s.Quit = true
		}
		// MenuCommit needs a message and arrives as CmdCommit.
		return s, nil
	case CmdStageAll:
		return statusCommand(ctx, s, env, "Staged all changes", env.Provider.StageAll)
	case CmdUnstageAll:
		return statusCommand(ctx, s, env, "Unstaged all changes", env.Provider.UnstageAll)
	case CmdRestoreAll:
		return statusCommand(ctx, s, env, "Restored all files", env.Provider.RestoreAll)
	case CmdCommit:
		return statusCommand(ctx, s, env, "Committed", func(ctx context.Context) error {
			return env.Provider.Commit(ctx, cmd.Message)
		})
	}

	var (
		run  func(context.Context, string) error
		verb string
	)
	switch cmd.Kind {
	case CmdStage:
		run, verb = env.Provider.Stage, "Staged"
	case CmdUnstage:
		run, verb = env.Provider.Unstage, "Unstaged"
	case CmdRestore:
		run, verb = env.Provider.Restore, "Restored"
	default:
		return s, nil
	}
	if s.Mode.Status != StatusChanges {
		return s, nil
	}
	change, ok := s.SelectedChange()
	if !ok {
		return s, ErrNoSelection
	}
	return statusCommand(ctx, s, env, verb+" "+change.Path, func(ctx context.Context) error {
		return run(ctx, change.Path)
	})
}

func statusCommand(ctx context.Context, s State, env Env, notice string, run func(context.Context) error) (State, error) {
	if err := run(ctx); err != nil {
		return s, err
	}
	next, err := refreshChanges(ctx, s, env)
	if err != nil {
		return s, err
	}
	next.Notice = notice
	return next, nil
}

func refreshChanges(ctx context.Context, s State, env Env) (State, error) {
	changes, err := env.Provider.Status(ctx)
	if err != nil {
		return s, err
	}
	s.Changes = changes
	s.ChangeIndex = clamp(s.ChangeIndex, 0, len(changes)-1)
	return s, nil
}
