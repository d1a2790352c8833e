package run

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/chojs23/enkai/internal/app"
	"github.com/chojs23/enkai/internal/cli"
	"github.com/chojs23/enkai/internal/config"
	"github.com/chojs23/enkai/internal/engine"
	"github.com/chojs23/enkai/internal/gitutil"
	"github.com/chojs23/enkai/internal/logging"
	"github.com/chojs23/enkai/internal/markers"
	"github.com/chojs23/enkai/internal/tui"
)

var errNotTerminal = errors.New("enkai needs an interactive terminal; use --check or --apply-all in scripts")

// PathValidationError rejects an explicit FILE argument before any state is
// built.
type PathValidationError struct {
	Path   string
	Reason string
}

func (e *PathValidationError) Error() string {
	return fmt.Sprintf("invalid path %s: %s", e.Path, e.Reason)
}

type uiFunc func(ctx context.Context, s app.State, env app.Env, opts tui.Options) (app.State, error)

type runner struct {
	stdout     io.Writer
	stderr     io.Writer
	isTerminal func() bool
	ui         uiFunc
}

func Run(ctx context.Context, opts cli.Options) int {
	r := runner{
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		isTerminal: stdioIsTerminal,
		ui:         tui.Run,
	}
	return r.run(ctx, opts)
}

func stdioIsTerminal() bool {
	tty := func(f *os.File) bool {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return tty(os.Stdin) && tty(os.Stdout)
}

func (r runner) run(ctx context.Context, opts cli.Options) int {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}

	_, closeLog, err := logging.Setup(logging.Options{Debug: cfg.Debug, File: cfg.LogFile})
	if err != nil {
		fmt.Fprintln(r.stderr, err)
		return 2
	}
	defer closeLog()

	if opts.Check {
		return r.check(opts.Files)
	}
	if opts.ApplyAll != markers.ResolutionUnset {
		return r.applyAll(opts.Files, opts.ApplyAll, engine.NewApplier(cfg.Backup))
	}
	return r.interactive(ctx, opts.Files, cfg)
}

// check exits 0 when every file is free of conflict blocks, 1 when any still
// has one and 2 when any file could not be read or parsed.
func (r runner) check(paths []string) int {
	code := 0
	for _, path := range paths {
		resolved, err := engine.CheckResolvedFile(path)
		if err != nil {
			fmt.Fprintln(r.stderr, err)
			code = 2
			continue
		}
		if !resolved && code == 0 {
			code = 1
		}
	}
	return code
}

func (r runner) applyAll(paths []string, res markers.Resolution, applier *engine.Applier) int {
	code := 0
	for _, path := range paths {
		n, err := engine.ApplyAllAndWrite(path, res, applier)
		if err != nil {
			fmt.Fprintln(r.stderr, err)
			code = 2
			continue
		}
		if n > 0 {
			fmt.Fprintf(r.stdout, "%s: resolved %d conflict(s) with %s\n", path, n, res)
		}
	}
	return code
}

func (r runner) interactive(ctx context.Context, explicit []string, cfg *config.Config) int {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(r.stderr, "get working directory: %v\n", err)
		return 2
	}
	repo, err := gitutil.Open(ctx, cwd)
	if err != nil {
		fmt.Fprintf(r.stderr, "open repository: %v\n", err)
		return 2
	}
	op := repo.DetectOperation()

	var paths []string
	if len(explicit) > 0 {
		paths, err = validatePaths(repo.Root, cwd, explicit)
	} else {
		paths, err = repo.ConflictedPaths(ctx)
	}
	if err != nil {
		fmt.Fprintln(r.stderr, err)
		return 2
	}

	// Every path from here on is relative to the repository root, which is
	// also where git runs.
	if err := os.Chdir(repo.Root); err != nil {
		fmt.Fprintf(r.stderr, "enter repository root: %v\n", err)
		return 2
	}

	files := r.loadFiles(paths)
	slog.Info("startup", "root", repo.Root, "operation", op.String(), "files", len(files))

	if !r.isTerminal() {
		fmt.Fprintln(r.stderr, errNotTerminal)
		return 2
	}

	env := app.Env{
		Applier:   engine.NewApplier(cfg.Backup),
		Provider:  repo,
		AutoStage: cfg.AutoStage,
	}
	uiOpts := tui.Options{Theme: cfg.Theme, Diffs: repo}

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if w, err := gitutil.NewWatcher(repo.GitDir); err != nil {
		slog.Warn("watch git dir", "error", err)
	} else {
		defer w.Close()
		go w.Start(watchCtx)
		uiOpts.Changes = w.Changes()
	}

	final, err := r.ui(ctx, app.New(files, op), env, uiOpts)
	if err != nil {
		fmt.Fprintln(r.stderr, err)
		return 2
	}

	for _, path := range final.Saved {
		fmt.Fprintf(r.stdout, "Saved %s\n", path)
	}
	return 0
}

// loadFiles parses every path. Files with malformed markers are reported and
// left out of the session.
func (r runner) loadFiles(paths []string) []*engine.ConflictedFile {
	files := make([]*engine.ConflictedFile, 0, len(paths))
	for _, path := range paths {
		f, err := engine.LoadConflictedFile(path)
		if err != nil {
			slog.Warn("skip file", "path", path, "error", err)
			fmt.Fprintf(r.stderr, "Warning: skipping %v\n", err)
			continue
		}
		files = append(files, f)
	}
	return files
}

// validatePaths resolves each argument against cwd and returns it relative
// to root. All arguments are checked before any is accepted.
func validatePaths(root, cwd string, args []string) ([]string, error) {
	realRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return nil, fmt.Errorf("resolve repository root: %w", err)
	}

	out := make([]string, 0, len(args))
	for _, arg := range args {
		path := arg
		if !filepath.IsAbs(path) {
			path = filepath.Join(cwd, path)
		}
		resolved, err := filepath.EvalSymlinks(path)
		if err != nil {
			return nil, &PathValidationError{Path: arg, Reason: "does not exist"}
		}
		info, err := os.Stat(resolved)
		if err != nil {
			return nil, &PathValidationError{Path: arg, Reason: err.Error()}
		}
		if !info.Mode().IsRegular() {
			return nil, &PathValidationError{Path: arg, Reason: "not a regular file"}
		}
		rel, err := filepath.Rel(realRoot, resolved)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return nil, &PathValidationError{Path: arg, Reason: "outside the repository"}
		}
		out = append(out, rel)
	}
	return out, nil
}
