package run

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chojs23/enkai/internal/app"
	"github.com/chojs23/enkai/internal/cli"
	"github.com/chojs23/enkai/internal/gitutil"
	"github.com/chojs23/enkai/internal/markers"
	"github.com/chojs23/enkai/internal/tui"
)

const conflict = "<<<<<<< HEAD\nours\n=======\ntheirs\n>>>>>>> branch\n"

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

type fakeUI struct {
	calls int
	state app.State
	env   app.Env
	opts  tui.Options
	final app.State
	err   error
}

func (f *fakeUI) run(_ context.Context, s app.State, env app.Env, opts tui.Options) (app.State, error) {
	f.calls++
	f.state = s
	f.env = env
	f.opts = opts
	if f.err != nil {
		return s, f.err
	}
	return f.final, nil
}

func testRunner(ui *fakeUI, terminal bool) (runner, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return runner{
		stdout:     &stdout,
		stderr:     &stderr,
		isTerminal: func() bool { return terminal },
		ui:         ui.run,
	}, &stdout, &stderr
}

// withFakeRepo puts a git on PATH that reports root as the repository and
// conflicted as its unmerged paths.
func withFakeRepo(t *testing.T, root string, conflicted ...string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	script := "#!/bin/sh\n" +
		"case \"$1 $2\" in\n" +
		"\"rev-parse --show-toplevel\") echo \"" + root + "\" ;;\n" +
		"\"rev-parse --absolute-git-dir\") echo \"" + filepath.Join(root, ".git") + "\" ;;\n" +
		"\"diff --name-only\") printf '" + strings.Join(conflicted, "\\000") + "\\000' ;;\n" +
		"*) echo \"unexpected: $*\" 1>&2; exit 1 ;;\n" +
		"esac\n"

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "git"), []byte(script), 0o755); err != nil {
		t.Fatalf("write fake git: %v", err)
	}
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func TestRunCheckResolvedExitCodes(t *testing.T) {
	tmpDir := t.TempDir()

	resolvedPath := filepath.Join(tmpDir, "resolved.txt")
	writeFile(t, resolvedPath, "ok\n")
	unresolvedPath := filepath.Join(tmpDir, "unresolved.txt")
	writeFile(t, unresolvedPath, conflict)
	malformedPath := filepath.Join(tmpDir, "malformed.txt")
	writeFile(t, malformedPath, "<<<<<<< HEAD\nours\n")

	tests := []struct {
		name  string
		files []string
		want  int
	}{
		{"resolved", []string{resolvedPath}, 0},
		{"unresolved", []string{unresolvedPath}, 1},
		{"any unresolved", []string{resolvedPath, unresolvedPath}, 1},
		{"malformed", []string{malformedPath}, 2},
		{"error wins", []string{unresolvedPath, malformedPath}, 2},
		{"missing", []string{filepath.Join(tmpDir, "missing.txt")}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := Run(context.Background(), cli.Options{Check: true, Files: tt.files})
			if code != tt.want {
				t.Fatalf("check exit code = %d, want %d", code, tt.want)
			}
		})
	}
}

func TestRunApplyAllWritesFiles(t *testing.T) {
	tmpDir := t.TempDir()
	first := filepath.Join(tmpDir, "first.txt")
	second := filepath.Join(tmpDir, "second.txt")
	writeFile(t, first, "a\n"+conflict+"z\n")
	writeFile(t, second, "clean\n")

	r, stdout, stderr := testRunner(&fakeUI{}, false)
	code := r.run(context.Background(), cli.Options{ApplyAll: markers.ResolutionIncoming, Files: []string{first, second}})
	if code != 0 {
		t.Fatalf("apply-all exit code = %d, stderr = %s", code, stderr)
	}

	got, err := os.ReadFile(first)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "a\ntheirs\nz\n" {
		t.Fatalf("first = %q", got)
	}
	if !strings.Contains(stdout.String(), "first.txt: resolved 1 conflict(s) with incoming") {
		t.Fatalf("stdout = %q", stdout)
	}
	if strings.Contains(stdout.String(), "second.txt") {
		t.Fatalf("clean file reported: %q", stdout)
	}
}

func TestRunApplyAllMalformedExitCode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.txt")
	original := "<<<<<<< HEAD\nours\n<<<<<<< HEAD\n"
	writeFile(t, path, original)

	r, _, stderr := testRunner(&fakeUI{}, false)
	if code := r.run(context.Background(), cli.Options{ApplyAll: markers.ResolutionBoth, Files: []string{path}}); code != 2 {
		t.Fatalf("exit code = %d, want 2", code)
	}
	if stderr.Len() == 0 {
		t.Fatalf("no error reported")
	}
	got, _ := os.ReadFile(path)
	if string(got) != original {
		t.Fatalf("malformed file modified: %q", got)
	}
}

func TestValidatePaths(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	writeFile(t, filepath.Join(root, "dir", "a.txt"), "a\n")
	writeFile(t, filepath.Join(outside, "b.txt"), "b\n")
	if err := os.Symlink(filepath.Join(outside, "b.txt"), filepath.Join(root, "link.txt")); err != nil {
		t.Skipf("symlink: %v", err)
	}

	got, err := validatePaths(root, filepath.Join(root, "dir"), []string{"a.txt", filepath.Join(root, "dir", "a.txt")})
	if err != nil {
		t.Fatalf("validatePaths error = %v", err)
	}
	want := filepath.Join("dir", "a.txt")
	if len(got) != 2 || got[0] != want || got[1] != want {
		t.Fatalf("paths = %q, want %q twice", got, want)
	}

	tests := []struct {
		name   string
		arg    string
		reason string
	}{
		{"missing", "nope.txt", "does not exist"},
		{"directory", "dir", "not a regular file"},
		{"outside", filepath.Join(outside, "b.txt"), "outside the repository"},
		{"symlink escapes", "link.txt", "outside the repository"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := validatePaths(root, root, []string{"dir/a.txt", tt.arg})
			var pe *PathValidationError
			if !errors.As(err, &pe) {
				t.Fatalf("error = %v, want PathValidationError", err)
			}
			if pe.Path != tt.arg || pe.Reason != tt.reason {
				t.Fatalf("error = %+v, want path %q reason %q", pe, tt.arg, tt.reason)
			}
		})
	}
}

func TestRunInteractiveLoadsConflictedFiles(t *testing.T) {
	root, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(root, "a.txt"), conflict)
	writeFile(t, filepath.Join(root, "sub", "b.txt"), "x\n"+conflict)
	writeFile(t, filepath.Join(root, "bad.txt"), "=======\n")
	writeFile(t, filepath.Join(root, ".git", "MERGE_HEAD"), "abc\n")
	withFakeRepo(t, root, "a.txt", "bad.txt", "sub/b.txt")
	t.Chdir(filepath.Join(root, "sub"))

	ui := &fakeUI{final: app.State{Saved: []string{"a.txt"}}}
	r, stdout, stderr := testRunner(ui, true)
	code := r.run(context.Background(), cli.Options{})
	if code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr)
	}
	if ui.calls != 1 {
		t.Fatalf("ui calls = %d, want 1", ui.calls)
	}

	if len(ui.state.Files) != 2 || ui.state.Files[0].Path() != "a.txt" || ui.state.Files[1].Path() != "sub/b.txt" {
		t.Fatalf("files = %v", ui.state.Files)
	}
	if ui.state.Operation != gitutil.OpMerge {
		t.Fatalf("operation = %v, want merge", ui.state.Operation)
	}
	if ui.state.Mode != app.FileList() {
		t.Fatalf("mode = %+v, want file list", ui.state.Mode)
	}
	if _, ok := ui.env.Provider.(*gitutil.Repo); !ok {
		t.Fatalf("provider = %T, want *gitutil.Repo", ui.env.Provider)
	}
	if !ui.env.AutoStage {
		t.Fatalf("AutoStage = false, want default true")
	}
	if ui.opts.Diffs == nil || ui.opts.Changes == nil {
		t.Fatalf("tui options missing diffs or watcher: %+v", ui.opts)
	}
	if !strings.Contains(stderr.String(), "Warning: skipping") || !strings.Contains(stderr.String(), "bad.txt") {
		t.Fatalf("stderr = %q, want skip warning for bad.txt", stderr)
	}
	if stdout.String() != "Saved a.txt\n" {
		t.Fatalf("stdout = %q", stdout)
	}
	cwd, _ := os.Getwd()
	if cwd != root {
		t.Fatalf("cwd = %q, want repository root", cwd)
	}
}

func TestRunInteractiveExplicitPathOutsideRepo(t *testing.T) {
	root, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	outside := filepath.Join(t.TempDir(), "x.txt")
	writeFile(t, outside, conflict)
	withFakeRepo(t, root)
	t.Chdir(root)

	ui := &fakeUI{}
	r, _, stderr := testRunner(ui, true)
	if code := r.run(context.Background(), cli.Options{Files: []string{outside}}); code != 2 {
		t.Fatalf("exit code = %d, want 2", code)
	}
	if ui.calls != 0 {
		t.Fatalf("ui started despite invalid path")
	}
	if !strings.Contains(stderr.String(), "outside the repository") {
		t.Fatalf("stderr = %q", stderr)
	}
}

func TestRunInteractiveRequiresTerminal(t *testing.T) {
	root, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	withFakeRepo(t, root)
	t.Chdir(root)

	ui := &fakeUI{}
	r, _, stderr := testRunner(ui, false)
	if code := r.run(context.Background(), cli.Options{}); code != 2 {
		t.Fatalf("exit code = %d, want 2", code)
	}
	if ui.calls != 0 {
		t.Fatalf("ui started without a terminal")
	}
	if !strings.Contains(stderr.String(), "interactive terminal") {
		t.Fatalf("stderr = %q", stderr)
	}
}

func TestRunInteractiveUIErrorExitCode(t *testing.T) {
	root, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	withFakeRepo(t, root)
	t.Chdir(root)

	ui := &fakeUI{err: errors.New("TUI error: no tty")}
	r, _, stderr := testRunner(ui, true)
	if code := r.run(context.Background(), cli.Options{}); code != 2 {
		t.Fatalf("exit code = %d, want 2", code)
	}
	if !strings.Contains(stderr.String(), "no tty") {
		t.Fatalf("stderr = %q", stderr)
	}
	if ui.state.Mode.Kind != app.ModeStatus {
		t.Fatalf("mode = %v, want status view without conflicts", ui.state.Mode.Kind)
	}
}

func TestRunOutsideRepositoryExitCode(t *testing.T) {
	dir := t.TempDir()
	script := "#!/bin/sh\necho 'fatal: not a git repository' 1>&2\nexit 128\n"
	if err := os.WriteFile(filepath.Join(dir, "git"), []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
	t.Chdir(t.TempDir())

	ui := &fakeUI{}
	r, _, stderr := testRunner(ui, true)
	if code := r.run(context.Background(), cli.Options{}); code != 2 {
		t.Fatalf("exit code = %d, want 2", code)
	}
	if !strings.Contains(stderr.String(), "open repository") {
		t.Fatalf("stderr = %q", stderr)
	}
}
