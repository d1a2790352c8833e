package gitutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// CommandError is a failed git invocation. Stderr is trimmed.
type CommandError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	cmd := "git " + strings.Join(e.Args, " ")
	if e.Stderr != "" {
		return fmt.Sprintf("%s failed: %s", cmd, e.Stderr)
	}
	return fmt.Sprintf("%s failed: %v", cmd, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

// Repo runs git commands against one working tree.
type Repo struct {
	Root   string
	GitDir string
}

// Open locates the repository containing cwd.
func Open(ctx context.Context, cwd string) (*Repo, error) {
	root, err := RepoRoot(ctx, cwd)
	if err != nil {
		return nil, err
	}
	out, err := runGit(ctx, root, nil, "rev-parse", "--absolute-git-dir")
	if err != nil {
		return nil, err
	}
	gitDir := strings.TrimSpace(string(out))
	if gitDir == "" {
		return nil, errors.New("git rev-parse returned empty git dir")
	}
	return &Repo{Root: root, GitDir: gitDir}, nil
}

// RepoRoot returns the repository root directory for the given working directory.
func RepoRoot(ctx context.Context, cwd string) (string, error) {
	output, err := runGit(ctx, cwd, nil, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	root := strings.TrimSpace(string(output))
	if root == "" {
		return "", fmt.Errorf("git rev-parse returned empty repo root")
	}
	return root, nil
}

// ConflictedPaths returns repo-relative paths with unmerged index entries.
func (r *Repo) ConflictedPaths(ctx context.Context) ([]string, error) {
	return ListUnmergedFiles(ctx, r.Root, "")
}

// ListUnmergedFiles returns repo-relative paths of conflicted files under scopePathspec.
func ListUnmergedFiles(ctx context.Context, repoRoot string, scopePathspec string) ([]string, error) {
	pathspec := scopePathspec
	if pathspec == "" {
		pathspec = "."
	}

	// -z keeps paths verbatim; without it git C-quotes non-ASCII names.
	output, err := runGit(ctx, repoRoot, nil, "diff", "--name-only", "--diff-filter=U", "-z", "--", pathspec)
	if err != nil {
		return nil, err
	}

	fields := bytes.Split(bytes.TrimRight(output, "\x00"), []byte{0})
	if len(fields) == 1 && len(fields[0]) == 0 {
		return nil, nil
	}

	seen := make(map[string]bool, len(fields))
	paths := make([]string, 0, len(fields))
	for _, field := range fields {
		p := string(field)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		paths = append(paths, p)
	}
	return paths, nil
}

func (r *Repo) git(ctx context.Context, args ...string) ([]byte, error) {
	return runGit(ctx, r.Root, nil, args...)
}

func runGit(ctx context.Context, dir string, env []string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, &CommandError{Args: args, Stderr: strings.TrimSpace(stderr.String()), Err: err}
	}
	return stdout.Bytes(), nil
}
