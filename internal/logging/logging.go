package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Options picks where records go. With neither field set logging is off;
// the terminal belongs to the UI so records never reach stdout or stderr.
type Options struct {
	Debug bool
	File  string
}

// DefaultFile is used when debug logging is on without an explicit file.
func DefaultFile() string {
	return filepath.Join(os.TempDir(), "enkai.log")
}

// Setup installs the default slog logger and returns a close func. Every
// record carries the run's session id.
func Setup(opts Options) (*slog.Logger, func() error, error) {
	if !opts.Debug && opts.File == "" {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		slog.SetDefault(logger)
		return logger, func() error { return nil }, nil
	}

	path := opts.File
	if path == "" {
		path = DefaultFile()
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}
	logger := New(f, level)
	slog.SetDefault(logger)
	return logger, f.Close, nil
}

// New builds a text logger on w tagged with a fresh session id.
func New(w io.Writer, level slog.Level) *slog.Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With("session", uuid.NewString())
}
