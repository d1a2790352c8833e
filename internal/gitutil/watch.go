package gitutil

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher signals when git's index or refs change underneath a running
// session, e.g. after a commit from another terminal.
type Watcher struct {
	watcher *fsnotify.Watcher
	changes chan struct{}
}

// watchedNames are files git replaces by rename, so the directory is watched
// and events are filtered by base name.
var watchedNames = map[string]bool{
	"index":      true,
	"HEAD":       true,
	"MERGE_HEAD": true,
	"ORIG_HEAD":  true,
}

func NewWatcher(gitDir string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(gitDir); err != nil {
		fw.Close()
		return nil, err
	}
	return &Watcher{watcher: fw, changes: make(chan struct{}, 1)}, nil
}

// Changes delivers at most one pending notification; bursts coalesce.
func (w *Watcher) Changes() <-chan struct{} { return w.changes }

// Start pumps events until ctx is done or the watcher is closed. Run it in a
// goroutine.
func (w *Watcher) Start(ctx context.Context) {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !relevant(event) {
				continue
			}
			select {
			case w.changes <- struct{}{}:
			default:
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("git dir watcher error", "error", err)
		case <-ctx.Done():
			return
		}
	}
}

func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func relevant(event fsnotify.Event) bool {
	if !watchedNames[filepath.Base(event.Name)] {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0
}
