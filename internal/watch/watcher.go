package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/pagebuilder/internal/logfields"
)

// Op is a change that warrants a rebuild.
type Op string

const (
	OpWrite  Op = "write"
	OpRemove Op = "remove"
	OpRename Op = "rename"
)

// Event is a filtered file system change.
type Event struct {
	Op   Op
	Path string
}

// Watcher delivers changes below a root folder. New folders are watched as
// they appear. Events are not debounced.
type Watcher struct {
	fsw    *fsnotify.Watcher
	root   string
	logger *slog.Logger
}

// NewWatcher watches root and every folder below it.
func NewWatcher(root string, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	w := &Watcher{fsw: fsw, root: root, logger: logger}
	if err := w.addDirsRecursive(root); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// Run calls handle for every relevant event until ctx is done or the
// watcher is closed. handle runs on the calling goroutine.
func (w *Watcher) Run(ctx context.Context, handle func(context.Context, Event)) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					_ = w.addDirsRecursive(ev.Name)
				}
			}
			if e, ok := translate(ev); ok {
				handle(ctx, e)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error", logfields.Error(err))
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// translate keeps write, remove and rename events on regular source files.
// Creating a regular file counts as a write, which covers editors that save
// by renaming a temp file over the target. Created folders are ignored.
func translate(ev fsnotify.Event) (Event, bool) {
	if shouldIgnoreEvent(ev.Name) {
		return Event{}, false
	}
	switch {
	case ev.Has(fsnotify.Write):
		return Event{Op: OpWrite, Path: ev.Name}, true
	case ev.Has(fsnotify.Create):
		if fi, err := os.Stat(ev.Name); err == nil && fi.Mode().IsRegular() {
			return Event{Op: OpWrite, Path: ev.Name}, true
		}
		return Event{}, false
	case ev.Has(fsnotify.Remove):
		return Event{Op: OpRemove, Path: ev.Name}, true
	case ev.Has(fsnotify.Rename):
		return Event{Op: OpRename, Path: ev.Name}, true
	default:
		return Event{}, false
	}
}

func (w *Watcher) addDirsRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			if err := w.fsw.Add(path); err != nil {
				w.logger.Warn("watch add failed", logfields.Path(path), logfields.Error(err))
			}
		}
		return nil
	})
}

// shouldIgnoreEvent returns true for file system events that should not trigger rebuilds.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)

	// Hidden files, editor temp/swap files, OS metadata.
	if strings.HasPrefix(base, ".") ||
		strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}
	return base == "Thumbs.db" || base == "4913"
}
