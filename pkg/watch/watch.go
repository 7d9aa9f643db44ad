// Package watch re-runs a callback when a file changes on disk.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/akam1o/guidl/pkg/errors"
	"github.com/akam1o/guidl/pkg/logger"
)

// relevant covers writes, creation and the rename-over of editors that save atomically
const relevant = fsnotify.Write | fsnotify.Create | fsnotify.Rename

// Watcher invokes OnChange after the watched file settles
type Watcher struct {
	path     string
	debounce time.Duration
	onChange func(ctx context.Context, path string)
	log      *logger.Logger
}

// New creates a watcher for path. onChange runs on the watcher's goroutine,
// never concurrently with itself.
func New(path string, debounce time.Duration, onChange func(ctx context.Context, path string), log *logger.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeWatch, fmt.Sprintf("Invalid watch path: %s", path), "", "")
	}
	if log == nil {
		log = logger.Discard("watch")
	}
	return &Watcher{
		path:     abs,
		debounce: debounce,
		onChange: onChange,
		log:      log,
	}, nil
}

// Path returns the absolute path being watched
func (w *Watcher) Path() string {
	return w.path
}

// Run watches until ctx is canceled. The parent directory is watched rather
// than the file so that replace-on-save keeps being observed.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeWatch, "Failed to create file watcher", "", "")
	}
	defer fw.Close()

	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		return errors.Wrap(err, errors.ErrCodeWatch,
			fmt.Sprintf("Failed to watch directory: %s", dir),
			"The directory does not exist or is not readable",
			"Check the path of the file to watch",
		)
	}

	w.log.Info("Watching file", slog.String("path", w.path))

	// Armed by the first matching event
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path || ev.Op&relevant == 0 {
				continue
			}
			w.log.Debug("File event", slog.String("op", ev.Op.String()))
			timer.Reset(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("Watcher error", slog.Any("error", err))

		case <-timer.C:
			w.onChange(ctx, w.path)
		}
	}
}
