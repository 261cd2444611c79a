package artifact

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settleDelay coalesces the burst of events a single write produces.
const settleDelay = 100 * time.Millisecond

// Watch calls onChange whenever the artifact at path is created, written or
// renamed into place, until ctx is done. The parent directory is watched so
// atomic replacement is observed.
func Watch(ctx context.Context, path string, onChange func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("invalid artifact path: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}
	slog.Debug("watching index artifact", "path", abs)

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !affects(ev, abs) {
				continue
			}
			slog.Debug("index artifact changed", "op", ev.Op.String())
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(settleDelay, onChange)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Warn("artifact watcher error", "error", err)
		}
	}
}

// affects reports whether ev leaves new content at path.
func affects(ev fsnotify.Event, path string) bool {
	name, err := filepath.Abs(ev.Name)
	if err != nil || name != path {
		return false
	}
	return ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write)
}
