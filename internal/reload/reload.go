// Package reload watches the config file and applies safe changes
// without a restart.
package reload

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ApplyFunc receives the freshly loaded configuration. It runs on the
// watcher goroutine and must not block.
type ApplyFunc[T any] func(cfg *T)

// LoadFunc re-reads and validates the configuration file.
type LoadFunc[T any] func(path string) (*T, error)

// Watch starts an fsnotify watcher on the config file's directory and
// reloads on change until ctx is cancelled. Editors replace files via
// rename, so the directory is watched rather than the file itself.
// Writes are debounced; a load or validation failure keeps the running
// configuration and logs a warning.
func Watch[T any](ctx context.Context, path string, load LoadFunc[T], apply ApplyFunc[T]) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	slog.Info("reload: watching config", slog.String("path", abs))

	// reloadTimer debounces bursts of write events from editors.
	var reloadTimer *time.Timer
	var reloadCh <-chan time.Time

	scheduleReload := func() {
		if reloadTimer == nil {
			reloadTimer = time.NewTimer(200 * time.Millisecond)
			reloadCh = reloadTimer.C
		} else {
			reloadTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reloadTimer != nil {
				reloadTimer.Stop()
			}
			slog.Info("reload: stopped")
			return nil

		case <-reloadCh:
			cfg, loadErr := load(abs)
			if loadErr != nil {
				slog.Warn("reload: config rejected, keeping current",
					slog.String("error", loadErr.Error()))
				continue
			}
			apply(cfg)
			slog.Info("reload: config applied")

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				scheduleReload()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Error("reload: watcher error", slog.String("error", watchErr.Error()))
		}
	}
}
