// Package watch re-runs the ingestion pipeline when files under a directory change.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sha1n/docindex/internal/ingest"
)

// RunFunc performs one full pass over the watched tree.
type RunFunc func(ctx context.Context) error

// Watcher runs a RunFunc once, then again after every quiet period following
// a change under the root. Excluded directories are never watched.
type Watcher struct {
	root     string
	debounce time.Duration
	run      RunFunc
	ignore   []string
}

// New creates a watcher for root. Changes at or below any ignore path do not
// trigger a run, which keeps an index stored inside root from re-triggering itself.
func New(root string, debounce time.Duration, run RunFunc, ignore ...string) *Watcher {
	cleaned := make([]string, 0, len(ignore))
	for _, p := range ignore {
		if p != "" {
			cleaned = append(cleaned, absPath(p))
		}
	}
	return &Watcher{
		root:     root,
		debounce: debounce,
		run:      run,
		ignore:   cleaned,
	}
}

// Watch blocks until ctx is done. A failed run is logged and watching continues.
func (w *Watcher) Watch(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = fsw.Close() }()

	if err := w.addTree(fsw, w.root); err != nil {
		return err
	}

	w.runOnce(ctx)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()
	pending := false

	for {
		select {
		case <-ctx.Done():
			slog.Info("Stopped watching", "root", w.root)
			return nil

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			slog.Debug("Change detected", "path", ev.Name, "op", ev.Op.String())

			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := w.addTree(fsw, ev.Name); err != nil {
						slog.Warn("Failed to watch new directory", "path", ev.Name, "error", err)
					}
				}
			}

			timer.Reset(w.debounce)
			pending = true

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("File watcher error", "error", err)

		case <-timer.C:
			if pending {
				pending = false
				w.runOnce(ctx)
			}
		}
	}
}

func (w *Watcher) runOnce(ctx context.Context) {
	if err := w.run(ctx); err != nil {
		slog.Error("Run failed, waiting for further changes", "root", w.root, "error", err)
	}
}

// relevant filters out events that cannot change the pipeline result.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	if ingest.IsExcludedDir(filepath.Base(ev.Name)) {
		return false
	}
	return !w.ignored(ev.Name)
}

func (w *Watcher) ignored(path string) bool {
	abs := absPath(path)
	for _, p := range w.ignore {
		if abs == p || strings.HasPrefix(abs, p+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// addTree watches dir and every directory below it that the pipeline would walk.
func (w *Watcher) addTree(fsw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return fmt.Errorf("failed to watch %s: %w", path, err)
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if ingest.IsExcludedDir(d.Name()) || w.ignored(path) {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			if path == dir {
				return fmt.Errorf("failed to watch %s: %w", path, err)
			}
			slog.Debug("Skipping unwatchable directory", "path", path, "error", err)
		}
		return nil
	})
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
