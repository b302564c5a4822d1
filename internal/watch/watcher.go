// Package watch revalidates documents as they change on disk.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/docmeta/internal/models"
	"github.com/starford/docmeta/internal/scan"
	"github.com/starford/docmeta/internal/storage"
)

// Event kinds.
const (
	KindValidated = "validated"
	KindRemoved   = "removed"
)

// Event describes a watcher-driven revalidation.
type Event struct {
	Kind   string         `json:"kind"`
	Path   string         `json:"path"`
	Result *models.Result `json:"result,omitempty"`
}

// Callback is called for every document validated or removed by the watcher.
type Callback func(Event)

type watcher struct {
	fsw     *fsnotify.Watcher
	store   *storage.FS
	scanner *scan.Scanner
	logger  *slog.Logger
	cb      Callback
	// last holds the checksum of the last validated content per relative path.
	last map[string]string
}

// Watch watches the document root and revalidates Markdown files on create
// or write until ctx is cancelled. New directories are added to the watch
// list at runtime; hidden and excluded directories are ignored.
func Watch(ctx context.Context, store *storage.FS, s *scan.Scanner, logger *slog.Logger, cb Callback) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	w := &watcher{
		fsw:     fsw,
		store:   store,
		scanner: s,
		logger:  logger,
		cb:      cb,
		last:    make(map[string]string),
	}
	if err := w.addDirsRecursive(store.Root()); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", store.Root()))

	// Editors often emit several writes per save; coalesce them per path.
	const settle = 100 * time.Millisecond
	pending := make(map[string]struct{})
	var timer *time.Timer
	var timerCh <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-timerCh:
			for rel := range pending {
				w.validate(rel)
			}
			clear(pending)
			timerCh = nil

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			absPath := ev.Name

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
					if w.store.Skip(info.Name()) {
						continue
					}
					if addErr := w.addDirsRecursive(absPath); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", absPath),
							slog.String("error", addErr.Error()))
					}
					w.validateDir(absPath)
					continue
				}
			}

			if !strings.HasSuffix(absPath, ".md") {
				continue
			}
			rel, relErr := filepath.Rel(w.store.Root(), absPath)
			if relErr != nil {
				continue
			}
			rel = filepath.ToSlash(rel)

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				pending[rel] = struct{}{}
				if timer == nil {
					timer = time.NewTimer(settle)
				} else {
					timer.Reset(settle)
				}
				timerCh = timer.C

			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				delete(pending, rel)
				delete(w.last, rel)
				logger.Debug("watcher: removed", slog.String("path", rel))
				w.emit(Event{Kind: KindRemoved, Path: w.scanner.DisplayPath(rel)})
			}

		case watchErr, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// validate revalidates rel unless its content is unchanged since the last run.
func (w *watcher) validate(rel string) {
	res := w.scanner.File(rel)
	if res.Checksum != "" && w.last[rel] == res.Checksum {
		return
	}
	if res.Checksum != "" {
		w.last[rel] = res.Checksum
	}
	w.logger.Debug("watcher: validated",
		slog.String("path", rel),
		slog.Int("errors", len(res.Errors)),
		slog.Int("warnings", len(res.Warnings)))
	w.emit(Event{Kind: KindValidated, Path: res.Path, Result: &res})
}

// validateDir validates every Markdown file already present in a new directory.
func (w *watcher) validateDir(dir string) {
	rel, err := filepath.Rel(w.store.Root(), dir)
	if err != nil {
		return
	}
	paths, err := w.store.List(rel)
	if err != nil {
		w.logger.Warn("watcher: list new dir failed", slog.String("path", dir), slog.String("error", err.Error()))
		return
	}
	for _, p := range paths {
		w.validate(p)
	}
}

func (w *watcher) emit(ev Event) {
	if w.cb != nil {
		w.cb(ev)
	}
}

// addDirsRecursive adds root and all non-excluded subdirectories to the watcher.
func (w *watcher) addDirsRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.store.Skip(d.Name()) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}
