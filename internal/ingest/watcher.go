package ingest

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch starts an fsnotify watcher over every root and re-walks a root
// after its contents change, until ctx is cancelled. Walks are
// idempotent, so a re-walk only writes what is genuinely new; events
// are debounced per run so a burst of changes triggers one pass.
//
// Directories created at runtime are added to the watch list before
// the re-walk picks up their files.
func (ing *Ingestor) Watch(ctx context.Context, roots []string, debounce time.Duration) error {
	if debounce <= 0 {
		debounce = time.Second
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	for _, root := range roots {
		if err := addDirsRecursive(w, root); err != nil {
			return err
		}
	}

	ing.logger.Info("watcher: started", slog.Int("roots", len(roots)))

	dirty := make(map[string]struct{})
	var walkTimer *time.Timer
	var walkCh <-chan time.Time

	scheduleWalk := func() {
		if walkTimer == nil {
			walkTimer = time.NewTimer(debounce)
			walkCh = walkTimer.C
		} else {
			walkTimer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if walkTimer != nil {
				walkTimer.Stop()
			}
			ing.logger.Info("watcher: stopped")
			return nil

		case <-walkCh:
			for root := range dirty {
				if err := ing.ProcessDirectory(ctx, root, nil); err != nil {
					ing.logger.Warn("watcher: re-walk failed",
						slog.String("root", root),
						slog.String("error", err.Error()))
				}
				delete(dirty, root)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						ing.logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
					if root := owningRoot(roots, ev.Name); root != "" {
						dirty[root] = struct{}{}
						scheduleWalk()
					}
					continue
				}
			}

			if !isMarkdown(ev.Name) || ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			root := owningRoot(roots, ev.Name)
			if root == "" {
				continue
			}
			ing.logger.Debug("watcher: change", slog.String("path", ev.Name), slog.String("op", ev.Op.String()))
			dirty[root] = struct{}{}
			scheduleWalk()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			ing.logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// owningRoot returns the root that contains path, or empty.
func owningRoot(roots []string, path string) string {
	for _, root := range roots {
		if path == root || strings.HasPrefix(path, root+string(os.PathSeparator)) {
			return root
		}
	}
	return ""
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
