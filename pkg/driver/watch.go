package driver

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// watchDebounce lets bursts of editor writes settle before a file is re-run.
const watchDebounce = 100 * time.Millisecond

// Watch transforms JavaScript files under dir whenever they are created or
// written, calling onResult for each, until ctx is done. New subdirectories
// are watched as they appear.
func (d *Driver) Watch(ctx context.Context, dir string, onResult func(FileResult)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer w.Close()

	if err := d.watchTree(w, dir); err != nil {
		return err
	}
	d.logger.Info("watching", zap.String("dir", dir))

	pending := make(map[string]bool)
	timer := time.NewTimer(watchDebounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := d.watchTree(w, ev.Name); err != nil {
						d.logger.Warn("cannot watch new directory", zap.String("dir", ev.Name), zap.Error(err))
					}
					continue
				}
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 || !IsSourceFile(ev.Name) || d.isOutput(ev.Name) {
				continue
			}
			pending[ev.Name] = true
			timer.Reset(watchDebounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			d.logger.Warn("watch error", zap.Error(err))

		case <-timer.C:
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			clear(pending)

			results, err := d.TransformFiles(ctx, paths)
			if err != nil {
				return nil
			}
			for _, res := range results {
				onResult(res)
			}
		}
	}
}

// watchTree adds dir and every directory below it, skipping the ones
// CollectFiles skips and the output directory.
func (d *Driver) watchTree(w *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			return nil
		}
		if path != dir && (skipDir(entry.Name()) || d.isOutput(path)) {
			return filepath.SkipDir
		}
		if err := w.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

// isOutput reports whether path lies inside the output directory.
func (d *Driver) isOutput(path string) bool {
	if d.opts.OutDir == "" {
		return false
	}
	rel, err := filepath.Rel(d.opts.OutDir, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
