// Package watch records new versions automatically as tracked files change
// on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"chroni/internal/chroni"
)

// Watcher scans tracked files when the filesystem reports changes to them.
type Watcher struct {
	service *chroni.Service
	fsmgr   chroni.FilesystemManager
	logger  chroni.Logger
}

// New creates a Watcher over the given service.
func New(service *chroni.Service, fsmgr chroni.FilesystemManager, logger chroni.Logger) *Watcher {
	return &Watcher{service: service, fsmgr: fsmgr, logger: logger}
}

// Run watches every tracked path and records a new version whenever an
// actively tracked text file is written or created. Blocks until ctx is
// canceled.
func (w *Watcher) Run(ctx context.Context) error {
	paths, err := w.service.ListTracked()
	if err != nil {
		return fmt.Errorf("listing tracked paths: %w", err)
	}
	if len(paths) == 0 {
		return fmt.Errorf("nothing is tracked")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	roots := WatchRoots(paths, w.fsmgr)
	for _, root := range roots {
		if err := fw.Add(root); err != nil {
			w.logger.Warn("cannot watch path", "path", root, "error", err)
		}
	}
	w.logger.Info("watching", "paths", len(roots))

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			// New subdirectories need their own watch; fsnotify is not
			// recursive.
			if event.Op&fsnotify.Create != 0 && w.fsmgr.IsDir(event.Name) {
				if err := fw.Add(event.Name); err != nil {
					w.logger.Warn("cannot watch path", "path", event.Name, "error", err)
				}
				continue
			}
			changed, err := w.service.ScanPath(event.Name)
			if err != nil {
				w.logger.Warn("scan failed", "path", event.Name, "error", err)
				continue
			}
			if changed {
				w.logger.Info("change recorded", "path", event.Name)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

// WatchRoots maps tracked paths onto the directories to register with
// fsnotify: a tracked directory contributes itself plus its subdirectories,
// a tracked file contributes its parent. Duplicates are removed and order
// preserved.
func WatchRoots(paths []string, fsmgr chroni.FilesystemManager) []string {
	seen := make(map[string]bool)
	var roots []string
	add := func(dir string) {
		if dir != "" && !seen[dir] {
			seen[dir] = true
			roots = append(roots, dir)
		}
	}

	for _, p := range paths {
		switch {
		case fsmgr.IsDir(p):
			add(p)
			// Watch subdirectories too, so nested file writes are seen.
			files, err := fsmgr.FindTextFiles(p)
			if err != nil {
				continue
			}
			for _, f := range files {
				add(filepath.Dir(f))
			}
		case fsmgr.IsFile(p):
			add(filepath.Dir(p))
		}
	}
	return roots
}
