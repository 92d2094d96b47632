package main

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/odvcencio/dotlog/pkg/repo"
)

// watchWorktree calls onChange after each burst of filesystem events in
// the working tree, once no event has arrived for debounce. Events under
// ignored paths, the metadata directory included, are dropped. It returns
// when ctx is done.
func watchWorktree(ctx context.Context, r *repo.Repo, debounce time.Duration, onChange func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	ig, err := r.Ignores()
	if err != nil {
		return err
	}
	if err := addWatches(w, r.RootDir, ig); err != nil {
		return err
	}

	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ignoredPath(r.RootDir, ev.Name, ig) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := addWatches(w, ev.Name, ig); err != nil {
						r.Logger.Warn("watch new directory", "path", ev.Name, "err", err)
					}
				}
			}
			fire = time.After(debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			r.Logger.Warn("watch error", "err", err)
		case <-fire:
			fire = nil
			onChange()
		}
	}
}

// addWatches watches dir and every non-ignored directory below it.
func addWatches(w *fsnotify.Watcher, dir string, ig *repo.Ignores) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			// Directories can vanish while the tree is being walked.
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != dir && ig.Match(d.Name()) {
			return filepath.SkipDir
		}
		return w.Add(p)
	})
}

// ignoredPath reports whether any component of p below root is ignored.
func ignoredPath(root, p string, ig *repo.Ignores) bool {
	rel, err := filepath.Rel(root, p)
	if err != nil || rel == "." {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if ig.Match(part) {
			return true
		}
	}
	return false
}
