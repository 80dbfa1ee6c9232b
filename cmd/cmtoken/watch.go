package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"

	"github.com/akavel/cmtoken/htmlrender"
	"github.com/akavel/cmtoken/inline"
)

// runWatch re-renders path to stdout every time it changes, echoing
// _examples/sa6mwa-mdf's live-reparse stream idea. Grounded on
// inful-docbuilder's setupFileWatcher/runPreviewLoop shape, narrowed
// to a single file instead of a recursive directory tree.
func runWatch(path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "creating watcher")
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return errors.Wrapf(err, "watching %s", dir)
	}

	render := func() {
		if err := renderOnce(path); err != nil {
			slog.Error("render failed", "path", path, "error", err)
			return
		}
		slog.Info("rendered", "path", path)
	}
	render()

	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			render()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watcher error", "error", err)
		}
	}
}

func renderOnce(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading %s", path)
	}
	log, src, defs := inline.Document(raw)
	return htmlrender.Render(os.Stdout, log, src, defs)
}
