/*
Copyright 2026 The qscan Authors. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package validate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"bokiquiz.dev/qscan/internal/logger"
	"bokiquiz.dev/qscan/internal/project"
	"bokiquiz.dev/qscan/validator"
)

// debounce is how long a file must stay quiet before it is re-validated.
const debounce = 300 * time.Millisecond

// watchFiles validates files, then again each time one of them settles after
// a change, until interrupted. Directories are watched so that editors
// which save by rename are still seen.
func watchFiles(ctx context.Context, w io.Writer, p *project.Project, v *validator.Validator, files []string, opts options) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("error creating watcher: %w", err)
	}
	defer watcher.Close()

	watched := make([]string, 0, len(files))
	for _, f := range files {
		watched = append(watched, p.Absolute(f))
	}
	for _, dir := range watchDirs(watched) {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("error watching %s: %w", dir, err)
		}
		logger.Debug("watching %s", dir)
	}

	rerun := func() {
		if _, err := validateOnce(ctx, w, p, v, files, opts); err != nil && !errors.Is(err, ErrValidationFailed) {
			logger.Error("%v", err)
		}
	}
	rerun()

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(debounce / 3)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(event, watched) {
				continue
			}
			pending[filepath.Clean(event.Name)] = time.Now()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error: %v", err)

		case <-ticker.C:
			if !settled(pending, time.Now()) {
				continue
			}
			for path := range pending {
				logger.Info("changed: %s", path)
			}
			clear(pending)
			rerun()
		}
	}
}

// watchDirs returns the distinct parent directories of files.
func watchDirs(files []string) []string {
	var dirs []string
	for _, f := range files {
		dir := filepath.Dir(f)
		if !slices.Contains(dirs, dir) {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

func relevant(event fsnotify.Event, files []string) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	return slices.Contains(files, filepath.Clean(event.Name))
}

// settled reports whether there are pending changes and all of them are
// older than the debounce window.
func settled(pending map[string]time.Time, now time.Time) bool {
	if len(pending) == 0 {
		return false
	}
	for _, at := range pending {
		if now.Sub(at) < debounce {
			return false
		}
	}
	return true
}
