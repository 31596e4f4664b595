// Package watch notices edits made to the notes backing store by other processes.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Source is the watched collection.
type Source interface {
	// Fingerprint identifies the current stored value ("" when empty).
	Fingerprint(ctx context.Context) (string, error)
	// NotifyExternalChange announces that the stored value changed.
	NotifyExternalChange(ctx context.Context)
}

// DefaultDebounce is how long the watcher waits for writes to settle.
const DefaultDebounce = 200 * time.Millisecond

// Watch watches the directory containing target and, after writes to any file
// whose name starts with target's base name settle, compares the collection
// fingerprint with the last one seen. A change calls src.NotifyExternalChange.
// The base-name prefix covers SQLite's -wal and -shm companions.
//
// Watch blocks until ctx is cancelled.
func Watch(ctx context.Context, target string, debounce time.Duration, src Source, logger *slog.Logger) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.Close()

	dir := filepath.Dir(target)
	prefix := filepath.Base(target)
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watch: add %s: %w", dir, err)
	}

	last, err := src.Fingerprint(ctx)
	if err != nil {
		logger.Warn("watcher: initial fingerprint failed", slog.String("error", err.Error()))
	}
	logger.Info("watcher: started", slog.String("target", target))

	var timer *time.Timer
	var fire <-chan time.Time
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			fire = timer.C
		} else {
			timer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-fire:
			fp, fpErr := src.Fingerprint(ctx)
			if fpErr != nil {
				logger.Warn("watcher: fingerprint failed", slog.String("error", fpErr.Error()))
				continue
			}
			if fp == last {
				continue
			}
			last = fp
			logger.Debug("watcher: collection changed", slog.String("fingerprint", fp))
			src.NotifyExternalChange(ctx)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !strings.HasPrefix(filepath.Base(ev.Name), prefix) {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				schedule()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
