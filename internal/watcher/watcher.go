package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/nguyentantai21042004/slide-flow/internal/logger"
	"github.com/nguyentantai21042004/slide-flow/internal/models"
	"github.com/nguyentantai21042004/slide-flow/internal/scan"
)

type implWatcher struct {
	dirs     []Dir
	kinds    map[string]models.MediaKind
	handler  EventHandler
	logger   logger.Logger
	watcher  *fsnotify.Watcher
	debounce time.Duration
}

// Start blocks until ctx is done. Matching files are collected until no
// new event has arrived for the debounce period, then handed to the
// handler in one call.
func (w *implWatcher) Start(ctx context.Context) error {
	for _, d := range w.dirs {
		w.logger.Info(ctx, "Watching %s for new %s files (%v)", d.Path, d.Kind, scan.Extensions(d.Kind))
	}

	var (
		pending = make(map[string]struct{})
		timer   *time.Timer
		fire    <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info(ctx, "File watcher stopped")
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !w.relevant(event.Name) {
				w.logger.Debug(ctx, "Ignoring %s", event.Name)
				continue
			}
			if _, seen := pending[event.Name]; !seen {
				w.logger.Info(ctx, "Detected: %s", event.Name)
			}
			pending[event.Name] = struct{}{}

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			clear(pending)

			if err := w.handler(ctx, changed); err != nil {
				w.logger.Error(ctx, "Failed to process %d changed files: %v", len(changed), err)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error(ctx, "Watcher error: %v", err)
		}
	}
}

// Stop closes the file watcher
func (w *implWatcher) Stop() error {
	return w.watcher.Close()
}

func (w *implWatcher) relevant(path string) bool {
	kind, ok := w.kinds[filepath.Dir(path)]
	if !ok {
		return false
	}
	return scan.Matches(kind, filepath.Base(path))
}
