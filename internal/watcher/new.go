package watcher

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/nguyentantai21042004/slide-flow/internal/logger"
	"github.com/nguyentantai21042004/slide-flow/internal/models"
)

// Dir is a watched directory and the kind of file it holds.
type Dir struct {
	Path string
	Kind models.MediaKind
}

// DefaultDebounce is used when New gets a non-positive debounce.
const DefaultDebounce = 1500 * time.Millisecond

// New creates a Watcher over dirs. handler runs once the directories have
// been quiet for debounce.
func New(dirs []Dir, handler EventHandler, log logger.Logger, debounce time.Duration) (Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	kinds := make(map[string]models.MediaKind, len(dirs))
	for _, d := range dirs {
		if err := watcher.Add(d.Path); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("add watch path %s: %w", d.Path, err)
		}
		kinds[filepath.Clean(d.Path)] = d.Kind
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &implWatcher{
		dirs:     dirs,
		kinds:    kinds,
		handler:  handler,
		logger:   log,
		watcher:  watcher,
		debounce: debounce,
	}, nil
}
