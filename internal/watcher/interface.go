package watcher

import "context"

// Watcher monitors the slide input directories.
type Watcher interface {
	Start(ctx context.Context) error
	Stop() error
}

// EventHandler receives the files that appeared or changed since the last
// call, sorted. Calls never overlap.
type EventHandler func(ctx context.Context, changed []string) error
