package pairing

import "context"

// Engine scans the image and audio directories and pairs their files.
type Engine interface {
	Collect(ctx context.Context) (Result, error)
}
