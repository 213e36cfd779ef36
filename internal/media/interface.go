package media

import "context"

// Prober reads container metadata of a media file.
type Prober interface {
	Probe(ctx context.Context, path string) (Info, error)
}

// Info is what the pipeline needs to know about a media file.
type Info struct {
	Path            string
	DurationSeconds float64
	HasVideo        bool
	HasAudio        bool
	Width           int
	Height          int
}
