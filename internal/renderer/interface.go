package renderer

import (
	"context"

	"github.com/nguyentantai21042004/slide-flow/internal/models"
)

// Renderer turns image/audio pairs into still-image video clips.
type Renderer interface {
	// Render produces the clip of one pair. Failures are returned as
	// models.ItemFailure.
	Render(ctx context.Context, pair models.Pair) (models.RenderedClip, error)
	// RenderAll renders pairs in order, isolating per-pair failures.
	RenderAll(ctx context.Context, pairs []models.Pair) Batch
}

// Batch is the outcome of RenderAll. Clips keeps pair order.
type Batch struct {
	Clips    models.Timeline
	Reused   []models.RenderedClip
	Failures []models.ItemFailure
	// Err is set when the batch stopped before starting every pair.
	Err error
}
