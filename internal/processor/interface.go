package processor

import (
	"context"

	"github.com/nguyentantai21042004/slide-flow/internal/assembler"
	"github.com/nguyentantai21042004/slide-flow/internal/models"
	"github.com/nguyentantai21042004/slide-flow/internal/pairing"
	"github.com/nguyentantai21042004/slide-flow/internal/renderer"
	"github.com/nguyentantai21042004/slide-flow/internal/report"
	"github.com/nguyentantai21042004/slide-flow/internal/synth"
)

// Processor runs the pipeline stages of one project. Every stage records
// what it did into rep when rep is not nil.
type Processor interface {
	// Estimate predicts narration length from the scripts.
	Estimate(ctx context.Context) (synth.Plan, error)
	// Synthesize narrates every script into the project's audio dir.
	Synthesize(ctx context.Context, rep *report.Report) (synth.NarrationBatch, error)
	// Pair matches slide images with narration audio.
	Pair(ctx context.Context, rep *report.Report) (pairing.Result, error)
	// RenderClips pairs and renders a clip for every pair.
	RenderClips(ctx context.Context, rep *report.Report) (renderer.Batch, error)
	// RenderOne renders the clip of a single logical id.
	RenderOne(ctx context.Context, rep *report.Report, id string) (models.RenderedClip, error)
	// Assemble stitches the clips found in the clips dir.
	Assemble(ctx context.Context, rep *report.Report) (assembler.Result, error)
	// Run pairs, renders and assembles in one go.
	Run(ctx context.Context, rep *report.Report) error
	// HandleChanges renders the pairs whose clip is missing. It is the
	// watch mode handler.
	HandleChanges(ctx context.Context, changed []string) error
}
