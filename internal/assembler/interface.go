package assembler

import (
	"context"
	"time"

	"github.com/nguyentantai21042004/slide-flow/internal/models"
)

// Assembler stitches rendered clips into one video.
type Assembler interface {
	Assemble(ctx context.Context, clipPaths []string, outputPath string) (Result, error)
}

// Estimate is what the validation pass learned before any encoding.
type Estimate struct {
	Clips   models.Timeline
	Dropped []Dropped
	Seconds float64
}

// ConfirmFunc lets a caller inspect the estimate and abort before the
// encode. A nil ConfirmFunc never blocks.
type ConfirmFunc func(ctx context.Context, est Estimate) bool

// Dropped is a clip left out because it could not be read.
type Dropped struct {
	Path string
	Err  error
}

// Result describes a finished assembly.
type Result struct {
	OutputPath       string
	Clips            models.Timeline
	Dropped          []Dropped
	EstimatedSeconds float64
	// FinalSeconds is the sum of the assembled clip durations. Fades sit
	// inside each clip, so this is also the length of the output.
	FinalSeconds float64
	// OutputSeconds is the duration ffprobe reports for the written file.
	OutputSeconds float64
	EncodeTime    time.Duration
}
