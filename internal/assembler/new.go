package assembler

import (
	"github.com/nguyentantai21042004/slide-flow/internal/logger"
	"github.com/nguyentantai21042004/slide-flow/internal/media"
	"github.com/nguyentantai21042004/slide-flow/pkg/executor"
)

// Options configures the final encode.
type Options struct {
	Width             int
	Height            int
	FPS               int
	TransitionSeconds float64
	Preset            string
	CRF               int
	AudioBitrate      string
	FFmpegPath        string
	Confirm           ConfirmFunc
	// IDOf, when set, recovers the logical id from a clip path.
	IDOf func(path string) string
}

type implAssembler struct {
	opts     Options
	executor executor.Executor
	prober   media.Prober
	logger   logger.Logger
}

// New creates an Assembler.
func New(opts Options, exec executor.Executor, prober media.Prober, log logger.Logger) Assembler {
	if opts.FFmpegPath == "" {
		opts.FFmpegPath = "ffmpeg"
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = 1920, 1080
	}
	if opts.FPS <= 0 {
		opts.FPS = 24
	}
	if opts.Preset == "" {
		opts.Preset = "faster"
	}
	if opts.CRF == 0 {
		opts.CRF = 23
	}
	if opts.AudioBitrate == "" {
		opts.AudioBitrate = "192k"
	}
	return &implAssembler{
		opts:     opts,
		executor: exec,
		prober:   prober,
		logger:   log,
	}
}
