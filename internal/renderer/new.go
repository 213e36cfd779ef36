package renderer

import (
	"github.com/nguyentantai21042004/slide-flow/internal/logger"
	"github.com/nguyentantai21042004/slide-flow/internal/media"
	"github.com/nguyentantai21042004/slide-flow/pkg/executor"
)

// Options configures clip rendering.
type Options struct {
	Project      string
	ClipsDir     string
	TempDir      string
	Width        int
	Height       int
	FPS          int
	Fit          string
	Preset       string
	CRF          int
	AudioBitrate string
	FFmpegPath   string
	// Jobs bounds concurrent renders; values below 2 render sequentially.
	Jobs int
	// SkipExisting reuses clips that already exist and probe cleanly.
	SkipExisting bool
}

type implRenderer struct {
	opts     Options
	executor executor.Executor
	prober   media.Prober
	logger   logger.Logger
}

// New creates a Renderer.
func New(opts Options, exec executor.Executor, prober media.Prober, log logger.Logger) Renderer {
	if opts.FFmpegPath == "" {
		opts.FFmpegPath = "ffmpeg"
	}
	if opts.Preset == "" {
		opts.Preset = "medium"
	}
	if opts.CRF == 0 {
		opts.CRF = 23
	}
	if opts.AudioBitrate == "" {
		opts.AudioBitrate = "192k"
	}
	if opts.FPS <= 0 {
		opts.FPS = 24
	}
	return &implRenderer{
		opts:     opts,
		executor: exec,
		prober:   prober,
		logger:   log,
	}
}
