package processor

import (
	"fmt"

	"github.com/nguyentantai21042004/slide-flow/internal/assembler"
	"github.com/nguyentantai21042004/slide-flow/internal/config"
	"github.com/nguyentantai21042004/slide-flow/internal/logger"
	"github.com/nguyentantai21042004/slide-flow/internal/logicalid"
	"github.com/nguyentantai21042004/slide-flow/internal/media"
	"github.com/nguyentantai21042004/slide-flow/internal/synth"
	"github.com/nguyentantai21042004/slide-flow/pkg/executor"
)

// Options carries the caller's choices that are not part of the config
// file.
type Options struct {
	// Jobs overrides performance.max_concurrent when positive.
	Jobs int
	// SkipExisting reuses clips that already exist.
	SkipExisting bool
	// Confirm is asked before the final encode.
	Confirm assembler.ConfirmFunc
	// Synthesizer replaces the provider selected by tts.provider.
	Synthesizer synth.Synthesizer
}

type implProcessor struct {
	cfg      *config.Config
	opts     Options
	scheme   logicalid.Scheme
	executor executor.Executor
	prober   media.Prober
	logger   logger.Logger
}

// New creates a new Processor instance
func New(cfg *config.Config, exec executor.Executor, log logger.Logger, opts Options) (Processor, error) {
	scheme, err := cfg.Scheme()
	if err != nil {
		return nil, fmt.Errorf("build id scheme: %w", err)
	}
	if opts.Jobs <= 0 {
		opts.Jobs = cfg.Performance.MaxConcurrent
	}
	return &implProcessor{
		cfg:      cfg,
		opts:     opts,
		scheme:   scheme,
		executor: exec,
		prober:   media.New(exec, cfg.FFmpeg.FFprobePath),
		logger:   log,
	}, nil
}
