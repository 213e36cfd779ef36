package pairing

import (
	"github.com/nguyentantai21042004/slide-flow/internal/logger"
	"github.com/nguyentantai21042004/slide-flow/internal/logicalid"
)

type implEngine struct {
	imageDir string
	audioDir string
	scheme   logicalid.Scheme
	logger   logger.Logger
}

// New creates an Engine over the two input directories.
func New(imageDir, audioDir string, scheme logicalid.Scheme, log logger.Logger) Engine {
	return &implEngine{
		imageDir: imageDir,
		audioDir: audioDir,
		scheme:   scheme,
		logger:   log,
	}
}
