package pairing

import (
	"context"
	"fmt"

	"github.com/nguyentantai21042004/slide-flow/internal/models"
	"github.com/nguyentantai21042004/slide-flow/internal/scan"
)

// Collect scans both directories before pairing; a missing directory
// aborts the run with no partial result.
func (e *implEngine) Collect(ctx context.Context) (Result, error) {
	images, err := scan.Dir(e.imageDir, models.KindImage)
	if err != nil {
		return Result{}, err
	}
	audios, err := scan.Dir(e.audioDir, models.KindAudio)
	if err != nil {
		return Result{}, err
	}

	e.logger.Info(ctx, "Scanned %d images in %s and %d audio files in %s (scheme: %s)",
		len(images), e.imageDir, len(audios), e.audioDir, e.scheme.Name())

	res, err := Pair(images, audios, e.scheme)
	if err != nil {
		return Result{}, fmt.Errorf("pair files: %w", err)
	}

	for _, a := range res.UnmatchedImages {
		if a.LogicalID == "" {
			e.logger.Warn(ctx, "Could not extract logical ID from image: %s. Skipping.", a.Name)
			continue
		}
		e.logger.Warn(ctx, "No audio found for logical ID '%s' (image %s). Skipping.", a.LogicalID, a.Name)
	}
	for _, a := range res.UnmatchedAudio {
		if a.LogicalID == "" {
			e.logger.Warn(ctx, "Could not extract logical ID from audio: %s. Skipping.", a.Name)
			continue
		}
		e.logger.Warn(ctx, "No image found for logical ID '%s' (audio %s). Skipping.", a.LogicalID, a.Name)
	}

	if len(res.Pairs) == 0 {
		e.logger.Warn(ctx, "No matching image-audio pairs found")
	} else {
		e.logger.Info(ctx, "Found %d matching image-audio pairs", len(res.Pairs))
	}
	return res, nil
}
