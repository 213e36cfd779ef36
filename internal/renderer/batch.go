package renderer

import (
	"context"
	"errors"
	"time"

	"github.com/nguyentantai21042004/slide-flow/internal/models"
	"golang.org/x/sync/errgroup"
)

type outcome struct {
	clip    models.RenderedClip
	reused  bool
	err     error
	started bool
}

// RenderAll renders every pair, in order when Jobs < 2. A failing pair is
// recorded and the batch moves on. Cancelling ctx stops the batch before
// the next pair starts; renders already running finish.
func (r *implRenderer) RenderAll(ctx context.Context, pairs []models.Pair) Batch {
	jobs := r.opts.Jobs
	if jobs < 1 {
		jobs = 1
	}

	outcomes := make([]outcome, len(pairs))
	runCtx := context.WithoutCancel(ctx)

	var g errgroup.Group
	g.SetLimit(jobs)

	for i, pair := range pairs {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			// A slot may free up only after the cancel arrived.
			if ctx.Err() != nil {
				return nil
			}
			outcomes[i] = r.renderOne(runCtx, i, len(pairs), pair)
			return nil
		})
	}
	_ = g.Wait()

	var stopErr error
	batch := Batch{}
	for i, o := range outcomes {
		if !o.started {
			stopErr = ctx.Err()
			continue
		}
		if o.err != nil {
			var f models.ItemFailure
			if !errors.As(o.err, &f) {
				f = models.ItemFailure{ID: pairs[i].ID, Path: pairs[i].Image.Path, Stage: models.StageEncode, Err: o.err}
			}
			batch.Failures = append(batch.Failures, f)
			continue
		}
		batch.Clips = append(batch.Clips, o.clip)
		if o.reused {
			batch.Reused = append(batch.Reused, o.clip)
		}
	}

	batch.Err = stopErr
	if stopErr != nil {
		r.logger.Warn(ctx, "Clip generation stopped early: %v", stopErr)
	}
	return batch
}

func (r *implRenderer) renderOne(ctx context.Context, i, total int, pair models.Pair) outcome {
	if r.opts.SkipExisting {
		if clip, ok := r.reuse(ctx, pair); ok {
			r.logger.Info(ctx, "[%d/%d] Clip for ID '%s' already exists, skipping: %s", i+1, total, pair.ID, clip.FilePath)
			return outcome{clip: clip, reused: true, started: true}
		}
	}

	start := time.Now()
	r.logger.Info(ctx, "--- Processing Clip %d/%d: %s & %s ---", i+1, total, pair.Image.Name, pair.Audio.Name)

	clip, err := r.Render(ctx, pair)
	if err != nil {
		r.logger.Error(ctx, "Error generating clip for ID '%s' (%s & %s): %v. Skipping this pair.",
			pair.ID, pair.Image.Name, pair.Audio.Name, err)
		return outcome{err: err, started: true}
	}

	r.logger.Info(ctx, "Done! Clip generated: %s. Time Taken: %s", clip.FilePath, elapsed(start))
	return outcome{clip: clip, started: true}
}
