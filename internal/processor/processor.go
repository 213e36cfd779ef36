package processor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nguyentantai21042004/slide-flow/internal/assembler"
	"github.com/nguyentantai21042004/slide-flow/internal/models"
	"github.com/nguyentantai21042004/slide-flow/internal/pairing"
	"github.com/nguyentantai21042004/slide-flow/internal/renderer"
	"github.com/nguyentantai21042004/slide-flow/internal/report"
	"github.com/nguyentantai21042004/slide-flow/internal/synth"
	"github.com/nguyentantai21042004/slide-flow/pkg/durfmt"
)

// ErrUnknownID is returned by RenderOne when no pair has the id.
var ErrUnknownID = errors.New("no image-audio pair with this id")

func (p *implProcessor) Estimate(ctx context.Context) (synth.Plan, error) {
	n := synth.NewNarrator(synth.NarratorOptions{
		ScriptsDir:     p.cfg.Paths.Scripts,
		WordsPerSecond: p.cfg.TTS.WordsPerSecond,
	}, nil, p.executor, p.prober, p.logger)

	p.logger.Info(ctx, "--- Estimated Audio Length for Scripts in %s ---", p.cfg.Paths.Scripts)
	return n.Plan(ctx)
}

func (p *implProcessor) Synthesize(ctx context.Context, rep *report.Report) (synth.NarrationBatch, error) {
	n, err := p.narrator()
	if err != nil {
		return synth.NarrationBatch{}, fmt.Errorf("create synthesizer: %w", err)
	}

	p.banner(ctx, "Synthesizing narration: %s -> %s", p.cfg.Paths.Scripts, p.cfg.AudioDir())
	start := time.Now()

	batch, err := n.NarrateAll(ctx)
	if rep != nil {
		rep.AddNarrations(batch)
	}
	if err != nil {
		return batch, err
	}

	p.banner(ctx, "Narration finished: %d files, %d failed, in %s",
		len(batch.Narrations), len(batch.Failures), durfmt.FormatElapsed(time.Since(start)))
	return batch, nil
}

func (p *implProcessor) Pair(ctx context.Context, rep *report.Report) (pairing.Result, error) {
	res, err := p.engine().Collect(ctx)
	if rep != nil {
		rep.AddPairing(res, err)
	}
	return res, err
}

func (p *implProcessor) RenderClips(ctx context.Context, rep *report.Report) (renderer.Batch, error) {
	pairs, err := p.Pair(ctx, rep)
	if err != nil {
		return renderer.Batch{}, err
	}

	p.banner(ctx, "Generating %d clips into %s", len(pairs.Pairs), p.cfg.ClipsDir())
	p.removeStalePartials(ctx, p.cfg.ClipsDir())
	start := time.Now()

	batch := p.renderer(p.opts.SkipExisting).RenderAll(ctx, pairs.Pairs)
	if rep != nil {
		rep.AddClips(batch)
	}

	p.banner(ctx, "Clip generation finished: %d generated (%d reused), %d failed, in %s",
		len(batch.Clips), len(batch.Reused), len(batch.Failures), durfmt.FormatElapsed(time.Since(start)))
	return batch, batch.Err
}

func (p *implProcessor) RenderOne(ctx context.Context, rep *report.Report, id string) (models.RenderedClip, error) {
	pairs, err := p.Pair(ctx, rep)
	if err != nil {
		return models.RenderedClip{}, err
	}

	canonical, ok := p.scheme.Extract(models.KindVideo, p.cfg.Project+"_clip_"+id+".mp4")
	if !ok {
		canonical = id
	}
	pair, ok := pairs.Find(canonical)
	if !ok {
		return models.RenderedClip{}, fmt.Errorf("%w: %s (available: %v)", ErrUnknownID, id, pairs.IDs())
	}

	p.logger.Info(ctx, "--- Processing Clip for ID '%s': %s & %s ---", pair.ID, pair.Image.Name, pair.Audio.Name)
	clip, err := p.renderer(false).Render(ctx, pair)

	if rep != nil {
		var batch renderer.Batch
		if err != nil {
			var f models.ItemFailure
			if !errors.As(err, &f) {
				f = models.ItemFailure{ID: pair.ID, Path: pair.Image.Path, Stage: models.StageEncode, Err: err}
			}
			batch.Failures = append(batch.Failures, f)
		} else {
			batch.Clips = append(batch.Clips, clip)
		}
		rep.AddClips(batch)
	}
	return clip, err
}

func (p *implProcessor) Assemble(ctx context.Context, rep *report.Report) (assembler.Result, error) {
	paths, err := p.clipPaths(ctx)
	if err != nil {
		return assembler.Result{}, err
	}
	return p.assemble(ctx, rep, paths)
}

// Run processes the whole project: pair, render, then stitch the clips of
// this run in pair order.
func (p *implProcessor) Run(ctx context.Context, rep *report.Report) error {
	startTime := time.Now()

	p.banner(ctx, "Starting project: %s", p.cfg.Project)

	batch, err := p.RenderClips(ctx, rep)
	if err != nil {
		return fmt.Errorf("render clips: %w", err)
	}

	paths := make([]string, 0, len(batch.Clips))
	for _, c := range batch.Clips {
		paths = append(paths, c.FilePath)
	}
	res, err := p.assemble(ctx, rep, paths)
	if err != nil {
		return fmt.Errorf("assemble: %w", err)
	}

	p.logger.Info(ctx, "========================================")
	p.logger.Info(ctx, "Processing completed!")
	p.logger.Info(ctx, "Output video: %s", res.OutputPath)
	p.logger.Info(ctx, "Video length: %s", durfmt.Format(res.FinalSeconds))
	p.logger.Info(ctx, "Processing time: %s", durfmt.FormatElapsed(time.Since(startTime)))
	p.logger.Info(ctx, "========================================")
	return nil
}

func (p *implProcessor) assemble(ctx context.Context, rep *report.Report, paths []string) (assembler.Result, error) {
	out := p.cfg.FinalVideoPath()
	p.banner(ctx, "Assembling %d clips into %s", len(paths), out)
	p.removeStalePartials(ctx, p.cfg.FinalDir())

	res, err := p.assembler().Assemble(ctx, paths, out)
	if rep != nil {
		if err != nil {
			res.OutputPath = ""
		}
		rep.AddAssembly(res)
	}
	return res, err
}

func (p *implProcessor) HandleChanges(ctx context.Context, changed []string) error {
	p.logger.Info(ctx, "%d new or changed files, checking for clips to render", len(changed))

	pairs, err := p.engine().Collect(ctx)
	if err != nil {
		return err
	}
	if len(pairs.Pairs) == 0 {
		return nil
	}

	batch := p.renderer(true).RenderAll(ctx, pairs.Pairs)
	rendered := len(batch.Clips) - len(batch.Reused)
	p.logger.Info(ctx, "Watch pass done: %d rendered, %d already present, %d failed",
		rendered, len(batch.Reused), len(batch.Failures))

	if len(batch.Failures) > 0 {
		return fmt.Errorf("%d clips failed", len(batch.Failures))
	}
	return batch.Err
}

func (p *implProcessor) banner(ctx context.Context, msg string, args ...interface{}) {
	p.logger.Info(ctx, "========================================")
	p.logger.Info(ctx, msg, args...)
	p.logger.Info(ctx, "========================================")
}
