package assembler

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/nguyentantai21042004/slide-flow/internal/models"
	"github.com/nguyentantai21042004/slide-flow/pkg/durfmt"
)

// Assemble validates the clips, re-opens the survivors and encodes them in
// the given order. Clip files are only read. The output is written to a
// hidden partial file and renamed into place after a successful encode.
func (a *implAssembler) Assemble(ctx context.Context, clipPaths []string, outputPath string) (Result, error) {
	res := Result{OutputPath: outputPath}

	a.logger.Info(ctx, "Validating %d clips...", len(clipPaths))
	est := a.validate(ctx, clipPaths)
	res.Dropped = est.Dropped
	res.EstimatedSeconds = est.Seconds

	if len(est.Clips) == 0 {
		return res, ErrNoClips
	}
	a.logger.Info(ctx, "%d valid clips, %d dropped. Estimated final video length: %s",
		len(est.Clips), len(est.Dropped), durfmt.Format(est.Seconds))

	if a.opts.Confirm != nil && !a.opts.Confirm(ctx, est) {
		return res, ErrAborted
	}

	clips, dropped := a.open(ctx, est.Clips)
	res.Dropped = append(res.Dropped, dropped...)
	if len(clips) == 0 {
		return res, ErrNoClips
	}
	res.Clips = clips
	res.FinalSeconds = clips.TotalSeconds()

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return res, &EncodeError{Output: outputPath, Err: fmt.Errorf("create output dir: %w", err)}
	}
	partial := partialPath(outputPath)
	defer a.removeFile(ctx, partial)

	args := a.buildArgs(clips, partial)
	a.logger.Info(ctx, "Concatenating %d clips with %.2fs transitions into %s", len(clips), a.opts.TransitionSeconds, outputPath)
	a.logger.Debug(ctx, "ffmpeg %s", strings.Join(args, " "))

	start := time.Now()
	if _, err := a.executor.Execute(ctx, a.opts.FFmpegPath, args...); err != nil {
		return res, &EncodeError{Output: outputPath, Err: err}
	}
	res.EncodeTime = time.Since(start)

	if err := os.Rename(partial, outputPath); err != nil {
		return res, &EncodeError{Output: outputPath, Err: fmt.Errorf("move output into place: %w", err)}
	}

	a.crossCheck(ctx, &res)

	a.logger.Info(ctx, "Final video written: %s (%s, encoded in %s)",
		outputPath, durfmt.Format(res.FinalSeconds), durfmt.FormatElapsed(res.EncodeTime))
	return res, nil
}

// validate probes every candidate and sums the durations of the readable
// ones. Nothing is held open afterwards.
func (a *implAssembler) validate(ctx context.Context, paths []string) Estimate {
	var est Estimate
	for i, p := range paths {
		clip, err := a.load(ctx, p)
		if err != nil {
			a.logger.Warn(ctx, "  [%d/%d] Dropping unreadable clip %s: %v", i+1, len(paths), filepath.Base(p), err)
			est.Dropped = append(est.Dropped, Dropped{Path: p, Err: err})
			continue
		}
		a.logger.Debug(ctx, "  [%d/%d] %s: %s", i+1, len(paths), filepath.Base(p), durfmt.Format(clip.DurationSeconds))
		est.Clips = append(est.Clips, clip)
		est.Seconds += clip.DurationSeconds
	}
	return est
}

// open re-reads the validated clips for the encode, independently of the
// validation pass.
func (a *implAssembler) open(ctx context.Context, validated models.Timeline) (models.Timeline, []Dropped) {
	var (
		clips   models.Timeline
		dropped []Dropped
	)
	for _, v := range validated {
		clip, err := a.load(ctx, v.FilePath)
		if err != nil {
			a.logger.Warn(ctx, "Dropping clip %s that became unreadable: %v", filepath.Base(v.FilePath), err)
			dropped = append(dropped, Dropped{Path: v.FilePath, Err: err})
			continue
		}
		clips = append(clips, clip)
	}
	return clips, dropped
}

func (a *implAssembler) load(ctx context.Context, path string) (models.RenderedClip, error) {
	info, err := a.prober.Probe(ctx, path)
	if err != nil {
		return models.RenderedClip{}, err
	}
	if !info.HasVideo {
		return models.RenderedClip{}, errors.New("no video stream")
	}
	if !info.HasAudio {
		return models.RenderedClip{}, errors.New("no audio stream")
	}

	var id string
	if a.opts.IDOf != nil {
		id = a.opts.IDOf(path)
	}
	return models.RenderedClip{SourcePairID: id, FilePath: path, DurationSeconds: info.DurationSeconds}, nil
}

func (a *implAssembler) buildArgs(clips models.Timeline, outPath string) []string {
	durations := make([]float64, len(clips))
	args := []string{"-hide_banner", "-y"}
	for i, c := range clips {
		durations[i] = c.DurationSeconds
		args = append(args, "-i", c.FilePath)
	}

	graph := FilterGraph(durations, a.opts.Width, a.opts.Height, a.opts.FPS, a.opts.TransitionSeconds)
	return append(args,
		"-filter_complex", graph,
		"-map", "[vout]",
		"-map", "[aout]",
		"-c:v", "libx264",
		"-preset", a.opts.Preset,
		"-crf", strconv.Itoa(a.opts.CRF),
		"-pix_fmt", "yuv420p",
		"-r", strconv.Itoa(a.opts.FPS),
		"-c:a", "aac",
		"-b:a", a.opts.AudioBitrate,
		"-movflags", "+faststart",
		outPath,
	)
}

// crossCheck compares the written file against the clip sum. A mismatch
// is logged, not fatal: the file is already complete.
func (a *implAssembler) crossCheck(ctx context.Context, res *Result) {
	info, err := a.prober.Probe(ctx, res.OutputPath)
	if err != nil {
		a.logger.Warn(ctx, "Could not probe final video %s: %v", res.OutputPath, err)
		return
	}
	res.OutputSeconds = info.DurationSeconds

	tolerance := float64(len(res.Clips)) / float64(a.opts.FPS)
	if diff := math.Abs(info.DurationSeconds - res.FinalSeconds); diff > tolerance {
		a.logger.Warn(ctx, "Final video is %.3fs but clips sum to %.3fs", info.DurationSeconds, res.FinalSeconds)
	}
}

func (a *implAssembler) removeFile(ctx context.Context, path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		a.logger.Warn(ctx, "Failed to remove %s: %v", path, err)
	}
}

func partialPath(outPath string) string {
	dir, name := filepath.Split(outPath)
	ext := filepath.Ext(name)
	return filepath.Join(dir, "."+strings.TrimSuffix(name, ext)+".partial"+ext)
}
