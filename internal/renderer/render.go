package renderer

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

	"github.com/nguyentantai21042004/slide-flow/internal/frame"
	"github.com/nguyentantai21042004/slide-flow/internal/models"
	"github.com/nguyentantai21042004/slide-flow/pkg/durfmt"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// ClipFileName is the file name of the clip rendered for id.
func ClipFileName(project, id string) string {
	return fmt.Sprintf("%s_clip_%s.mp4", project, id)
}

// ClipPrefix is the file name prefix shared by every clip of a project.
func ClipPrefix(project string) string {
	return project + "_clip_"
}

// DurationMismatchError is returned when a written clip is not as long as
// its audio.
type DurationMismatchError struct {
	Audio float64
	Clip  float64
	Limit float64
}

func (e *DurationMismatchError) Error() string {
	return fmt.Sprintf("clip duration %.3fs differs from audio duration %.3fs by more than %.3fs", e.Clip, e.Audio, e.Limit)
}

// Render probes the audio, normalizes the image into a private workspace
// and encodes the clip. The clip is written to a hidden partial file and
// renamed into place only after ffmpeg succeeds.
func (r *implRenderer) Render(ctx context.Context, pair models.Pair) (models.RenderedClip, error) {
	outPath := filepath.Join(r.opts.ClipsDir, ClipFileName(r.opts.Project, pair.ID))

	audio, err := r.prober.Probe(ctx, pair.Audio.Path)
	if err != nil {
		return models.RenderedClip{}, fail(pair, pair.Audio.Path, models.StageProbe, err)
	}
	if !audio.HasAudio {
		return models.RenderedClip{}, fail(pair, pair.Audio.Path, models.StageProbe, errors.New("no audio stream"))
	}
	r.logger.Info(ctx, "  Clip Duration (from audio): %s", durfmt.Format(audio.DurationSeconds))

	if err := os.MkdirAll(r.opts.TempDir, 0755); err != nil {
		return models.RenderedClip{}, fail(pair, r.opts.TempDir, models.StageFrame, fmt.Errorf("create temp dir: %w", err))
	}
	workDir, err := os.MkdirTemp(r.opts.TempDir, "clip-*")
	if err != nil {
		return models.RenderedClip{}, fail(pair, r.opts.TempDir, models.StageFrame, fmt.Errorf("create workspace: %w", err))
	}
	defer r.cleanupTempDir(ctx, workDir)

	framePath := filepath.Join(workDir, "frame.png")
	if err := frame.Normalize(pair.Image.Path, framePath, r.opts.Width, r.opts.Height, r.opts.Fit); err != nil {
		return models.RenderedClip{}, fail(pair, pair.Image.Path, models.StageFrame, err)
	}

	if err := os.MkdirAll(r.opts.ClipsDir, 0755); err != nil {
		return models.RenderedClip{}, fail(pair, r.opts.ClipsDir, models.StageEncode, fmt.Errorf("create clips dir: %w", err))
	}
	partial := partialPath(outPath)
	defer r.removeFile(ctx, partial)

	args := r.buildArgs(framePath, pair.Audio.Path, audio.DurationSeconds, partial)
	r.logger.Debug(ctx, "ffmpeg %s", strings.Join(args, " "))
	if _, err := r.executor.Execute(ctx, r.opts.FFmpegPath, args...); err != nil {
		return models.RenderedClip{}, fail(pair, outPath, models.StageEncode, err)
	}
	if err := os.Rename(partial, outPath); err != nil {
		return models.RenderedClip{}, fail(pair, outPath, models.StageEncode, fmt.Errorf("move clip into place: %w", err))
	}

	written, err := r.prober.Probe(ctx, outPath)
	if err != nil {
		return models.RenderedClip{}, fail(pair, outPath, models.StageVerify, err)
	}
	limit := 1.0 / float64(r.opts.FPS)
	if math.Abs(written.DurationSeconds-audio.DurationSeconds) > limit {
		r.removeFile(ctx, outPath)
		return models.RenderedClip{}, fail(pair, outPath, models.StageVerify, &DurationMismatchError{
			Audio: audio.DurationSeconds,
			Clip:  written.DurationSeconds,
			Limit: limit,
		})
	}

	return models.RenderedClip{
		SourcePairID:    pair.ID,
		FilePath:        outPath,
		DurationSeconds: audio.DurationSeconds,
	}, nil
}

// buildArgs loops the still frame for exactly the audio duration and muxes
// the original audio track.
func (r *implRenderer) buildArgs(framePath, audioPath string, seconds float64, outPath string) []string {
	still := ffmpeg.Input(framePath, ffmpeg.KwArgs{
		"loop":      1,
		"framerate": r.opts.FPS,
	})
	narration := ffmpeg.Input(audioPath)

	return ffmpeg.Output([]*ffmpeg.Stream{still.Video(), narration.Audio()}, outPath, ffmpeg.KwArgs{
		"t":        formatSeconds(seconds),
		"r":        r.opts.FPS,
		"c:v":      "libx264",
		"tune":     "stillimage",
		"preset":   r.opts.Preset,
		"crf":      r.opts.CRF,
		"pix_fmt":  "yuv420p",
		"c:a":      "aac",
		"b:a":      r.opts.AudioBitrate,
		"movflags": "+faststart",
	}).OverWriteOutput().GetArgs()
}

// reuse returns the existing clip of pair when it probes cleanly.
func (r *implRenderer) reuse(ctx context.Context, pair models.Pair) (models.RenderedClip, bool) {
	outPath := filepath.Join(r.opts.ClipsDir, ClipFileName(r.opts.Project, pair.ID))
	if _, err := os.Stat(outPath); err != nil {
		return models.RenderedClip{}, false
	}
	info, err := r.prober.Probe(ctx, outPath)
	if err != nil {
		r.logger.Warn(ctx, "Existing clip %s is unreadable, rendering again: %v", outPath, err)
		return models.RenderedClip{}, false
	}
	return models.RenderedClip{SourcePairID: pair.ID, FilePath: outPath, DurationSeconds: info.DurationSeconds}, true
}

func (r *implRenderer) cleanupTempDir(ctx context.Context, dir string) {
	if err := os.RemoveAll(dir); err != nil {
		r.logger.Warn(ctx, "Failed to cleanup temp dir %s: %v", dir, err)
	} else {
		r.logger.Debug(ctx, "Cleaned up temp dir: %s", dir)
	}
}

func fail(pair models.Pair, path string, stage models.Stage, err error) error {
	return models.ItemFailure{ID: pair.ID, Path: path, Stage: stage, Err: err}
}

func partialPath(outPath string) string {
	dir, name := filepath.Split(outPath)
	return filepath.Join(dir, "."+strings.TrimSuffix(name, ".mp4")+".partial.mp4")
}

func (r *implRenderer) removeFile(ctx context.Context, path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		r.logger.Warn(ctx, "Failed to remove %s: %v", path, err)
	}
}

func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', 6, 64)
}

func elapsed(start time.Time) string {
	return durfmt.FormatElapsed(time.Since(start))
}
