package synth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nguyentantai21042004/slide-flow/internal/logger"
	"github.com/nguyentantai21042004/slide-flow/internal/media"
	"github.com/nguyentantai21042004/slide-flow/internal/models"
	"github.com/nguyentantai21042004/slide-flow/internal/scan"
	"github.com/nguyentantai21042004/slide-flow/pkg/durfmt"
	"github.com/nguyentantai21042004/slide-flow/pkg/executor"
)

// Narrator produces one narration mp3 per script file.
type Narrator interface {
	// Plan lists the scripts with their estimated spoken length.
	Plan(ctx context.Context) (Plan, error)
	// NarrateAll synthesizes every script; one failing script does not
	// stop the others.
	NarrateAll(ctx context.Context) (NarrationBatch, error)
	// Narrate synthesizes a single script file.
	Narrate(ctx context.Context, scriptPath string) (Narration, error)
}

// ScriptEstimate is the planned length of one script.
type ScriptEstimate struct {
	Path             string  `json:"path"`
	Words            int     `json:"words"`
	EstimatedSeconds float64 `json:"estimated_seconds"`
	Err              error   `json:"-"`
}

// Plan is the estimate of a whole scripts directory.
type Plan struct {
	Scripts      []ScriptEstimate `json:"scripts"`
	TotalSeconds float64          `json:"total_seconds"`
}

// Narration is the outcome for one script.
type Narration struct {
	Script           string        `json:"script"`
	Output           string        `json:"output"`
	Chunks           int           `json:"chunks"`
	Words            int           `json:"words"`
	EstimatedSeconds float64       `json:"estimated_seconds"`
	DurationSeconds  float64       `json:"duration_seconds"`
	SynthesisTime    time.Duration `json:"synthesis_time"`
}

// NarrationBatch is the outcome of NarrateAll.
type NarrationBatch struct {
	Narrations []Narration
	Failures   []models.ItemFailure
}

// NarratorOptions configures a Narrator.
type NarratorOptions struct {
	ScriptsDir     string
	OutputDir      string
	TempDir        string
	Voice          string
	Instructions   string
	ChunkLimit     int
	WordsPerSecond float64
	FFmpegPath     string
}

type implNarrator struct {
	opts     NarratorOptions
	synth    Synthesizer
	executor executor.Executor
	prober   media.Prober
	logger   logger.Logger
}

// NewNarrator creates a Narrator.
func NewNarrator(opts NarratorOptions, synth Synthesizer, exec executor.Executor, prober media.Prober, log logger.Logger) Narrator {
	if opts.FFmpegPath == "" {
		opts.FFmpegPath = "ffmpeg"
	}
	if opts.WordsPerSecond <= 0 {
		opts.WordsPerSecond = DefaultWordsPerSecond
	}
	return &implNarrator{
		opts:     opts,
		synth:    synth,
		executor: exec,
		prober:   prober,
		logger:   log,
	}
}

func (n *implNarrator) Plan(ctx context.Context) (Plan, error) {
	scripts, err := scan.Dir(n.opts.ScriptsDir, models.KindScript)
	if err != nil {
		return Plan{}, err
	}

	var plan Plan
	for i, s := range scripts {
		est := ScriptEstimate{Path: s.Path}
		data, err := os.ReadFile(s.Path)
		if err != nil {
			est.Err = err
			n.logger.Warn(ctx, "  %d. Error reading %s: %v", i+1, s.Name, err)
			plan.Scripts = append(plan.Scripts, est)
			continue
		}
		est.Words = WordCount(string(data))
		est.EstimatedSeconds = EstimateSeconds(string(data), n.opts.WordsPerSecond)
		plan.TotalSeconds += est.EstimatedSeconds
		plan.Scripts = append(plan.Scripts, est)
		n.logger.Info(ctx, "  %d. %s --> %d words --> %s", i+1, s.Name, est.Words, durfmt.Format(est.EstimatedSeconds))
	}
	n.logger.Info(ctx, "Total Estimated Audio Length: %s", durfmt.Format(plan.TotalSeconds))
	return plan, nil
}

func (n *implNarrator) NarrateAll(ctx context.Context) (NarrationBatch, error) {
	scripts, err := scan.Dir(n.opts.ScriptsDir, models.KindScript)
	if err != nil {
		return NarrationBatch{}, err
	}
	if len(scripts) == 0 {
		n.logger.Warn(ctx, "No .txt script files found in %s", n.opts.ScriptsDir)
		return NarrationBatch{}, nil
	}

	var batch NarrationBatch
	for i, s := range scripts {
		if err := ctx.Err(); err != nil {
			return batch, err
		}
		n.logger.Info(ctx, "--- Processing %d/%d: %s ---", i+1, len(scripts), s.Name)

		res, err := n.Narrate(ctx, s.Path)
		if err != nil {
			n.logger.Error(ctx, "Error processing %s: %v", s.Name, err)
			batch.Failures = append(batch.Failures, models.ItemFailure{Path: s.Path, Stage: models.StageSynthesis, Err: err})
			continue
		}
		batch.Narrations = append(batch.Narrations, res)
	}

	n.logger.Info(ctx, "Narration complete: %d success, %d failed", len(batch.Narrations), len(batch.Failures))
	return batch, nil
}

func (n *implNarrator) Narrate(ctx context.Context, scriptPath string) (Narration, error) {
	data, err := os.ReadFile(scriptPath)
	if err != nil {
		return Narration{}, fmt.Errorf("read script: %w", err)
	}
	text := string(data)

	chunks := Split(text, n.opts.ChunkLimit)
	if len(chunks) == 0 {
		return Narration{}, errors.New("script is empty")
	}

	stem := strings.TrimSuffix(filepath.Base(scriptPath), filepath.Ext(scriptPath))
	res := Narration{
		Script:           scriptPath,
		Output:           filepath.Join(n.opts.OutputDir, stem+".mp3"),
		Chunks:           len(chunks),
		Words:            WordCount(text),
		EstimatedSeconds: EstimateSeconds(text, n.opts.WordsPerSecond),
	}
	n.logger.Info(ctx, "  %d words --> %s (estimated), split into %d chunks", res.Words, durfmt.Format(res.EstimatedSeconds), len(chunks))

	if err := os.MkdirAll(n.opts.TempDir, 0755); err != nil {
		return Narration{}, fmt.Errorf("create temp dir: %w", err)
	}
	workDir, err := os.MkdirTemp(n.opts.TempDir, "narration-*")
	if err != nil {
		return Narration{}, fmt.Errorf("create workspace: %w", err)
	}
	defer n.cleanupTempDir(ctx, workDir)

	start := time.Now()
	chunkPaths := make([]string, 0, len(chunks))
	for j, chunk := range chunks {
		speech, err := n.synth.Synthesize(ctx, chunk, n.opts.Voice, n.opts.Instructions)
		if err != nil {
			return Narration{}, fmt.Errorf("chunk %d/%d: %w", j+1, len(chunks), err)
		}
		p := filepath.Join(workDir, fmt.Sprintf("chunk-%03d.%s", j+1, speech.Format))
		if err := os.WriteFile(p, speech.Data, 0644); err != nil {
			return Narration{}, fmt.Errorf("write chunk %d: %w", j+1, err)
		}
		chunkPaths = append(chunkPaths, p)
	}
	res.SynthesisTime = time.Since(start)

	if err := n.concat(ctx, workDir, chunkPaths, res.Output); err != nil {
		return Narration{}, err
	}

	if info, err := n.prober.Probe(ctx, res.Output); err != nil {
		n.logger.Warn(ctx, "Could not probe %s: %v", res.Output, err)
	} else {
		res.DurationSeconds = info.DurationSeconds
	}

	n.logger.Info(ctx, "Done! Audio saved to %s. Actual Audio Length: %s. Time Taken: %s",
		res.Output, durfmt.Format(res.DurationSeconds), durfmt.FormatElapsed(res.SynthesisTime))
	return res, nil
}

// concat joins the chunk files in order into one mp3 through the ffmpeg
// concat demuxer, writing to a hidden partial file first.
func (n *implNarrator) concat(ctx context.Context, workDir string, chunkPaths []string, output string) error {
	var list strings.Builder
	for _, p := range chunkPaths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("resolve chunk path: %w", err)
		}
		fmt.Fprintf(&list, "file '%s'\n", strings.ReplaceAll(abs, "'", `'\''`))
	}
	listPath := filepath.Join(workDir, "chunks.txt")
	if err := os.WriteFile(listPath, []byte(list.String()), 0644); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	dir, name := filepath.Split(output)
	partial := filepath.Join(dir, "."+strings.TrimSuffix(name, ".mp3")+".partial.mp3")
	defer func() {
		if err := os.Remove(partial); err != nil && !errors.Is(err, os.ErrNotExist) {
			n.logger.Warn(ctx, "Failed to remove %s: %v", partial, err)
		}
	}()

	args := []string{
		"-hide_banner", "-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c:a", "libmp3lame",
		"-q:a", "2",
		partial,
	}
	if _, err := n.executor.Execute(ctx, n.opts.FFmpegPath, args...); err != nil {
		return fmt.Errorf("ffmpeg concat audio: %w", err)
	}
	if err := os.Rename(partial, output); err != nil {
		return fmt.Errorf("move audio into place: %w", err)
	}
	return nil
}

func (n *implNarrator) cleanupTempDir(ctx context.Context, dir string) {
	if err := os.RemoveAll(dir); err != nil {
		n.logger.Warn(ctx, "Failed to cleanup temp dir %s: %v", dir, err)
	}
}
