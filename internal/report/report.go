// Package report records what one pipeline run did: pairs found, files
// left unmatched, clips rendered or reused, failures and the final video.
package report

import (
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/nguyentantai21042004/slide-flow/internal/assembler"
	"github.com/nguyentantai21042004/slide-flow/internal/logger"
	"github.com/nguyentantai21042004/slide-flow/internal/models"
	"github.com/nguyentantai21042004/slide-flow/internal/pairing"
	"github.com/nguyentantai21042004/slide-flow/internal/renderer"
	"github.com/nguyentantai21042004/slide-flow/internal/synth"
)

const (
	StatusOK      = "ok"
	StatusPartial = "partial"
	StatusFailed  = "failed"
	// StatusCancelled marks a run the user declined at the final prompt.
	StatusCancelled = "cancelled"
)

// Report is the stable JSON shape of a run.
type Report struct {
	RunID   string `json:"run_id"`
	Project string `json:"project"`
	Command string `json:"command"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Summary Summary `json:"summary"`

	Pairs      []models.Pair       `json:"pairs"`
	Unmatched  Unmatched           `json:"unmatched"`
	Collisions []pairing.Collision `json:"collisions,omitempty"`
	Narrations []synth.Narration   `json:"narrations,omitempty"`
	Clips      []Clip              `json:"clips"`
	Failures   []Failure           `json:"failures"`
	Dropped    []Failure           `json:"dropped"`
	Final      *Final              `json:"final,omitempty"`
}

type Summary struct {
	Pairs     int `json:"pairs"`
	Clips     int `json:"clips"`
	Reused    int `json:"reused"`
	Failed    int `json:"failed"`
	Unmatched int `json:"unmatched"`
	Dropped   int `json:"dropped"`
}

type Unmatched struct {
	Images []models.MediaAsset `json:"images"`
	Audio  []models.MediaAsset `json:"audio"`
}

type Clip struct {
	ID              string  `json:"id"`
	Path            string  `json:"path"`
	DurationSeconds float64 `json:"duration_seconds"`
	Reused          bool    `json:"reused"`
}

type Failure struct {
	ID    string       `json:"id,omitempty"`
	Path  string       `json:"path"`
	Stage models.Stage `json:"stage,omitempty"`
	Error string       `json:"error"`
}

type Final struct {
	Path             string  `json:"path"`
	Clips            int     `json:"clips"`
	EstimatedSeconds float64 `json:"estimated_seconds"`
	FinalSeconds     float64 `json:"final_seconds"`
	OutputSeconds    float64 `json:"output_seconds"`
	EncodeSeconds    float64 `json:"encode_seconds"`
}

// New starts a report with a fresh run id.
func New(project, command string) *Report {
	return &Report{
		RunID:     uuid.NewString(),
		Project:   project,
		Command:   command,
		StartedAt: time.Now(),
	}
}

// AddPairing records a pairing result. An ambiguous-id error contributes
// its collisions.
func (r *Report) AddPairing(res pairing.Result, err error) {
	r.Pairs = append(r.Pairs, res.Pairs...)
	r.Unmatched.Images = append(r.Unmatched.Images, res.UnmatchedImages...)
	r.Unmatched.Audio = append(r.Unmatched.Audio, res.UnmatchedAudio...)

	var amb *pairing.AmbiguousIDError
	if errors.As(err, &amb) {
		r.Collisions = append(r.Collisions, amb.Collisions...)
	}
}

// AddNarrations records a synthesis batch.
func (r *Report) AddNarrations(batch synth.NarrationBatch) {
	r.Narrations = append(r.Narrations, batch.Narrations...)
	r.addFailures(batch.Failures)
}

// AddClips records a render batch.
func (r *Report) AddClips(batch renderer.Batch) {
	reused := make(map[string]bool, len(batch.Reused))
	for _, c := range batch.Reused {
		reused[c.FilePath] = true
	}
	for _, c := range batch.Clips {
		r.Clips = append(r.Clips, Clip{
			ID:              c.SourcePairID,
			Path:            c.FilePath,
			DurationSeconds: c.DurationSeconds,
			Reused:          reused[c.FilePath],
		})
	}
	r.addFailures(batch.Failures)
}

// AddAssembly records the final video.
func (r *Report) AddAssembly(res assembler.Result) {
	for _, d := range res.Dropped {
		r.Dropped = append(r.Dropped, Failure{Path: d.Path, Error: logger.FormatError(d.Err)})
	}
	if res.OutputPath == "" {
		return
	}
	r.Final = &Final{
		Path:             res.OutputPath,
		Clips:            len(res.Clips),
		EstimatedSeconds: res.EstimatedSeconds,
		FinalSeconds:     res.FinalSeconds,
		OutputSeconds:    res.OutputSeconds,
		EncodeSeconds:    res.EncodeTime.Seconds(),
	}
}

func (r *Report) addFailures(fs []models.ItemFailure) {
	for _, f := range fs {
		r.Failures = append(r.Failures, Failure{ID: f.ID, Path: f.Path, Stage: f.Stage, Error: logger.FormatError(f.Err)})
	}
}

// Finish stamps the end of the run. A non-nil err marks the run failed,
// unless it is an aborted assembly; otherwise any item failure makes it
// partial.
func (r *Report) Finish(err error) {
	r.FinishedAt = time.Now()
	switch {
	case errors.Is(err, assembler.ErrAborted):
		r.Status = StatusCancelled
	case err != nil:
		r.Status = StatusFailed
		r.Error = logger.FormatError(err)
	case len(r.Failures) > 0:
		r.Status = StatusPartial
	default:
		r.Status = StatusOK
	}
}

// Finalize normalizes times to UTC, orders the lists stably and computes
// the summary. It is called by JSON before encoding.
func (r *Report) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()

	sort.SliceStable(r.Failures, func(i, j int) bool {
		if r.Failures[i].Path != r.Failures[j].Path {
			return r.Failures[i].Path < r.Failures[j].Path
		}
		return r.Failures[i].Stage < r.Failures[j].Stage
	})
	sort.SliceStable(r.Dropped, func(i, j int) bool { return r.Dropped[i].Path < r.Dropped[j].Path })

	if r.Pairs == nil {
		r.Pairs = []models.Pair{}
	}
	if r.Unmatched.Images == nil {
		r.Unmatched.Images = []models.MediaAsset{}
	}
	if r.Unmatched.Audio == nil {
		r.Unmatched.Audio = []models.MediaAsset{}
	}
	if r.Clips == nil {
		r.Clips = []Clip{}
	}
	if r.Failures == nil {
		r.Failures = []Failure{}
	}
	if r.Dropped == nil {
		r.Dropped = []Failure{}
	}

	r.Summary = Summary{
		Pairs:     len(r.Pairs),
		Clips:     len(r.Clips),
		Failed:    len(r.Failures),
		Unmatched: len(r.Unmatched.Images) + len(r.Unmatched.Audio),
		Dropped:   len(r.Dropped),
	}
	for _, c := range r.Clips {
		if c.Reused {
			r.Summary.Reused++
		}
	}
}

// JSON finalizes the report and encodes it indented.
func (r *Report) JSON() ([]byte, error) {
	r.Finalize()
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
