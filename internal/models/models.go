package models

// MediaKind classifies a discovered file.
type MediaKind string

const (
	KindImage MediaKind = "image"
	KindAudio MediaKind = "audio"
	KindVideo MediaKind = "video"
	// KindScript is a narration text file.
	KindScript MediaKind = "script"
)

// MediaAsset is a file found during a directory scan. LogicalID is empty
// until a scheme has been applied, and stays empty for names the scheme
// could not read.
type MediaAsset struct {
	Path      string    `json:"path"`
	Name      string    `json:"name"`
	Kind      MediaKind `json:"kind"`
	LogicalID string    `json:"logical_id,omitempty"`
}

// Pair is an image and an audio file sharing one logical id.
type Pair struct {
	ID    string     `json:"id"`
	Image MediaAsset `json:"image"`
	Audio MediaAsset `json:"audio"`
}

// RenderedClip is a still-image video whose duration matches its audio.
type RenderedClip struct {
	SourcePairID    string  `json:"source_pair_id"`
	FilePath        string  `json:"file_path"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// Timeline is the clip order of the final video.
type Timeline []RenderedClip

// TotalSeconds sums the clip durations.
func (t Timeline) TotalSeconds() float64 {
	var total float64
	for _, c := range t {
		total += c.DurationSeconds
	}
	return total
}

// Stage names where in the pipeline an item failed.
type Stage string

const (
	StageProbe     Stage = "probe"
	StageFrame     Stage = "frame"
	StageEncode    Stage = "encode"
	StageVerify    Stage = "verify"
	StageSynthesis Stage = "synthesis"
)

// ItemFailure records a failure isolated to one pair, clip or script.
type ItemFailure struct {
	ID    string `json:"id"`
	Path  string `json:"path"`
	Stage Stage  `json:"stage"`
	Err   error  `json:"-"`
}

func (f ItemFailure) Error() string {
	if f.ID != "" {
		return "id " + f.ID + " (" + f.Path + "): " + string(f.Stage) + ": " + f.Err.Error()
	}
	return f.Path + ": " + string(f.Stage) + ": " + f.Err.Error()
}

func (f ItemFailure) Unwrap() error { return f.Err }
