package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ErrNoDuration is returned for files whose container reports no duration.
var ErrNoDuration = errors.New("no decodable duration")

type ffprobeOutput struct {
	Streams []struct {
		CodecType   string `json:"codec_type"`
		Width       int    `json:"width"`
		Height      int    `json:"height"`
		Duration    string `json:"duration"`
		Disposition struct {
			AttachedPic int `json:"attached_pic"`
		} `json:"disposition"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Probe runs ffprobe on path. The duration is the container duration at
// source precision, falling back to the longest stream.
func (p *implProber) Probe(ctx context.Context, path string) (Info, error) {
	args := []string{
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	}

	out, err := p.executor.Execute(ctx, p.binary, args...)
	if err != nil {
		return Info{}, fmt.Errorf("ffprobe %s: %w", path, err)
	}

	var parsed ffprobeOutput
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		return Info{}, fmt.Errorf("parse ffprobe output for %s: %w", path, err)
	}

	info := Info{Path: path}
	info.DurationSeconds = parseSeconds(parsed.Format.Duration)

	var longest float64
	for _, s := range parsed.Streams {
		switch s.CodecType {
		case "video":
			// Cover art embedded in mp3 files shows up as a video stream.
			if s.Disposition.AttachedPic == 1 {
				continue
			}
			info.HasVideo = true
			info.Width, info.Height = s.Width, s.Height
		case "audio":
			info.HasAudio = true
		default:
			continue
		}
		if d := parseSeconds(s.Duration); d > longest {
			longest = d
		}
	}

	if info.DurationSeconds <= 0 {
		info.DurationSeconds = longest
	}
	if info.DurationSeconds <= 0 {
		return Info{}, fmt.Errorf("%s: %w", path, ErrNoDuration)
	}
	return info, nil
}

func parseSeconds(s string) float64 {
	if s == "" || s == "N/A" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
