package logicalid

import (
	"fmt"
	"regexp"

	"github.com/nguyentantai21042004/slide-flow/internal/models"
)

const (
	TrailingInteger    = "trailing-integer"
	DottedHierarchical = "dotted-hierarchical"
)

// Default dotted patterns. Images look like img-3.c.0.png, narration like
// course_script_3.c.0.mp3 and rendered clips like course_clip_3.c.0.mp4.
const (
	DefaultImagePattern = `(?i)img-(\d+\.[a-z](?:\.\d+)*)\.(?:jpg|png)`
	DefaultAudioPattern = `(?i)_(\d+\.[a-z](?:\.\d+)*)\.mp3`
	DefaultClipPattern  = `(?i)_clip_(.+)\.mp4$`
)

// fallbackPattern takes the dotted run right before the extension.
var fallbackPattern = regexp.MustCompile(`(?i)(\d+(?:\.[a-z0-9]+)*)\.[a-z0-9]+$`)

// Patterns maps a media kind to the pattern the dotted scheme applies to it.
type Patterns map[models.MediaKind]*regexp.Regexp

// CompilePatterns compiles the per-kind dotted patterns. Empty strings
// select the defaults.
func CompilePatterns(image, audio, clip string) (Patterns, error) {
	srcs := map[models.MediaKind]string{
		models.KindImage: orDefault(image, DefaultImagePattern),
		models.KindAudio: orDefault(audio, DefaultAudioPattern),
		models.KindVideo: orDefault(clip, DefaultClipPattern),
	}

	p := make(Patterns, len(srcs))
	for kind, src := range srcs {
		re, err := regexp.Compile(src)
		if err != nil {
			return nil, fmt.Errorf("compile %s pattern %q: %w", kind, src, err)
		}
		if re.NumSubexp() == 0 {
			return nil, fmt.Errorf("%s pattern %q has no capture group", kind, src)
		}
		p[kind] = re
	}
	return p, nil
}

// New returns the scheme registered under name. patterns is only used by
// the dotted scheme; kinds missing from it fall back to the dotted run
// before the file extension.
func New(name string, patterns Patterns) (Scheme, error) {
	switch name {
	case TrailingInteger:
		return trailingInt{}, nil
	case DottedHierarchical:
		return &dotted{patterns: patterns}, nil
	default:
		return nil, fmt.Errorf("unknown id scheme %q (want %s or %s)", name, TrailingInteger, DottedHierarchical)
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
