package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/nguyentantai21042004/slide-flow/internal/frame"
	"github.com/nguyentantai21042004/slide-flow/internal/logicalid"
	"gopkg.in/yaml.v3"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

const defaultInstructions = `Voice: Confident, dynamic, and charismatic, with a clear and compelling cadence that makes complex topics feel exciting and easy to understand.
Tone: Enthusiastic, knowledgeable, and forward-looking. Avoids being dry or monotonous.
Dialect: Crisp, modern, and professional. Conversational, like a trusted expert talking directly to an intelligent friend.
Pronunciation: Clear and precise. Key technical terms and brand names are articulated with authority, with short pauses before critical points.`

type Config struct {
	Project     string            `yaml:"project"`
	Paths       PathsConfig       `yaml:"paths"`
	Video       VideoConfig       `yaml:"video"`
	IDs         IDsConfig         `yaml:"ids"`
	TTS         TTSConfig         `yaml:"tts"`
	Gemini      GeminiConfig      `yaml:"gemini"`
	FFmpeg      FFmpegConfig      `yaml:"ffmpeg"`
	Logging     LoggingConfig     `yaml:"logging"`
	Performance PerformanceConfig `yaml:"performance"`
	Watch       WatchConfig       `yaml:"watch"`

	// Secrets come from the environment (and .env), never from YAML.
	Secrets Secrets `yaml:"-"`
}

type PathsConfig struct {
	Scripts string `yaml:"scripts"`
	Images  string `yaml:"images"`
	Audio   string `yaml:"audio"`
	Clips   string `yaml:"clips"`
	Final   string `yaml:"final"`
	Temp    string `yaml:"temp"`
}

type VideoConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	FPS    int `yaml:"fps"`
	// TransitionSeconds is nil when unset; an explicit 0 means hard cuts.
	TransitionSeconds *float64 `yaml:"transition_seconds"`
	Fit               string   `yaml:"fit"`
	Preset            string   `yaml:"preset"`
	CRF               int      `yaml:"crf"`
	AudioBitrate      string   `yaml:"audio_bitrate"`
}

// Transition returns the fade length in seconds, 0 when unset.
func (v VideoConfig) Transition() float64 {
	if v.TransitionSeconds == nil {
		return 0
	}
	return *v.TransitionSeconds
}

type IDsConfig struct {
	Scheme       string `yaml:"scheme"`
	ImagePattern string `yaml:"image_pattern"`
	AudioPattern string `yaml:"audio_pattern"`
	ClipPattern  string `yaml:"clip_pattern"`
}

type TTSConfig struct {
	Provider       string  `yaml:"provider"`
	Model          string  `yaml:"model"`
	Voice          string  `yaml:"voice"`
	Instructions   string  `yaml:"instructions"`
	ChunkLimit     int     `yaml:"chunk_limit"`
	WordsPerSecond float64 `yaml:"words_per_second"`
}

type GeminiConfig struct {
	Model string `yaml:"model"`
	Voice string `yaml:"voice"`
}

type FFmpegConfig struct {
	FFmpegPath  string `yaml:"ffmpeg_path"`
	FFprobePath string `yaml:"ffprobe_path"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type PerformanceConfig struct {
	MaxConcurrent int `yaml:"max_concurrent"`
}

type WatchConfig struct {
	DebounceMillis int `yaml:"debounce_ms"`
}

type Secrets struct {
	OpenAIKey  string
	GeminiKeys []string
}

func (c *Config) Validate() error {
	if c.Project == "" {
		return fmt.Errorf("project is required")
	}
	if strings.ContainsAny(c.Project, `/\`) {
		return fmt.Errorf("project must not contain path separators: %q", c.Project)
	}
	if c.Video.Width < 0 || c.Video.Height < 0 {
		return fmt.Errorf("video.width and video.height must be positive")
	}
	if c.Video.FPS < 0 {
		return fmt.Errorf("video.fps must be positive")
	}
	if c.Video.TransitionSeconds != nil && *c.Video.TransitionSeconds < 0 {
		return fmt.Errorf("video.transition_seconds must not be negative")
	}

	if c.Paths.Scripts == "" {
		c.Paths.Scripts = "selected_scripts"
	}
	if c.Paths.Images == "" {
		c.Paths.Images = "_selected_screens"
	}
	if c.Paths.Audio == "" {
		c.Paths.Audio = "1-audio_gen/output_audio"
	}
	if c.Paths.Clips == "" {
		c.Paths.Clips = "2-video_clip_gen/output_clips"
	}
	if c.Paths.Final == "" {
		c.Paths.Final = "3-video_full_gen/output_final"
	}
	if c.Paths.Temp == "" {
		c.Paths.Temp = "data/temp"
	}

	if c.Video.Width == 0 {
		c.Video.Width = 1920
	}
	if c.Video.Height == 0 {
		c.Video.Height = 1080
	}
	if c.Video.FPS == 0 {
		c.Video.FPS = 24
	}
	if c.Video.TransitionSeconds == nil {
		fade := 0.75
		c.Video.TransitionSeconds = &fade
	}
	if c.Video.Fit == "" {
		c.Video.Fit = frame.ModeStretch
	}
	if c.Video.Fit != frame.ModeStretch && c.Video.Fit != frame.ModeFit {
		return fmt.Errorf("video.fit must be %s or %s, got %q", frame.ModeStretch, frame.ModeFit, c.Video.Fit)
	}
	if c.Video.Preset == "" {
		c.Video.Preset = "faster"
	}
	if c.Video.CRF == 0 {
		c.Video.CRF = 23
	}
	if c.Video.AudioBitrate == "" {
		c.Video.AudioBitrate = "192k"
	}

	if c.IDs.Scheme == "" {
		c.IDs.Scheme = logicalid.TrailingInteger
	}
	if c.IDs.Scheme != logicalid.TrailingInteger && c.IDs.Scheme != logicalid.DottedHierarchical {
		return fmt.Errorf("ids.scheme must be %s or %s, got %q", logicalid.TrailingInteger, logicalid.DottedHierarchical, c.IDs.Scheme)
	}

	if c.TTS.Provider == "" {
		c.TTS.Provider = ProviderOpenAI
	}
	if c.TTS.Provider != ProviderOpenAI && c.TTS.Provider != ProviderGemini {
		return fmt.Errorf("tts.provider must be %s or %s, got %q", ProviderOpenAI, ProviderGemini, c.TTS.Provider)
	}
	if c.TTS.Model == "" {
		c.TTS.Model = "gpt-4o-mini-tts"
	}
	if c.TTS.Voice == "" {
		c.TTS.Voice = "echo"
	}
	if c.TTS.Instructions == "" {
		c.TTS.Instructions = defaultInstructions
	}
	if c.TTS.ChunkLimit == 0 {
		c.TTS.ChunkLimit = 3500
	}
	if c.TTS.WordsPerSecond == 0 {
		c.TTS.WordsPerSecond = 2.5
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.5-flash-preview-tts"
	}
	if c.Gemini.Voice == "" {
		c.Gemini.Voice = "Kore"
	}

	if c.FFmpeg.FFmpegPath == "" {
		c.FFmpeg.FFmpegPath = "ffmpeg"
	}
	if c.FFmpeg.FFprobePath == "" {
		c.FFmpeg.FFprobePath = "ffprobe"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Performance.MaxConcurrent <= 0 {
		c.Performance.MaxConcurrent = 1
	}
	if c.Watch.DebounceMillis <= 0 {
		c.Watch.DebounceMillis = 1500
	}

	return nil
}

// Load reads the YAML file at path, fills secrets from the environment and
// validates the result.
func Load(path string, envFiles ...string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := LoadEnv(envFiles...); err != nil {
		return nil, err
	}
	cfg.Secrets = SecretsFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// LoadEnv loads .env style files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load env file %s: %w", f, err)
		}
	}
	return nil
}

// SecretsFromEnv reads API keys. GEMINI_API_KEYS is a comma separated list
// rotated on rate limits; GEMINI_API_KEY is accepted for a single key.
func SecretsFromEnv() Secrets {
	s := Secrets{OpenAIKey: strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))}

	raw := os.Getenv("GEMINI_API_KEYS")
	if raw == "" {
		raw = os.Getenv("GEMINI_API_KEY")
	}
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			s.GeminiKeys = append(s.GeminiKeys, k)
		}
	}
	return s
}

// AudioDir is the project's narration directory.
func (c *Config) AudioDir() string { return filepath.Join(c.Paths.Audio, c.Project) }

// ClipsDir is the project's per-clip output directory.
func (c *Config) ClipsDir() string { return filepath.Join(c.Paths.Clips, c.Project) }

// FinalDir is the project's final output directory.
func (c *Config) FinalDir() string { return filepath.Join(c.Paths.Final, c.Project) }

// FinalVideoPath is where the stitched video is written.
func (c *Config) FinalVideoPath() string {
	return filepath.Join(c.FinalDir(), c.Project+"_full_video.mp4")
}

// Scheme builds the logical id scheme selected by ids.scheme.
func (c *Config) Scheme() (logicalid.Scheme, error) {
	var patterns logicalid.Patterns
	if c.IDs.Scheme == logicalid.DottedHierarchical {
		p, err := logicalid.CompilePatterns(c.IDs.ImagePattern, c.IDs.AudioPattern, c.IDs.ClipPattern)
		if err != nil {
			return nil, fmt.Errorf("ids: %w", err)
		}
		patterns = p
	}
	return logicalid.New(c.IDs.Scheme, patterns)
}
