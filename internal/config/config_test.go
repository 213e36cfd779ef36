package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nguyentantai21042004/slide-flow/internal/logicalid"
	"github.com/nguyentantai21042004/slide-flow/internal/models"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:    "minimal config",
			config:  Config{Project: "n8n-hosting-course"},
			wantErr: false,
		},
		{
			name:    "missing project",
			config:  Config{},
			wantErr: true,
		},
		{
			name:    "project with separator",
			config:  Config{Project: "a/b"},
			wantErr: true,
		},
		{
			name: "unknown scheme",
			config: Config{
				Project: "demo",
				IDs:     IDsConfig{Scheme: "alphabetical"},
			},
			wantErr: true,
		},
		{
			name: "unknown provider",
			config: Config{
				Project: "demo",
				TTS:     TTSConfig{Provider: "espeak"},
			},
			wantErr: true,
		},
		{
			name: "negative transition",
			config: Config{
				Project: "demo",
				Video:   VideoConfig{TransitionSeconds: ptr(-1.0)},
			},
			wantErr: true,
		},
		{
			name: "unknown fit",
			config: Config{
				Project: "demo",
				Video:   VideoConfig{Fit: "crop"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateDefaults(t *testing.T) {
	cfg := Config{Project: "demo"}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}

	if cfg.Video.Width != 1920 || cfg.Video.Height != 1080 {
		t.Errorf("frame size = %dx%d, want 1920x1080", cfg.Video.Width, cfg.Video.Height)
	}
	if cfg.Video.FPS != 24 {
		t.Errorf("FPS = %d, want 24", cfg.Video.FPS)
	}
	if cfg.Video.Transition() != 0.75 {
		t.Errorf("Transition() = %v, want 0.75", cfg.Video.Transition())
	}
	if cfg.IDs.Scheme != logicalid.TrailingInteger {
		t.Errorf("Scheme = %q, want %q", cfg.IDs.Scheme, logicalid.TrailingInteger)
	}
	if cfg.TTS.ChunkLimit != 3500 || cfg.TTS.Voice != "echo" {
		t.Errorf("TTS defaults = %+v", cfg.TTS)
	}
	if cfg.Performance.MaxConcurrent != 1 {
		t.Errorf("MaxConcurrent = %d, want 1", cfg.Performance.MaxConcurrent)
	}

	if got, want := cfg.ClipsDir(), filepath.Join("2-video_clip_gen/output_clips", "demo"); got != want {
		t.Errorf("ClipsDir() = %q, want %q", got, want)
	}
	if got, want := cfg.FinalVideoPath(), filepath.Join("3-video_full_gen/output_final", "demo", "demo_full_video.mp4"); got != want {
		t.Errorf("FinalVideoPath() = %q, want %q", got, want)
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("GEMINI_API_KEYS", "k1, k2,,")

	// Create a temporary config file
	tmpfile, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpfile.Name())

	content := `
project: "coach-dashboard"

paths:
  images: "screens"
  audio: "audio"

video:
  fps: 30
  transition_seconds: 0.5

ids:
  scheme: "dotted-hierarchical"
  audio_pattern: "coach_script_(\\d+\\.[a-z](?:\\.\\d+)*)\\.mp3"

logging:
  level: "debug"
  format: "json"
`

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}

	// Test loading
	cfg, err := Load(tmpfile.Name(), filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Project != "coach-dashboard" {
		t.Errorf("Project = %v, want %v", cfg.Project, "coach-dashboard")
	}
	if cfg.Paths.Images != "screens" {
		t.Errorf("Images = %v, want %v", cfg.Paths.Images, "screens")
	}
	if cfg.Video.FPS != 30 || cfg.Video.Transition() != 0.5 {
		t.Errorf("Video = %+v", cfg.Video)
	}
	if cfg.AudioDir() != filepath.Join("audio", "coach-dashboard") {
		t.Errorf("AudioDir() = %v", cfg.AudioDir())
	}
	if cfg.Secrets.OpenAIKey != "sk-test" {
		t.Errorf("OpenAIKey = %q", cfg.Secrets.OpenAIKey)
	}
	if len(cfg.Secrets.GeminiKeys) != 2 || cfg.Secrets.GeminiKeys[1] != "k2" {
		t.Errorf("GeminiKeys = %v", cfg.Secrets.GeminiKeys)
	}

	scheme, err := cfg.Scheme()
	if err != nil {
		t.Fatalf("Scheme() error = %v", err)
	}
	id, ok := scheme.Extract(models.KindAudio, "coach_script_3.c.0.mp3")
	if !ok || id != "3.c.0" {
		t.Errorf("Extract() = %q, %v", id, ok)
	}
}

func TestLoadEnvFile(t *testing.T) {
	env := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(env, []byte("SLIDEFLOW_TEST_ONLY=from-file\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SLIDEFLOW_TEST_ONLY", "")
	os.Unsetenv("SLIDEFLOW_TEST_ONLY")

	if err := LoadEnv(env); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}
	if got := os.Getenv("SLIDEFLOW_TEST_ONLY"); got != "from-file" {
		t.Errorf("SLIDEFLOW_TEST_ONLY = %q, want from-file", got)
	}
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := Load("nonexistent.yaml")
	if err == nil {
		t.Error("Load() should return error for nonexistent file")
	}
}

func TestSchemeInvalidPattern(t *testing.T) {
	cfg := Config{Project: "demo", IDs: IDsConfig{Scheme: logicalid.DottedHierarchical, ImagePattern: "img-("}}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if _, err := cfg.Scheme(); err == nil {
		t.Error("Scheme() should reject an invalid pattern")
	}
}

func TestLoadZeroTransition(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "project: demo\nvideo:\n  transition_seconds: 0\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path, filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Video.TransitionSeconds == nil {
		t.Fatal("TransitionSeconds = nil, want explicit 0")
	}
	if got := cfg.Video.Transition(); got != 0 {
		t.Errorf("Transition() = %v, want 0", got)
	}
}

func ptr[T any](v T) *T { return &v }
