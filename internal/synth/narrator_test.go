package synth

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/nguyentantai21042004/slide-flow/internal/logger"
	"github.com/nguyentantai21042004/slide-flow/internal/media"
	"github.com/nguyentantai21042004/slide-flow/internal/media/mediatest"
	"github.com/nguyentantai21042004/slide-flow/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSynth returns fake mp3 chunks of 1.5s each.
type stubSynth struct {
	mu    sync.Mutex
	texts []string
	fail  string
}

func (s *stubSynth) Synthesize(_ context.Context, text, _, _ string) (*Speech, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts = append(s.texts, text)
	if s.fail != "" && strings.Contains(text, s.fail) {
		return nil, errors.New("provider refused")
	}
	return &Speech{Data: []byte("FAKEMEDIA duration=1.5\n"), Format: "mp3"}, nil
}

func newTestNarrator(t *testing.T, synth Synthesizer) (Narrator, string, string) {
	t.Helper()
	root := t.TempDir()
	scripts := filepath.Join(root, "scripts")
	out := filepath.Join(root, "audio")
	require.NoError(t, os.MkdirAll(scripts, 0o755))

	exec := &mediatest.Executor{}
	n := NewNarrator(NarratorOptions{
		ScriptsDir: scripts,
		OutputDir:  out,
		TempDir:    filepath.Join(root, "tmp"),
		Voice:      "echo",
		ChunkLimit: 20,
	}, synth, exec, media.New(exec, ""), logger.NewNop())
	return n, scripts, out
}

func TestNarrate(t *testing.T) {
	synth := &stubSynth{}
	n, scripts, out := newTestNarrator(t, synth)

	script := filepath.Join(scripts, "slides_1.2.txt")
	require.NoError(t, os.WriteFile(script, []byte("First paragraph.\n\nSecond paragraph.\n\nThird."), 0o644))

	res, err := n.Narrate(context.Background(), script)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(out, "slides_1.2.mp3"), res.Output)
	assert.Equal(t, 3, res.Chunks)
	assert.Equal(t, 5, res.Words)
	assert.InDelta(t, 4.5, res.DurationSeconds, 1e-6)
	assert.Equal(t, []string{"First paragraph.", "Second paragraph.", "Third."}, synth.texts)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "slides_1.2.mp3", entries[0].Name())
}

func TestNarrateEmptyScript(t *testing.T) {
	n, scripts, _ := newTestNarrator(t, &stubSynth{})
	script := filepath.Join(scripts, "empty.txt")
	require.NoError(t, os.WriteFile(script, []byte("  \n\n"), 0o644))

	_, err := n.Narrate(context.Background(), script)
	assert.Error(t, err)
}

func TestNarrateAllIsolatesFailures(t *testing.T) {
	synth := &stubSynth{fail: "broken"}
	n, scripts, out := newTestNarrator(t, synth)

	require.NoError(t, os.WriteFile(filepath.Join(scripts, "a_1.txt"), []byte("Works fine."), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(scripts, "b_2.txt"), []byte("This is broken."), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(scripts, "c_3.txt"), []byte("Also fine."), 0o644))

	batch, err := n.NarrateAll(context.Background())
	require.NoError(t, err)

	require.Len(t, batch.Narrations, 2)
	require.Len(t, batch.Failures, 1)
	assert.Equal(t, filepath.Join(scripts, "b_2.txt"), batch.Failures[0].Path)
	assert.Equal(t, models.StageSynthesis, batch.Failures[0].Stage)

	assert.FileExists(t, filepath.Join(out, "a_1.mp3"))
	assert.NoFileExists(t, filepath.Join(out, "b_2.mp3"))
	assert.FileExists(t, filepath.Join(out, "c_3.mp3"))
}

func TestNarrateAllMissingDir(t *testing.T) {
	exec := &mediatest.Executor{}
	n := NewNarrator(NarratorOptions{ScriptsDir: filepath.Join(t.TempDir(), "nope")}, &stubSynth{}, exec, media.New(exec, ""), logger.NewNop())

	_, err := n.NarrateAll(context.Background())
	assert.Error(t, err)
}

func TestPlan(t *testing.T) {
	n, scripts, _ := newTestNarrator(t, &stubSynth{})
	require.NoError(t, os.WriteFile(filepath.Join(scripts, "a.txt"), []byte("one two three four five"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(scripts, "b.txt"), []byte("six seven eight nine ten"), 0o644))

	plan, err := n.Plan(context.Background())
	require.NoError(t, err)

	require.Len(t, plan.Scripts, 2)
	assert.Equal(t, 5, plan.Scripts[0].Words)
	assert.InDelta(t, 2.0, plan.Scripts[0].EstimatedSeconds, 1e-9)
	assert.InDelta(t, 4.0, plan.TotalSeconds, 1e-9)
}
