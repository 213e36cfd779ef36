package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nguyentantai21042004/slide-flow/internal/logger"
	"github.com/nguyentantai21042004/slide-flow/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherDebouncesMatchingFiles(t *testing.T) {
	root := t.TempDir()
	images := filepath.Join(root, "images")
	audio := filepath.Join(root, "audio")
	require.NoError(t, os.MkdirAll(images, 0o755))
	require.NoError(t, os.MkdirAll(audio, 0o755))

	calls := make(chan []string, 4)
	w, err := New([]Dir{{Path: images, Kind: models.KindImage}, {Path: audio, Kind: models.KindAudio}},
		func(_ context.Context, changed []string) error {
			calls <- changed
			return nil
		}, logger.NewNop(), 200*time.Millisecond)
	require.NoError(t, err)
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	// Give the loop a moment to start draining events.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(images, "slide_2.png"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(audio, "slide_2.mp3"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(audio, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(images, ".hidden.png"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(images, "slide_3.mp3"), []byte("x"), 0o644))

	select {
	case got := <-calls:
		assert.Equal(t, []string{
			filepath.Join(audio, "slide_2.mp3"),
			filepath.Join(images, "slide_2.png"),
		}, got)
	case <-time.After(5 * time.Second):
		t.Fatal("handler was not called")
	}

	select {
	case got := <-calls:
		t.Fatalf("unexpected second call: %v", got)
	case <-time.After(400 * time.Millisecond):
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestWatcherKeepsRunningAfterHandlerError(t *testing.T) {
	dir := t.TempDir()
	calls := make(chan []string, 4)
	w, err := New([]Dir{{Path: dir, Kind: models.KindAudio}}, func(_ context.Context, changed []string) error {
		calls <- changed
		return errors.New("render failed")
	}, logger.NewNop(), 100*time.Millisecond)
	require.NoError(t, err)
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a_1.mp3"), []byte("x"), 0o644))
	select {
	case <-calls:
	case <-time.After(5 * time.Second):
		t.Fatal("first call missing")
	}

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a_2.mp3"), []byte("x"), 0o644))
	select {
	case got := <-calls:
		assert.Equal(t, []string{filepath.Join(dir, "a_2.mp3")}, got)
	case <-time.After(5 * time.Second):
		t.Fatal("second call missing")
	}
}

func TestNewMissingDir(t *testing.T) {
	_, err := New([]Dir{{Path: filepath.Join(t.TempDir(), "nope"), Kind: models.KindImage}}, nil, logger.NewNop(), 0)
	assert.Error(t, err)
}
