package renderer

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"testing"

	"github.com/nguyentantai21042004/slide-flow/internal/logger"
	"github.com/nguyentantai21042004/slide-flow/internal/media"
	"github.com/nguyentantai21042004/slide-flow/internal/media/mediatest"
	"github.com/nguyentantai21042004/slide-flow/internal/models"
	"github.com/nguyentantai21042004/slide-flow/pkg/executor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	root     string
	clipsDir string
	tempDir  string
	exec     *mediatest.Executor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	return &fixture{
		root:     root,
		clipsDir: filepath.Join(root, "clips"),
		tempDir:  filepath.Join(root, "tmp"),
		exec:     &mediatest.Executor{},
	}
}

func (f *fixture) renderer(exec executor.Executor, jobs int, skip bool) Renderer {
	return New(Options{
		Project:      "demo",
		ClipsDir:     f.clipsDir,
		TempDir:      f.tempDir,
		Width:        32,
		Height:       18,
		FPS:          24,
		Jobs:         jobs,
		SkipExisting: skip,
	}, exec, media.New(exec, ""), logger.NewNop())
}

// pair writes a real image and a fake audio file for id.
func (f *fixture) pair(t *testing.T, id string, seconds float64) models.Pair {
	t.Helper()
	imgPath := filepath.Join(f.root, "img", "slide-"+id+".png")
	require.NoError(t, os.MkdirAll(filepath.Dir(imgPath), 0o755))
	img := image.NewNRGBA(image.Rect(0, 0, 16, 9))
	for x := 0; x < 16; x++ {
		img.Set(x, 4, color.White)
	}
	out, err := os.Create(imgPath)
	require.NoError(t, err)
	require.NoError(t, png.Encode(out, img))
	require.NoError(t, out.Close())

	audPath := filepath.Join(f.root, "aud", "slide-"+id+".mp3")
	require.NoError(t, mediatest.WriteFile(audPath, seconds))

	return models.Pair{
		ID:    id,
		Image: models.MediaAsset{Path: imgPath, Name: filepath.Base(imgPath), Kind: models.KindImage, LogicalID: id},
		Audio: models.MediaAsset{Path: audPath, Name: filepath.Base(audPath), Kind: models.KindAudio, LogicalID: id},
	}
}

func dirNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	require.NoError(t, err)
	var out []string
	for _, e := range entries {
		out = append(out, e.Name())
	}
	return out
}

func TestClipFileName(t *testing.T) {
	assert.Equal(t, "course_clip_3.c.0.mp4", ClipFileName("course", "3.c.0"))
	assert.Equal(t, "course_clip_", ClipPrefix("course"))
	assert.Equal(t, filepath.Join("out", ".course_clip_7.partial.mp4"), partialPath(filepath.Join("out", "course_clip_7.mp4")))
}

func TestRender(t *testing.T) {
	f := newFixture(t)
	p := f.pair(t, "5", 5.25)

	clip, err := f.renderer(f.exec, 1, false).Render(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, "5", clip.SourcePairID)
	assert.Equal(t, filepath.Join(f.clipsDir, "demo_clip_5.mp4"), clip.FilePath)
	assert.InDelta(t, 5.25, clip.DurationSeconds, 1e-9)

	d, err := mediatest.Duration(clip.FilePath)
	require.NoError(t, err)
	assert.InDelta(t, 5.25, d, 1.0/24)

	assert.Equal(t, []string{"demo_clip_5.mp4"}, dirNames(t, f.clipsDir), "no partial file left behind")
	assert.Empty(t, dirNames(t, f.tempDir), "workspace removed")

	calls := f.exec.Calls("ffmpeg")
	require.Len(t, calls, 1)
	args := strings.Join(calls[0], " ")
	assert.Contains(t, args, "-loop 1")
	assert.Contains(t, args, "-t 5.250000")
	assert.Contains(t, args, "libx264")
	assert.Contains(t, args, "stillimage")
	assert.Contains(t, args, "yuv420p")
	assert.Contains(t, args, "aac")
	assert.Contains(t, args, p.Audio.Path)
}

func TestRenderAllIsolatesFailures(t *testing.T) {
	f := newFixture(t)
	good1 := f.pair(t, "1", 3)
	badAudio := f.pair(t, "2", 4)
	require.NoError(t, mediatest.WriteCorrupt(badAudio.Audio.Path))
	badImage := f.pair(t, "3", 2)
	require.NoError(t, os.WriteFile(badImage.Image.Path, []byte("not a png"), 0o644))
	good2 := f.pair(t, "4", 6)

	batch := f.renderer(f.exec, 1, false).RenderAll(context.Background(), []models.Pair{good1, badAudio, badImage, good2})
	require.NoError(t, batch.Err)

	require.Len(t, batch.Clips, 2)
	assert.Equal(t, "1", batch.Clips[0].SourcePairID)
	assert.Equal(t, "4", batch.Clips[1].SourcePairID)
	assert.InDelta(t, 9.0, batch.Clips.TotalSeconds(), 1e-9)

	require.Len(t, batch.Failures, 2)
	assert.Equal(t, "2", batch.Failures[0].ID)
	assert.Equal(t, models.StageProbe, batch.Failures[0].Stage)
	assert.Equal(t, badAudio.Audio.Path, batch.Failures[0].Path)
	assert.Equal(t, "3", batch.Failures[1].ID)
	assert.Equal(t, models.StageFrame, batch.Failures[1].Stage)

	assert.Equal(t, []string{"demo_clip_1.mp4", "demo_clip_4.mp4"}, dirNames(t, f.clipsDir))
	assert.Empty(t, dirNames(t, f.tempDir))
}

func TestRenderEncodeFailureLeavesNoFiles(t *testing.T) {
	f := newFixture(t)
	p := f.pair(t, "9", 2)
	f.exec.Fail = func(name string, _ []string) error {
		if name == "ffmpeg" {
			return errors.New("No space left on device")
		}
		return nil
	}

	_, err := f.renderer(f.exec, 1, false).Render(context.Background(), p)
	require.Error(t, err)

	var failure models.ItemFailure
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, models.StageEncode, failure.Stage)
	assert.Equal(t, "9", failure.ID)

	var cmdErr *executor.CommandError
	assert.True(t, errors.As(err, &cmdErr))

	assert.Empty(t, dirNames(t, f.clipsDir))
	assert.Empty(t, dirNames(t, f.tempDir))
}

// skewExecutor makes ffmpeg write clips longer than requested.
type skewExecutor struct {
	*mediatest.Executor
	skew float64
}

func (s *skewExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	out, err := s.Executor.Execute(ctx, name, args...)
	if err != nil || name != "ffmpeg" {
		return out, err
	}
	i := slices.Index(args, "-t")
	d, _ := strconv.ParseFloat(args[i+1], 64)
	for _, a := range args {
		if strings.HasSuffix(a, ".partial.mp4") {
			_ = mediatest.WriteFile(a, d+s.skew)
		}
	}
	return out, nil
}

func TestRenderDurationMismatch(t *testing.T) {
	f := newFixture(t)
	p := f.pair(t, "1", 4)

	exec := &skewExecutor{Executor: f.exec, skew: 0.5}
	_, err := f.renderer(exec, 1, false).Render(context.Background(), p)

	var mismatch *DurationMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.InDelta(t, 4.5, mismatch.Clip, 1e-6)
	assert.Empty(t, dirNames(t, f.clipsDir))
}

func TestRenderAllParallelKeepsOrder(t *testing.T) {
	f := newFixture(t)
	var pairs []models.Pair
	for i := 1; i <= 8; i++ {
		pairs = append(pairs, f.pair(t, strconv.Itoa(i), float64(i)))
	}

	batch := f.renderer(f.exec, 4, false).RenderAll(context.Background(), pairs)
	require.Empty(t, batch.Failures)
	require.Len(t, batch.Clips, 8)
	for i, c := range batch.Clips {
		assert.Equal(t, strconv.Itoa(i+1), c.SourcePairID)
	}
	assert.Empty(t, dirNames(t, f.tempDir))
}

func TestRenderAllCanceled(t *testing.T) {
	f := newFixture(t)
	pairs := []models.Pair{f.pair(t, "1", 1), f.pair(t, "2", 1)}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	batch := f.renderer(f.exec, 1, false).RenderAll(ctx, pairs)
	assert.ErrorIs(t, batch.Err, context.Canceled)
	assert.Empty(t, batch.Clips)
	assert.Empty(t, batch.Failures)
	assert.Empty(t, f.exec.Calls("ffmpeg"))
}

func TestRenderAllStopsAfterCurrentClip(t *testing.T) {
	f := newFixture(t)
	pairs := []models.Pair{f.pair(t, "1", 1), f.pair(t, "2", 1), f.pair(t, "3", 1)}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.exec.Fail = func(name string, _ []string) error {
		if filepath.Base(name) == "ffmpeg" {
			cancel()
		}
		return nil
	}

	batch := f.renderer(f.exec, 1, false).RenderAll(ctx, pairs)
	assert.ErrorIs(t, batch.Err, context.Canceled)
	require.Len(t, batch.Clips, 1)
	assert.Equal(t, "1", batch.Clips[0].SourcePairID)
	assert.Empty(t, batch.Failures)
	assert.Len(t, f.exec.Calls("ffmpeg"), 1)
}

func TestRenderAllSkipExisting(t *testing.T) {
	f := newFixture(t)
	existing := f.pair(t, "1", 2)
	fresh := f.pair(t, "2", 3)
	require.NoError(t, mediatest.WriteFile(filepath.Join(f.clipsDir, "demo_clip_1.mp4"), 2))

	batch := f.renderer(f.exec, 1, true).RenderAll(context.Background(), []models.Pair{existing, fresh})
	require.Empty(t, batch.Failures)
	require.Len(t, batch.Clips, 2)
	require.Len(t, batch.Reused, 1)
	assert.Equal(t, "1", batch.Reused[0].SourcePairID)
	assert.Len(t, f.exec.Calls("ffmpeg"), 1)
}
