package assembler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nguyentantai21042004/slide-flow/internal/logger"
	"github.com/nguyentantai21042004/slide-flow/internal/media"
	"github.com/nguyentantai21042004/slide-flow/internal/media/mediatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAssembler(exec *mediatest.Executor, confirm ConfirmFunc) Assembler {
	return New(Options{
		Width:             1920,
		Height:            1080,
		FPS:               24,
		TransitionSeconds: 0.75,
		Confirm:           confirm,
		IDOf: func(path string) string {
			return strings.TrimSuffix(strings.TrimPrefix(filepath.Base(path), "demo_clip_"), ".mp4")
		},
	}, exec, media.New(exec, ""), logger.NewNop())
}

func writeClips(t *testing.T, dir string, durations ...float64) []string {
	t.Helper()
	paths := make([]string, 0, len(durations))
	for i, d := range durations {
		p := filepath.Join(dir, "demo_clip_"+string(rune('1'+i))+".mp4")
		require.NoError(t, mediatest.WriteFile(p, d))
		paths = append(paths, p)
	}
	return paths
}

// segment returns the video filter chain of input i.
func segment(graph string, i int) string {
	start := strings.Index(graph, "["+string(rune('0'+i))+":v]")
	end := strings.Index(graph, "[v"+string(rune('0'+i))+"]")
	return graph[start:end]
}

func TestAssembleScenario(t *testing.T) {
	dir := t.TempDir()
	clips := writeClips(t, dir, 5.0, 4.0, 6.0)
	out := filepath.Join(dir, "final", "demo_full_video.mp4")
	exec := &mediatest.Executor{}

	res, err := newAssembler(exec, nil).Assemble(context.Background(), clips, out)
	require.NoError(t, err)

	assert.InDelta(t, 15.0, res.EstimatedSeconds, 1e-6)
	assert.InDelta(t, 15.0, res.FinalSeconds, 1e-6)
	assert.InDelta(t, 15.0, res.OutputSeconds, 3.0/24)
	assert.Empty(t, res.Dropped)
	require.Len(t, res.Clips, 3)
	assert.Equal(t, []string{"1", "2", "3"}, []string{res.Clips[0].SourcePairID, res.Clips[1].SourcePairID, res.Clips[2].SourcePairID})

	_, err = os.Stat(out)
	require.NoError(t, err)
	entries, err := os.ReadDir(filepath.Dir(out))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "partial file must be gone")

	calls := exec.Calls("ffmpeg")
	require.Len(t, calls, 1)
	args := calls[0]
	var inputs []string
	var graph string
	for i, a := range args {
		switch a {
		case "-i":
			inputs = append(inputs, args[i+1])
		case "-filter_complex":
			graph = args[i+1]
		}
	}
	assert.Equal(t, clips, inputs, "concatenation keeps input order")
	assert.Contains(t, strings.Join(args, " "), "-preset faster")

	first, middle, last := segment(graph, 0), segment(graph, 1), segment(graph, 2)
	assert.NotContains(t, first, "fade=t=in")
	assert.Contains(t, first, "fade=t=out:st=4.250:d=0.750")
	assert.Contains(t, middle, "fade=t=in:st=0:d=0.750")
	assert.Contains(t, middle, "fade=t=out:st=3.250:d=0.750")
	assert.Contains(t, last, "fade=t=in:st=0:d=0.750")
	assert.NotContains(t, last, "fade=t=out")
	assert.True(t, strings.HasSuffix(graph, "[v0][a0][v1][a1][v2][a2]concat=n=3:v=1:a=1[vout][aout]"))
}

func TestAssembleDropsCorruptClip(t *testing.T) {
	dir := t.TempDir()
	clips := writeClips(t, dir, 5.0, 4.0, 6.0)
	require.NoError(t, mediatest.WriteCorrupt(clips[1]))
	exec := &mediatest.Executor{}

	res, err := newAssembler(exec, nil).Assemble(context.Background(), clips, filepath.Join(dir, "out.mp4"))
	require.NoError(t, err)

	require.Len(t, res.Dropped, 1)
	assert.Equal(t, clips[1], res.Dropped[0].Path)
	require.Len(t, res.Clips, 2)
	assert.InDelta(t, 11.0, res.FinalSeconds, 1e-6)
	assert.InDelta(t, 11.0, res.OutputSeconds, 2.0/24)
}

func TestAssembleNoValidClips(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "demo_clip_1.mp4")
	require.NoError(t, mediatest.WriteCorrupt(bad))
	exec := &mediatest.Executor{}
	out := filepath.Join(dir, "out.mp4")

	res, err := newAssembler(exec, nil).Assemble(context.Background(), []string{bad, filepath.Join(dir, "missing.mp4")}, out)
	assert.ErrorIs(t, err, ErrNoClips)
	assert.Len(t, res.Dropped, 2)
	assert.Empty(t, exec.Calls("ffmpeg"))
	assert.NoFileExists(t, out)

	_, err = newAssembler(exec, nil).Assemble(context.Background(), nil, out)
	assert.ErrorIs(t, err, ErrNoClips)
}

func TestAssembleEncodeFailure(t *testing.T) {
	dir := t.TempDir()
	clips := writeClips(t, dir, 2.0, 3.0)
	exec := &mediatest.Executor{
		Fail: func(name string, _ []string) error {
			if name == "ffmpeg" {
				return errors.New("Conversion failed!")
			}
			return nil
		},
	}
	out := filepath.Join(dir, "final", "out.mp4")

	_, err := newAssembler(exec, nil).Assemble(context.Background(), clips, out)
	var encErr *EncodeError
	require.True(t, errors.As(err, &encErr))
	assert.Equal(t, out, encErr.Output)

	assert.NoFileExists(t, out)
	assert.NoFileExists(t, partialPath(out))
	for _, c := range clips {
		d, err := mediatest.Duration(c)
		require.NoError(t, err, "clips are untouched")
		assert.Positive(t, d)
	}
}

func TestAssembleConfirmDeclined(t *testing.T) {
	dir := t.TempDir()
	clips := writeClips(t, dir, 2.0, 3.0)
	exec := &mediatest.Executor{}

	var seen Estimate
	confirm := func(_ context.Context, est Estimate) bool {
		seen = est
		return false
	}

	_, err := newAssembler(exec, confirm).Assemble(context.Background(), clips, filepath.Join(dir, "out.mp4"))
	assert.ErrorIs(t, err, ErrAborted)
	assert.InDelta(t, 5.0, seen.Seconds, 1e-6)
	assert.Len(t, seen.Clips, 2)
	assert.Empty(t, exec.Calls("ffmpeg"))
}

func TestAssembleKeepsDuplicates(t *testing.T) {
	dir := t.TempDir()
	clips := writeClips(t, dir, 2.0)
	exec := &mediatest.Executor{}

	res, err := newAssembler(exec, nil).Assemble(context.Background(), []string{clips[0], clips[0]}, filepath.Join(dir, "out.mp4"))
	require.NoError(t, err)
	assert.Len(t, res.Clips, 2)
	assert.InDelta(t, 4.0, res.FinalSeconds, 1e-6)
}

func TestFilterGraph(t *testing.T) {
	t.Run("single clip has no fades", func(t *testing.T) {
		g := FilterGraph([]float64{3}, 1280, 720, 30, 0.75)
		assert.NotContains(t, g, "fade=")
		assert.Contains(t, g, "scale=1280:720:force_original_aspect_ratio=decrease")
		assert.Contains(t, g, "fps=30")
		assert.True(t, strings.HasSuffix(g, "[v0][a0]concat=n=1:v=1:a=1[vout][aout]"))
	})

	t.Run("short clips clamp the fade", func(t *testing.T) {
		g := FilterGraph([]float64{4, 1, 4}, 1920, 1080, 24, 0.75)
		mid := segment(g, 1)
		assert.Contains(t, mid, "fade=t=in:st=0:d=0.500")
		assert.Contains(t, mid, "fade=t=out:st=0.500:d=0.500")
	})

	t.Run("zero transition", func(t *testing.T) {
		g := FilterGraph([]float64{2, 2}, 1920, 1080, 24, 0)
		assert.NotContains(t, g, "fade=")
	})

	t.Run("segments are trimmed to their duration", func(t *testing.T) {
		g := FilterGraph([]float64{2.5, 3}, 1920, 1080, 24, 0.75)
		assert.Contains(t, g, "[0:v]trim=duration=2.500,setpts=PTS-STARTPTS")
		assert.Contains(t, g, "[1:a]aformat=sample_rates=44100:channel_layouts=stereo,apad,atrim=duration=3.000")
		assert.Contains(t, g, "afade=t=out:st=1.750:d=0.750")
	})
}
