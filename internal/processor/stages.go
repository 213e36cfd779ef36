package processor

import (
	"path/filepath"

	"github.com/nguyentantai21042004/slide-flow/internal/assembler"
	"github.com/nguyentantai21042004/slide-flow/internal/models"
	"github.com/nguyentantai21042004/slide-flow/internal/pairing"
	"github.com/nguyentantai21042004/slide-flow/internal/renderer"
	"github.com/nguyentantai21042004/slide-flow/internal/synth"
)

func (p *implProcessor) engine() pairing.Engine {
	return pairing.New(p.cfg.Paths.Images, p.cfg.AudioDir(), p.scheme, p.logger)
}

func (p *implProcessor) renderer(skipExisting bool) renderer.Renderer {
	v := p.cfg.Video
	return renderer.New(renderer.Options{
		Project:      p.cfg.Project,
		ClipsDir:     p.cfg.ClipsDir(),
		TempDir:      p.cfg.Paths.Temp,
		Width:        v.Width,
		Height:       v.Height,
		FPS:          v.FPS,
		Fit:          v.Fit,
		Preset:       v.Preset,
		CRF:          v.CRF,
		AudioBitrate: v.AudioBitrate,
		FFmpegPath:   p.cfg.FFmpeg.FFmpegPath,
		Jobs:         p.opts.Jobs,
		SkipExisting: skipExisting,
	}, p.executor, p.prober, p.logger)
}

func (p *implProcessor) assembler() assembler.Assembler {
	v := p.cfg.Video
	return assembler.New(assembler.Options{
		Width:             v.Width,
		Height:            v.Height,
		FPS:               v.FPS,
		TransitionSeconds: v.Transition(),
		Preset:            v.Preset,
		CRF:               v.CRF,
		AudioBitrate:      v.AudioBitrate,
		FFmpegPath:        p.cfg.FFmpeg.FFmpegPath,
		Confirm:           p.opts.Confirm,
		IDOf:              p.clipID,
	}, p.executor, p.prober, p.logger)
}

func (p *implProcessor) narrator() (synth.Narrator, error) {
	s := p.opts.Synthesizer
	if s == nil {
		var err error
		if s, err = synth.New(p.cfg, p.logger); err != nil {
			return nil, err
		}
	}
	return synth.NewNarrator(synth.NarratorOptions{
		ScriptsDir:     p.cfg.Paths.Scripts,
		OutputDir:      p.cfg.AudioDir(),
		TempDir:        p.cfg.Paths.Temp,
		Voice:          synth.VoiceFor(p.cfg),
		Instructions:   p.cfg.TTS.Instructions,
		ChunkLimit:     p.cfg.TTS.ChunkLimit,
		WordsPerSecond: p.cfg.TTS.WordsPerSecond,
		FFmpegPath:     p.cfg.FFmpeg.FFmpegPath,
	}, s, p.executor, p.prober, p.logger), nil
}

// clipID reads the logical id back from a clip file name.
func (p *implProcessor) clipID(path string) string {
	id, _ := p.scheme.Extract(models.KindVideo, filepath.Base(path))
	return id
}
