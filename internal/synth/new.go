package synth

import (
	"fmt"

	"github.com/nguyentantai21042004/slide-flow/internal/config"
	"github.com/nguyentantai21042004/slide-flow/internal/logger"
)

// New creates the Synthesizer selected by tts.provider.
func New(cfg *config.Config, log logger.Logger) (Synthesizer, error) {
	switch cfg.TTS.Provider {
	case config.ProviderOpenAI:
		return NewOpenAI(cfg.Secrets.OpenAIKey, cfg.TTS.Model, "", log)
	case config.ProviderGemini:
		return NewGemini(cfg.Secrets.GeminiKeys, cfg.Gemini.Model, "", log)
	default:
		return nil, fmt.Errorf("unknown tts provider %q", cfg.TTS.Provider)
	}
}

// VoiceFor returns the voice name of the configured provider.
func VoiceFor(cfg *config.Config) string {
	if cfg.TTS.Provider == config.ProviderGemini {
		return cfg.Gemini.Voice
	}
	return cfg.TTS.Voice
}
