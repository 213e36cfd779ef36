package synth

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/nguyentantai21042004/slide-flow/internal/logger"
	openai "github.com/sashabaranov/go-openai"
)

type implOpenAI struct {
	client *openai.Client
	model  string
	logger logger.Logger
}

var _ Synthesizer = (*implOpenAI)(nil)

// NewOpenAI creates a Synthesizer on the OpenAI speech endpoint. baseURL
// overrides the API location when non-empty.
func NewOpenAI(apiKey, model, baseURL string, log logger.Logger) (Synthesizer, error) {
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY is not set")
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &implOpenAI{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		logger: log,
	}, nil
}

func (s *implOpenAI) Synthesize(ctx context.Context, text, voice, instructions string) (*Speech, error) {
	s.logger.Debug(ctx, "OpenAI speech request: model=%s voice=%s chars=%d", s.model, voice, runeLen(text))

	resp, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(s.model),
		Input:          text,
		Voice:          openai.SpeechVoice(voice),
		Instructions:   instructions,
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, fmt.Errorf("create speech: %w", err)
	}
	defer resp.Close()

	data, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("read speech: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("empty speech response")
	}
	return &Speech{Data: data, Format: "mp3"}, nil
}
