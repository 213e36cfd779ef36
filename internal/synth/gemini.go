package synth

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/nguyentantai21042004/slide-flow/internal/logger"
	"google.golang.org/genai"
)

const defaultPCMRate = 24000

type generateFunc func(ctx context.Context, apiKey, prompt, voice string) ([]byte, string, error)

type implGemini struct {
	apiKeys  []string
	model    string
	baseURL  string
	logger   logger.Logger
	generate generateFunc

	mu         sync.Mutex
	currentKey int
}

var _ Synthesizer = (*implGemini)(nil)

// NewGemini creates a Synthesizer on Gemini's speech models. It rotates
// through apiKeys when one is rate limited.
func NewGemini(apiKeys []string, model, baseURL string, log logger.Logger) (Synthesizer, error) {
	if len(apiKeys) == 0 {
		return nil, errors.New("GEMINI_API_KEYS is not set")
	}
	g := &implGemini{
		apiKeys: apiKeys,
		model:   model,
		baseURL: baseURL,
		logger:  log,
	}
	g.generate = g.callGemini
	return g, nil
}

// Synthesize returns WAV audio. Style instructions are spoken-style
// directions prepended to the text, which is how these models take them.
func (g *implGemini) Synthesize(ctx context.Context, text, voice, instructions string) (*Speech, error) {
	prompt := text
	if s := strings.TrimSpace(instructions); s != "" {
		prompt = "Read the following in this style.\n" + s + "\n\n" + text
	}

	var lastErr error
	for range g.apiKeys {
		key, idx := g.key()

		pcm, mime, err := g.generate(ctx, key, prompt, voice)
		if err != nil {
			if isRateLimited(err) {
				g.logger.Warn(ctx, "Key %d rate limited, rotating...", idx+1)
				g.rotateKey(idx)
				lastErr = err
				continue
			}
			return nil, fmt.Errorf("generate speech: %w", err)
		}

		return &Speech{Data: wavFromPCM(pcm, pcmRate(mime)), Format: "wav"}, nil
	}

	return nil, fmt.Errorf("all API keys exhausted: %w", lastErr)
}

func (g *implGemini) callGemini(ctx context.Context, apiKey, prompt, voice string) ([]byte, string, error) {
	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if g.baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: g.baseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, "", fmt.Errorf("create client: %w", err)
	}

	result, err := client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: voice},
			},
		},
	})
	if err != nil {
		return nil, "", err
	}

	if result != nil && len(result.Candidates) > 0 && result.Candidates[0].Content != nil {
		var (
			pcm  []byte
			mime string
		)
		for _, part := range result.Candidates[0].Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				pcm = append(pcm, part.InlineData.Data...)
				mime = part.InlineData.MIMEType
			}
		}
		if len(pcm) > 0 {
			return pcm, mime, nil
		}
	}

	return nil, "", fmt.Errorf("empty response from Gemini")
}

func (g *implGemini) key() (string, int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.apiKeys[g.currentKey], g.currentKey
}

// rotateKey moves past idx unless another caller already rotated.
func (g *implGemini) rotateKey(idx int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.currentKey == idx {
		g.currentKey = (g.currentKey + 1) % len(g.apiKeys)
	}
}

func isRateLimited(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}

// pcmRate reads the sample rate from a MIME type like
// "audio/L16;codec=pcm;rate=24000".
func pcmRate(mime string) int {
	for _, param := range strings.Split(mime, ";") {
		k, v, ok := strings.Cut(strings.TrimSpace(param), "=")
		if ok && strings.EqualFold(k, "rate") {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				return n
			}
		}
	}
	return defaultPCMRate
}

// wavFromPCM wraps 16-bit mono little-endian PCM in a WAV container.
func wavFromPCM(pcm []byte, rate int) []byte {
	const (
		channels      = 1
		bitsPerSample = 16
	)
	blockAlign := channels * bitsPerSample / 8

	var buf bytes.Buffer
	buf.Grow(44 + len(pcm))
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(rate))
	binary.Write(&buf, binary.LittleEndian, uint32(rate*blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(bitsPerSample))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)
	return buf.Bytes()
}
