package synth

import "context"

// Synthesizer turns text into speech audio. Input length is limited by the
// provider; callers split long text with Split first.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voice, instructions string) (*Speech, error)
}

// Speech is synthesized audio. Format is the file extension of Data
// ("mp3", "wav").
type Speech struct {
	Data   []byte
	Format string
}
