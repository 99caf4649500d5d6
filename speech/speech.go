// Package speech reads bot lines aloud.
//
// A Synthesizer turns text into audio bytes; a Speaker is what the talk
// session calls. Player glues the two together and stores each utterance
// as a WAV file.
package speech

import (
	"context"
)

// Speaker speaks a line in the given language (BCP-47, e.g. "ms-MY").
// Cancelling ctx stops the utterance.
type Speaker interface {
	Speak(ctx context.Context, text, languageCode string) error
}

// Synthesizer renders text to raw 16-bit little-endian mono PCM.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, languageCode string) ([]byte, error)
}

// Nop is a Speaker that stays silent.
type Nop struct{}

func (Nop) Speak(context.Context, string, string) error { return nil }

var _ Speaker = Nop{}
