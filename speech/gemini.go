package speech

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultModel is the Gemini text-to-speech model.
const DefaultModel = "gemini-2.5-flash-preview-tts"

// ErrNoAudio is returned when the model answers without audio data.
var ErrNoAudio = errors.New("speech: response contains no audio")

// Gemini synthesises speech with a prebuilt Gemini voice on Vertex AI.
type Gemini struct {
	client *genai.Client
	model  string
	voice  string
}

func NewGemini(ctx context.Context, projectId, location, model, voice string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectId,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("speech.NewGemini: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}
	return &Gemini{
		client: client,
		model:  model,
		voice:  voice,
	}, nil
}

func (g *Gemini) Synthesize(ctx context.Context, text, languageCode string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			LanguageCode: languageCode,
		},
	}
	if g.voice != "" {
		cfg.SpeechConfig.VoiceConfig = &genai.VoiceConfig{
			PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: g.voice},
		}
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(text), cfg)
	if err != nil {
		return nil, fmt.Errorf("speech.Gemini.Synthesize: %w", err)
	}
	return extractAudio(resp)
}

func extractAudio(res *genai.GenerateContentResponse) ([]byte, error) {
	if res == nil {
		return nil, ErrNoAudio
	}
	for _, c := range res.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if p != nil && p.InlineData != nil && len(p.InlineData.Data) > 0 {
				return p.InlineData.Data, nil
			}
		}
	}
	return nil, ErrNoAudio
}

var _ Synthesizer = (*Gemini)(nil)
