package providers

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	"google.golang.org/api/option"
	texttospeech "google.golang.org/api/texttospeech/v1"

	"github.com/franclarke/multidub-ai/types"
)

// GoogleTTS is the alternative synthesis engine, selected when a language's
// voice configuration carries the Google variant.
type GoogleTTS struct {
	svc     *texttospeech.Service
	Measure DurationFunc
}

// NewGoogleTTS creates the Google Cloud TTS engine with an API key.
func NewGoogleTTS(ctx context.Context, apiKey string, measure DurationFunc) (*GoogleTTS, error) {
	svc, err := texttospeech.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("unable to create text-to-speech service: %w", err)
	}
	return &GoogleTTS{svc: svc, Measure: measure}, nil
}

func (g *GoogleTTS) Synthesize(ctx context.Context, text string, voice types.VoiceConfig, outPath string) (float64, error) {
	cfg := voice.Google
	if cfg == nil {
		return 0, types.Permanent("synthesize", errors.New("google engine selected without google voice config"))
	}

	req := &texttospeech.SynthesizeSpeechRequest{
		Input: &texttospeech.SynthesisInput{Text: text},
		Voice: &texttospeech.VoiceSelectionParams{
			LanguageCode: cfg.LanguageCode,
			Name:         cfg.Name,
			SsmlGender:   cfg.SSMLGender,
		},
		AudioConfig: &texttospeech.AudioConfig{AudioEncoding: "MP3"},
	}

	resp, err := g.svc.Text.Synthesize(req).Context(ctx).Do()
	if err != nil {
		return 0, types.Transient("synthesize", fmt.Errorf("%w: %v", types.ErrProviderUnavailable, err))
	}
	if resp.AudioContent == "" {
		return 0, types.Permanent("synthesize", errors.New("no audio content generated"))
	}

	audio, err := base64.StdEncoding.DecodeString(resp.AudioContent)
	if err != nil {
		return 0, fmt.Errorf("decode audio content: %w", err)
	}
	if err := os.WriteFile(outPath, audio, 0o644); err != nil {
		return 0, err
	}

	return g.Measure(ctx, outPath)
}
