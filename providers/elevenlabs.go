package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/franclarke/multidub-ai/config"
	"github.com/franclarke/multidub-ai/types"
)

// ElevenLabs synthesizes one clip per segment through the ElevenLabs
// text-to-speech HTTP API.
type ElevenLabs struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Measure    DurationFunc
}

// NewElevenLabs returns an ElevenLabs synthesizer. measure reports each
// rendered clip's spoken duration (normally media tooling's probe).
func NewElevenLabs(apiKey string, measure DurationFunc) *ElevenLabs {
	return &ElevenLabs{
		APIKey:     apiKey,
		BaseURL:    "https://api.elevenlabs.io",
		HTTPClient: &http.Client{Timeout: 2 * time.Minute},
		Measure:    measure,
	}
}

// DefaultElevenLabsVoice is used when a language has no explicit voice config.
func DefaultElevenLabsVoice() *types.ElevenLabsVoice {
	return &types.ElevenLabsVoice{
		VoiceID:         config.DefaultVoiceID,
		Stability:       config.DefaultStability,
		SimilarityBoost: config.DefaultSimilarityBoost,
		ModelID:         config.DefaultSpeechModel,
	}
}

func (e *ElevenLabs) Synthesize(ctx context.Context, text string, voice types.VoiceConfig, outPath string) (float64, error) {
	// Default on a copy so the caller's voice config is never written to.
	cfg := DefaultElevenLabsVoice()
	if voice.ElevenLabs != nil {
		c := *voice.ElevenLabs
		cfg = &c
	}
	if cfg.ModelID == "" {
		cfg.ModelID = config.DefaultSpeechModel
	}

	payload := map[string]any{
		"text":     text,
		"model_id": cfg.ModelID,
		"voice_settings": map[string]any{
			"stability":        cfg.Stability,
			"similarity_boost": cfg.SimilarityBoost,
		},
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return 0, err
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s", e.BaseURL, cfg.VoiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return 0, err
	}
	req.Header.Set("xi-api-key", e.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return 0, types.Transient("synthesize", fmt.Errorf("%w: %v", types.ErrProviderUnavailable, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, classifyHTTP("synthesize", resp, fmt.Errorf("voice %s rejected input", cfg.VoiceID))
	}

	out, err := os.Create(outPath)
	if err != nil {
		return 0, err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		return 0, fmt.Errorf("save clip: %w", err)
	}
	if err := out.Close(); err != nil {
		return 0, err
	}

	return e.Measure(ctx, outPath)
}
