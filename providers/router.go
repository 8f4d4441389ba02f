package providers

import (
	"context"
	"fmt"

	"github.com/franclarke/multidub-ai/types"
)

// SpeechRouter dispatches synthesis to the engine named by the voice config,
// keeping the pipeline runner provider-agnostic. An unset engine falls back
// to ElevenLabs with the default voice.
type SpeechRouter struct {
	ElevenLabs Synthesizer
	Google     Synthesizer
}

func (r *SpeechRouter) Synthesize(ctx context.Context, text string, voice types.VoiceConfig, outPath string) (float64, error) {
	switch voice.Engine {
	case types.EngineGoogle:
		if r.Google == nil {
			return 0, types.Permanent("synthesize", fmt.Errorf("google engine not configured"))
		}
		return r.Google.Synthesize(ctx, text, voice, outPath)
	case types.EngineElevenLabs, "":
		if r.ElevenLabs == nil {
			return 0, types.Permanent("synthesize", fmt.Errorf("elevenlabs engine not configured"))
		}
		return r.ElevenLabs.Synthesize(ctx, text, voice, outPath)
	default:
		return 0, types.Permanent("synthesize", fmt.Errorf("unknown speech engine %q", voice.Engine))
	}
}
