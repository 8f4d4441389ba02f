// Package providers holds the adapters for the external capabilities the
// pipeline chains: transcription, translation and speech synthesis. Each
// adapter is stateless beyond its client configuration and swappable behind
// a narrow interface.
package providers

import (
	"context"

	"github.com/franclarke/multidub-ai/timeline"
	"github.com/franclarke/multidub-ai/types"
)

// Transcriber turns an audio file into a Timeline of time-stamped segments.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, languageHint string) (timeline.Timeline, error)
}

// Translator replaces each segment's text with its translation. The result
// must have identical length and per-index offsets; only text may change.
type Translator interface {
	Translate(ctx context.Context, t timeline.Timeline, targetLanguage string) (timeline.Timeline, error)
}

// Synthesizer renders one segment's text to an audio clip at outPath and
// returns the clip's measured spoken duration in seconds.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, voice types.VoiceConfig, outPath string) (float64, error)
}

// DurationFunc measures a rendered clip; engines use it to report actual
// spoken duration without owning probe logic.
type DurationFunc func(ctx context.Context, path string) (float64, error)
