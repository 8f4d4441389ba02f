package config

import "time"

// Worker and retry defaults
const (
	// DefaultWorkerCount is the size of the task worker pool.
	DefaultWorkerCount = 4

	// DefaultMaxStageAttempts caps retries of a single pipeline stage.
	DefaultMaxStageAttempts = 3

	// DefaultVisibilityTimeout hides a claimed task from other workers.
	DefaultVisibilityTimeout = 5 * time.Minute

	// DefaultSignedURLTTL bounds the validity of signed upload/download URLs.
	DefaultSignedURLTTL = 15 * time.Minute
)

// Upload constraints
const (
	// MaxUploadSize is the largest accepted source video (500MB).
	MaxUploadSize = 500 * 1024 * 1024
)

// UploadTypeExt maps the accepted source video content types to the file
// extension used in upload keys. Content types outside this map are rejected.
var UploadTypeExt = map[string]string{
	"video/mp4":       "mp4",
	"video/quicktime": "mov",
	"video/x-msvideo": "avi",
}

// SupportedLanguages is the fixed set of dubbing target languages (ISO codes).
var SupportedLanguages = []string{"es", "en", "fr", "de", "it", "pt", "ru", "zh", "ja"}

// Speech synthesis defaults (ElevenLabs)
const (
	// DefaultVoiceID is used when a language has no explicit voice configuration.
	DefaultVoiceID = "pNInz6obpgDQGcFmaJgB"

	// DefaultStability is the default ElevenLabs stability setting.
	DefaultStability = 0.5

	// DefaultSimilarityBoost is the default ElevenLabs similarity setting.
	DefaultSimilarityBoost = 0.75

	// DefaultSpeechModel is the multilingual ElevenLabs model.
	DefaultSpeechModel = "eleven_multilingual_v2"
)

// DefaultTranslationModel is the Cohere model used for segment translation.
const DefaultTranslationModel = "command-r-08-2024"

// IsSupportedLanguage reports whether lang (lower-case ISO code) is dubbable.
func IsSupportedLanguage(lang string) bool {
	for _, l := range SupportedLanguages {
		if l == lang {
			return true
		}
	}
	return false
}
