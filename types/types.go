package types

import "time"

// SourceKind tells the pipeline how to obtain the source video.
type SourceKind string

const (
	SourceUpload      SourceKind = "upload"
	SourceExternalURL SourceKind = "external-url"
)

// InputStatus is the coarse lifecycle of a source video.
type InputStatus string

const (
	InputPending    InputStatus = "pending"
	InputProcessing InputStatus = "processing"
	InputCompleted  InputStatus = "completed"
	InputFailed     InputStatus = "failed"
)

// Stage is the per-language pipeline position of a VideoOutput. A stage value
// means that stage has completed; the next stage in StageOrder runs next.
type Stage string

const (
	StagePending        Stage = "pending"
	StageFetched        Stage = "fetched"
	StageAudioExtracted Stage = "audio-extracted"
	StageTranscribed    Stage = "transcribed"
	StageTranslated     Stage = "translated"
	StageSynthesized    Stage = "synthesized"
	StageAssembled      Stage = "assembled"
	StageMuxed          Stage = "muxed"
	StagePublished      Stage = "published"
	StageFailed         Stage = "failed"
	StageCancelled      Stage = "cancelled"
)

// StageOrder is the fixed stage sequence every language runs through.
var StageOrder = []Stage{
	StageFetched,
	StageAudioExtracted,
	StageTranscribed,
	StageTranslated,
	StageSynthesized,
	StageAssembled,
	StageMuxed,
	StagePublished,
}

// Terminal reports whether no further stages run after s.
func (s Stage) Terminal() bool {
	return s == StagePublished || s == StageFailed || s == StageCancelled
}

// VideoInput is a registered source video.
type VideoInput struct {
	ID            string      `json:"id"`
	OwnerID       string      `json:"owner_id"`
	Title         string      `json:"title,omitempty"`
	SourceKind    SourceKind  `json:"source_kind"`
	SourceLocator string      `json:"source_locator"`
	Status        InputStatus `json:"status"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// VideoOutput is the per-(video, language) unit of work and status tracking.
// ArtifactRefs maps a completed stage to the storage locator of its artifact;
// artifact presence, not Stage, is what the runner trusts when resuming.
type VideoOutput struct {
	ID              string           `json:"id"`
	VideoInputID    string           `json:"video_input_id"`
	Language        string           `json:"language"`
	Stage           Stage            `json:"stage"`
	ArtifactRefs    map[Stage]string `json:"artifact_refs"`
	ErrorDetail     string           `json:"error_detail,omitempty"`
	AttemptCount    int              `json:"attempt_count"`
	ClippedSegments int              `json:"clipped_segments"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// Clone returns a deep copy so callers never share the ArtifactRefs map.
func (o *VideoOutput) Clone() *VideoOutput {
	c := *o
	c.ArtifactRefs = make(map[Stage]string, len(o.ArtifactRefs))
	for k, v := range o.ArtifactRefs {
		c.ArtifactRefs[k] = v
	}
	return &c
}

// VoiceEngine selects the speech synthesis backend for a language.
type VoiceEngine string

const (
	EngineElevenLabs VoiceEngine = "elevenlabs"
	EngineGoogle     VoiceEngine = "google"
)

// ElevenLabsVoice configures the ElevenLabs engine.
type ElevenLabsVoice struct {
	VoiceID         string  `json:"voice_id"`
	Stability       float64 `json:"stability,omitempty"`
	SimilarityBoost float64 `json:"similarity_boost,omitempty"`
	ModelID         string  `json:"model_id,omitempty"`
}

// GoogleVoice configures the Google Cloud TTS engine.
type GoogleVoice struct {
	LanguageCode string `json:"language_code"`
	Name         string `json:"name,omitempty"`
	SSMLGender   string `json:"ssml_gender,omitempty"`
}

// VoiceConfig is a tagged variant: Engine picks which member is consulted.
type VoiceConfig struct {
	Engine     VoiceEngine      `json:"engine"`
	ElevenLabs *ElevenLabsVoice `json:"elevenlabs,omitempty"`
	Google     *GoogleVoice     `json:"google,omitempty"`
}

// ProcessRequest is the fan-in request: one video, many languages.
type ProcessRequest struct {
	VideoID       string                 `json:"videoId"`
	Languages     []string               `json:"languages"`
	VoiceSettings map[string]VoiceConfig `json:"voiceConfig,omitempty"`
}

// DubbingTask is the per-language queue message after fan-out.
type DubbingTask struct {
	VideoID  string       `json:"videoId"`
	OutputID string       `json:"outputId"`
	Language string       `json:"language"`
	Voice    *VoiceConfig `json:"voiceConfig,omitempty"`
}

// OutputStatus is the user-visible state of one language's dub.
type OutputStatus struct {
	ID              string `json:"id"`
	Language        string `json:"language"`
	Stage           Stage  `json:"stage"`
	ClippedSegments int    `json:"clipped_segments,omitempty"`
	ErrorDetail     string `json:"error_detail,omitempty"`
	DownloadURL     string `json:"download_url,omitempty"`
}

// VideoStatus aggregates a video and all of its outputs.
type VideoStatus struct {
	ID      string         `json:"id"`
	Title   string         `json:"title,omitempty"`
	Status  InputStatus    `json:"status"`
	Outputs []OutputStatus `json:"outputs"`
}

// UploadGrant is returned when a client registers an upload.
type UploadGrant struct {
	ID        string `json:"id"`
	UploadURL string `json:"uploadUrl"`
}
