package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/franclarke/multidub-ai/timeline"
	"github.com/franclarke/multidub-ai/types"
)

// Whisper transcribes audio through the OpenAI audio transcriptions API,
// requesting verbose_json so segment timestamps come back with the text.
type Whisper struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
}

// NewWhisper returns a Whisper transcriber with production defaults.
func NewWhisper(apiKey string) *Whisper {
	return &Whisper{
		APIKey:     apiKey,
		BaseURL:    "https://api.openai.com/v1",
		Model:      "whisper-1",
		HTTPClient: &http.Client{Timeout: 5 * time.Minute},
	}
}

type whisperResponse struct {
	Text     string `json:"text"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

// Transcribe uploads the audio file and maps the response segments onto a
// Timeline. An empty response means a silent video, not an error.
func (w *Whisper) Transcribe(ctx context.Context, audioPath, languageHint string) (timeline.Timeline, error) {
	file, err := os.Open(audioPath)
	if err != nil {
		return timeline.Timeline{}, fmt.Errorf("open audio: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return timeline.Timeline{}, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return timeline.Timeline{}, err
	}
	_ = mw.WriteField("model", w.Model)
	_ = mw.WriteField("response_format", "verbose_json")
	if languageHint != "" {
		_ = mw.WriteField("language", languageHint)
	}
	if err := mw.Close(); err != nil {
		return timeline.Timeline{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.BaseURL+"/audio/transcriptions", &body)
	if err != nil {
		return timeline.Timeline{}, err
	}
	req.Header.Set("Authorization", "Bearer "+w.APIKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := w.HTTPClient.Do(req)
	if err != nil {
		return timeline.Timeline{}, types.Transient("transcribe", fmt.Errorf("%w: %v", types.ErrProviderUnavailable, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return timeline.Timeline{}, classifyHTTP("transcribe", resp, types.ErrUnsupportedAudio)
	}

	var wr whisperResponse
	if err := json.NewDecoder(resp.Body).Decode(&wr); err != nil {
		return timeline.Timeline{}, types.Transient("transcribe", fmt.Errorf("decode response: %w", err))
	}

	var t timeline.Timeline
	for _, s := range wr.Segments {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		t.Segments = append(t.Segments, timeline.Segment{Start: s.Start, End: s.End, Text: text})
	}
	if err := t.Validate(); err != nil {
		return timeline.Timeline{}, types.Permanent("transcribe", fmt.Errorf("provider returned invalid timeline: %w", err))
	}
	return t, nil
}

// classifyHTTP maps a non-200 provider response onto the retry taxonomy:
// 429 and 5xx are transient, everything else is permanent.
func classifyHTTP(op string, resp *http.Response, permanentCause error) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	detail := fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return types.Transient(op, fmt.Errorf("%w: %v", types.ErrProviderUnavailable, detail))
	}
	return types.Permanent(op, fmt.Errorf("%w: %v", permanentCause, detail))
}
