package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/franclarke/multidub-ai/types"
)

func fixedDuration(d float64) DurationFunc {
	return func(ctx context.Context, path string) (float64, error) {
		return d, nil
	}
}

func TestElevenLabsSynthesizeSavesClip(t *testing.T) {
	var gotPayload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/text-to-speech/voice-123" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("xi-api-key"); got != "test-key" {
			t.Errorf("xi-api-key = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("mp3 bytes"))
	}))
	defer srv.Close()

	e := NewElevenLabs("test-key", fixedDuration(1.75))
	e.BaseURL = srv.URL

	outPath := filepath.Join(t.TempDir(), "clip.mp3")
	voice := types.VoiceConfig{
		Engine: types.EngineElevenLabs,
		ElevenLabs: &types.ElevenLabsVoice{
			VoiceID:         "voice-123",
			Stability:       0.4,
			SimilarityBoost: 0.8,
		},
	}
	dur, err := e.Synthesize(context.Background(), "hola mundo", voice, outPath)
	if err != nil {
		t.Fatalf("Synthesize error: %v", err)
	}
	if dur != 1.75 {
		t.Fatalf("duration = %v; want measured 1.75", dur)
	}

	b, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read clip: %v", err)
	}
	if string(b) != "mp3 bytes" {
		t.Fatalf("clip content = %q", b)
	}

	if gotPayload["text"] != "hola mundo" {
		t.Fatalf("payload text = %v", gotPayload["text"])
	}
	if gotPayload["model_id"] == "" {
		t.Fatal("payload missing model_id")
	}
	settings, ok := gotPayload["voice_settings"].(map[string]any)
	if !ok {
		t.Fatalf("payload voice_settings = %v", gotPayload["voice_settings"])
	}
	if settings["stability"] != 0.4 || settings["similarity_boost"] != 0.8 {
		t.Fatalf("voice settings = %v", settings)
	}
}

func TestElevenLabsDefaultsVoiceWhenUnset(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte("mp3"))
	}))
	defer srv.Close()

	e := NewElevenLabs("k", fixedDuration(1))
	e.BaseURL = srv.URL

	outPath := filepath.Join(t.TempDir(), "clip.mp3")
	if _, err := e.Synthesize(context.Background(), "hi", types.VoiceConfig{}, outPath); err != nil {
		t.Fatalf("Synthesize error: %v", err)
	}
	want := "/v1/text-to-speech/" + DefaultElevenLabsVoice().VoiceID
	if gotPath != want {
		t.Fatalf("path = %q; want default voice %q", gotPath, want)
	}
}

func TestElevenLabsLeavesVoiceConfigUntouched(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("mp3"))
	}))
	defer srv.Close()

	e := NewElevenLabs("k", fixedDuration(1))
	e.BaseURL = srv.URL

	// The same voice config is shared across segments of a task, so filling
	// in the model default must not write through the pointer.
	shared := &types.ElevenLabsVoice{VoiceID: "voice-123", Stability: 0.4, SimilarityBoost: 0.8}
	voice := types.VoiceConfig{Engine: types.EngineElevenLabs, ElevenLabs: shared}

	outPath := filepath.Join(t.TempDir(), "clip.mp3")
	if _, err := e.Synthesize(context.Background(), "hi", voice, outPath); err != nil {
		t.Fatalf("Synthesize error: %v", err)
	}
	if shared.ModelID != "" {
		t.Fatalf("caller's voice config was mutated: ModelID = %q", shared.ModelID)
	}
}

func TestElevenLabsErrorClassification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	e := NewElevenLabs("k", fixedDuration(1))
	e.BaseURL = srv.URL

	_, err := e.Synthesize(context.Background(), "hi", types.VoiceConfig{}, filepath.Join(t.TempDir(), "c.mp3"))
	if err == nil {
		t.Fatal("expected error")
	}
	if !types.IsTransient(err) {
		t.Fatalf("429 should be transient: %v", err)
	}
}

func TestSpeechRouterDispatch(t *testing.T) {
	router := &SpeechRouter{ElevenLabs: synthFunc(func() float64 { return 1 })}

	if _, err := router.Synthesize(context.Background(), "x", types.VoiceConfig{Engine: types.EngineGoogle}, "out.mp3"); err == nil {
		t.Fatal("google engine unset: expected error")
	} else if types.IsTransient(err) {
		t.Fatalf("unconfigured engine should be permanent: %v", err)
	}

	if _, err := router.Synthesize(context.Background(), "x", types.VoiceConfig{Engine: "nope"}, "out.mp3"); err == nil {
		t.Fatal("unknown engine: expected error")
	}

	if _, err := router.Synthesize(context.Background(), "x", types.VoiceConfig{}, "out.mp3"); err != nil {
		t.Fatalf("default engine should route to elevenlabs: %v", err)
	}
}

type synthFunc func() float64

func (f synthFunc) Synthesize(ctx context.Context, text string, voice types.VoiceConfig, outPath string) (float64, error) {
	return f(), nil
}
