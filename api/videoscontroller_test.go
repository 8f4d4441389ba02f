package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/franclarke/multidub-ai/metrics"
	"github.com/franclarke/multidub-ai/orchestrator"
	"github.com/franclarke/multidub-ai/storage"
	"github.com/franclarke/multidub-ai/store"
	"github.com/franclarke/multidub-ai/types"
)

type nullDispatcher struct{}

func (nullDispatcher) Dispatch(ctx context.Context, tasks []types.DubbingTask) error { return nil }

func newTestRouter() (*gin.Engine, *store.Memory) {
	gin.SetMode(gin.TestMode)
	repo := store.NewMemory()
	orc := &orchestrator.Orchestrator{
		Repo:       repo,
		Objects:    storage.NewMemory(),
		Dispatcher: nullDispatcher{},
		Log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		URLTTL:     time.Minute,
	}
	return NewRouter(orc, metrics.New()), repo
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterExternalAndStatus(t *testing.T) {
	r, _ := newTestRouter()

	w := doJSON(t, r, http.MethodPost, "/api/videos", RegisterExternalRequest{
		OwnerID:   "owner-1",
		Title:     "Talk",
		SourceURL: "https://example.com/talk.mp4",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body %s", w.Code, w.Body.String())
	}
	var in types.VideoInput
	if err := json.Unmarshal(w.Body.Bytes(), &in); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if in.ID == "" {
		t.Fatal("response missing video id")
	}

	w = doJSON(t, r, http.MethodGet, "/api/videos/"+in.ID+"/status", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status endpoint = %d, body %s", w.Code, w.Body.String())
	}
	var status types.VideoStatus
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status.ID != in.ID || status.Status != types.InputPending {
		t.Fatalf("status = %+v", status)
	}
}

func TestProcessValidationErrors(t *testing.T) {
	r, _ := newTestRouter()

	w := doJSON(t, r, http.MethodPost, "/api/videos", RegisterExternalRequest{
		OwnerID:   "owner-1",
		SourceURL: "https://example.com/talk.mp4",
	})
	var in types.VideoInput
	_ = json.Unmarshal(w.Body.Bytes(), &in)

	// Unsupported language must map to 400.
	w = doJSON(t, r, http.MethodPost, "/api/videos/process", types.ProcessRequest{
		VideoID:   in.ID,
		Languages: []string{"xx"},
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad language status = %d, body %s", w.Code, w.Body.String())
	}

	// Unknown video also maps to 400 (validation of the request).
	w = doJSON(t, r, http.MethodPost, "/api/videos/process", types.ProcessRequest{
		VideoID:   "ghost",
		Languages: []string{"es"},
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("ghost video status = %d, body %s", w.Code, w.Body.String())
	}
}

func TestProcessAccepted(t *testing.T) {
	r, repo := newTestRouter()

	w := doJSON(t, r, http.MethodPost, "/api/videos", RegisterExternalRequest{
		OwnerID:   "owner-1",
		SourceURL: "https://example.com/talk.mp4",
	})
	var in types.VideoInput
	_ = json.Unmarshal(w.Body.Bytes(), &in)

	w = doJSON(t, r, http.MethodPost, "/api/videos/process", types.ProcessRequest{
		VideoID:   in.ID,
		Languages: []string{"es", "fr"},
	})
	if w.Code != http.StatusAccepted {
		t.Fatalf("process status = %d, body %s", w.Code, w.Body.String())
	}

	outs, err := repo.ListOutputs(context.Background(), in.ID)
	if err != nil {
		t.Fatalf("ListOutputs error: %v", err)
	}
	if len(outs) != 2 {
		t.Fatalf("created %d outputs; want 2", len(outs))
	}
}

func TestStatusNotFound(t *testing.T) {
	r, _ := newTestRouter()
	w := doJSON(t, r, http.MethodGet, "/api/videos/ghost/status", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d; want 404", w.Code)
	}
}

func TestCancelNotFound(t *testing.T) {
	r, _ := newTestRouter()
	w := doJSON(t, r, http.MethodPost, "/api/outputs/ghost/cancel", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d; want 404", w.Code)
	}
}

func TestRegisterUploadEndpoint(t *testing.T) {
	r, _ := newTestRouter()

	w := doJSON(t, r, http.MethodPost, "/api/videos/upload", RegisterUploadRequest{
		OwnerID:     "owner-1",
		ContentType: "video/mp4",
		Size:        1024,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("upload status = %d, body %s", w.Code, w.Body.String())
	}
	var grant types.UploadGrant
	if err := json.Unmarshal(w.Body.Bytes(), &grant); err != nil {
		t.Fatalf("decode grant: %v", err)
	}
	if grant.ID == "" || grant.UploadURL == "" {
		t.Fatalf("incomplete grant: %+v", grant)
	}

	w = doJSON(t, r, http.MethodPost, "/api/videos/upload", RegisterUploadRequest{
		OwnerID:     "owner-1",
		ContentType: "text/plain",
		Size:        1024,
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad content type status = %d", w.Code)
	}
}

func TestHealthz(t *testing.T) {
	r, _ := newTestRouter()
	w := doJSON(t, r, http.MethodGet, "/healthz", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("healthz = %d", w.Code)
	}
}
