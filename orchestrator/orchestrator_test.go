package orchestrator

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/franclarke/multidub-ai/storage"
	"github.com/franclarke/multidub-ai/store"
	"github.com/franclarke/multidub-ai/types"
)

type fakeDispatcher struct {
	tasks []types.DubbingTask
	err   error
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, tasks []types.DubbingTask) error {
	if f.err != nil {
		return f.err
	}
	f.tasks = append(f.tasks, tasks...)
	return nil
}

func newTestOrchestrator() (*Orchestrator, *store.Memory, *fakeDispatcher) {
	repo := store.NewMemory()
	disp := &fakeDispatcher{}
	orc := &Orchestrator{
		Repo:       repo,
		Objects:    storage.NewMemory(),
		Dispatcher: disp,
		Log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		URLTTL:     15 * time.Minute,
	}
	return orc, repo, disp
}

func registerVideo(t *testing.T, orc *Orchestrator) string {
	t.Helper()
	in, err := orc.RegisterExternal(context.Background(), "owner-1", "My Talk", "https://example.com/v.mp4")
	if err != nil {
		t.Fatalf("RegisterExternal error: %v", err)
	}
	return in.ID
}

func TestStartDubbingFansOutPerLanguage(t *testing.T) {
	orc, repo, disp := newTestOrchestrator()
	videoID := registerVideo(t, orc)

	outputs, err := orc.StartDubbing(context.Background(), types.ProcessRequest{
		VideoID:   videoID,
		Languages: []string{"es", "fr"},
	})
	if err != nil {
		t.Fatalf("StartDubbing error: %v", err)
	}
	if len(outputs) != 2 || len(disp.tasks) != 2 {
		t.Fatalf("got %d outputs, %d tasks; want 2 and 2", len(outputs), len(disp.tasks))
	}

	in, err := repo.GetInput(context.Background(), videoID)
	if err != nil {
		t.Fatalf("GetInput error: %v", err)
	}
	if in.Status != types.InputProcessing {
		t.Fatalf("input status = %s; want processing", in.Status)
	}

	persisted, err := repo.ListOutputs(context.Background(), videoID)
	if err != nil {
		t.Fatalf("ListOutputs error: %v", err)
	}
	if len(persisted) != 2 {
		t.Fatalf("persisted %d outputs; want 2", len(persisted))
	}
	for _, out := range persisted {
		if out.Stage != types.StagePending {
			t.Fatalf("output %s stage = %s; want pending", out.ID, out.Stage)
		}
	}
}

func TestStartDubbingRejectsUnsupportedLanguageAtomically(t *testing.T) {
	orc, repo, disp := newTestOrchestrator()
	videoID := registerVideo(t, orc)

	_, err := orc.StartDubbing(context.Background(), types.ProcessRequest{
		VideoID:   videoID,
		Languages: []string{"es", "xx"},
	})
	if err == nil {
		t.Fatal("expected validation error for language xx")
	}
	if !types.IsValidation(err) {
		t.Fatalf("error %v is not a validation error", err)
	}

	// One bad language must leave zero outputs and zero tasks behind.
	outs, _ := repo.ListOutputs(context.Background(), videoID)
	if len(outs) != 0 {
		t.Fatalf("found %d outputs after rejected request; want 0", len(outs))
	}
	if len(disp.tasks) != 0 {
		t.Fatalf("found %d enqueued tasks after rejected request; want 0", len(disp.tasks))
	}
}

func TestStartDubbingUnknownVideo(t *testing.T) {
	orc, _, _ := newTestOrchestrator()
	_, err := orc.StartDubbing(context.Background(), types.ProcessRequest{
		VideoID:   "missing",
		Languages: []string{"es"},
	})
	if !types.IsValidation(err) {
		t.Fatalf("error = %v; want validation error", err)
	}
}

func TestNormalizeLanguagesDedupFirstWins(t *testing.T) {
	got, err := NormalizeLanguages([]string{"ES", "es", " Fr ", "es"})
	if err != nil {
		t.Fatalf("NormalizeLanguages error: %v", err)
	}
	if len(got) != 2 || got[0] != "es" || got[1] != "fr" {
		t.Fatalf("got %v; want [es fr]", got)
	}
}

func TestNormalizeLanguagesEmpty(t *testing.T) {
	if _, err := NormalizeLanguages(nil); !types.IsValidation(err) {
		t.Fatalf("error = %v; want validation error", err)
	}
}

func TestRegisterUploadValidation(t *testing.T) {
	orc, _, _ := newTestOrchestrator()
	ctx := context.Background()

	if _, err := orc.RegisterUpload(ctx, "", "t", "video/mp4", 100); !types.IsValidation(err) {
		t.Fatalf("missing owner: error = %v; want validation", err)
	}
	if _, err := orc.RegisterUpload(ctx, "o", "t", "text/plain", 100); !types.IsValidation(err) {
		t.Fatalf("bad content type: error = %v; want validation", err)
	}
	if _, err := orc.RegisterUpload(ctx, "o", "t", "video/mp4", 600*1024*1024); !types.IsValidation(err) {
		t.Fatalf("oversize: error = %v; want validation", err)
	}

	grant, err := orc.RegisterUpload(ctx, "o", "t", "video/quicktime", 1024)
	if err != nil {
		t.Fatalf("RegisterUpload error: %v", err)
	}
	if grant.ID == "" || grant.UploadURL == "" {
		t.Fatalf("incomplete grant %+v", grant)
	}
}

func TestRegisterUploadMintsFreshIDs(t *testing.T) {
	orc, _, _ := newTestOrchestrator()
	ctx := context.Background()

	a, err := orc.RegisterUpload(ctx, "o", "t", "video/mp4", 1)
	if err != nil {
		t.Fatalf("RegisterUpload error: %v", err)
	}
	b, err := orc.RegisterUpload(ctx, "o", "t", "video/mp4", 1)
	if err != nil {
		t.Fatalf("RegisterUpload error: %v", err)
	}
	if a.ID == b.ID {
		t.Fatal("two uploads received the same video id")
	}
}

func TestCancelTerminalOutputRejected(t *testing.T) {
	orc, repo, _ := newTestOrchestrator()
	videoID := registerVideo(t, orc)

	outputs, err := orc.StartDubbing(context.Background(), types.ProcessRequest{
		VideoID:   videoID,
		Languages: []string{"es"},
	})
	if err != nil {
		t.Fatalf("StartDubbing error: %v", err)
	}

	out := outputs[0].Clone()
	out.Stage = types.StagePublished
	if err := repo.SaveOutput(context.Background(), out); err != nil {
		t.Fatalf("SaveOutput error: %v", err)
	}

	if err := orc.Cancel(context.Background(), out.ID); !types.IsValidation(err) {
		t.Fatalf("cancel of published output = %v; want validation error", err)
	}
}

func TestGetStatusAttachesDownloadURL(t *testing.T) {
	orc, repo, _ := newTestOrchestrator()
	videoID := registerVideo(t, orc)

	outputs, err := orc.StartDubbing(context.Background(), types.ProcessRequest{
		VideoID:   videoID,
		Languages: []string{"es"},
	})
	if err != nil {
		t.Fatalf("StartDubbing error: %v", err)
	}

	key := storage.OutputKey(videoID, outputs[0].ID)
	mem := orc.Objects.(*storage.Memory)
	if err := mem.Put(context.Background(), key, strings.NewReader("video"), "video/mp4"); err != nil {
		t.Fatalf("Put error: %v", err)
	}

	out := outputs[0].Clone()
	out.Stage = types.StagePublished
	out.ArtifactRefs[types.StagePublished] = key
	if err := repo.SaveOutput(context.Background(), out); err != nil {
		t.Fatalf("SaveOutput error: %v", err)
	}

	status, err := orc.GetStatus(context.Background(), videoID)
	if err != nil {
		t.Fatalf("GetStatus error: %v", err)
	}
	if len(status.Outputs) != 1 {
		t.Fatalf("got %d outputs; want 1", len(status.Outputs))
	}
	if status.Outputs[0].DownloadURL == "" {
		t.Fatal("published output missing download URL")
	}
}
