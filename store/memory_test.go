package store

import (
	"context"
	"testing"
	"time"

	"github.com/franclarke/multidub-ai/types"
)

func seedOutput(t *testing.T, m *Memory, id, videoID string) *types.VideoOutput {
	t.Helper()
	out := &types.VideoOutput{
		ID:           id,
		VideoInputID: videoID,
		Language:     "es",
		Stage:        types.StagePending,
		ArtifactRefs: make(map[types.Stage]string),
		CreatedAt:    time.Now().UTC(),
	}
	if err := m.CreateOutput(context.Background(), out); err != nil {
		t.Fatalf("CreateOutput error: %v", err)
	}
	return out
}

func TestMemoryInputLifecycle(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if _, err := m.GetInput(ctx, "missing"); err != ErrNotFound {
		t.Fatalf("GetInput(missing) = %v; want ErrNotFound", err)
	}

	in := &types.VideoInput{ID: "v1", OwnerID: "o", Status: types.InputPending}
	if err := m.CreateInput(ctx, in); err != nil {
		t.Fatalf("CreateInput error: %v", err)
	}
	if err := m.UpdateInputStatus(ctx, "v1", types.InputProcessing); err != nil {
		t.Fatalf("UpdateInputStatus error: %v", err)
	}
	got, err := m.GetInput(ctx, "v1")
	if err != nil {
		t.Fatalf("GetInput error: %v", err)
	}
	if got.Status != types.InputProcessing {
		t.Fatalf("status = %s; want processing", got.Status)
	}
	if err := m.UpdateInputStatus(ctx, "missing", types.InputFailed); err != ErrNotFound {
		t.Fatalf("UpdateInputStatus(missing) = %v; want ErrNotFound", err)
	}
}

func TestMemoryOutputsAreCopies(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	seedOutput(t, m, "o1", "v1")

	got, err := m.GetOutput(ctx, "o1")
	if err != nil {
		t.Fatalf("GetOutput error: %v", err)
	}
	got.Stage = types.StageFailed
	got.ArtifactRefs[types.StageFetched] = "mutated"

	again, _ := m.GetOutput(ctx, "o1")
	if again.Stage != types.StagePending || len(again.ArtifactRefs) != 0 {
		t.Fatalf("stored output was mutated through a returned copy: %+v", again)
	}
}

func TestMemoryListOutputsByVideo(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	seedOutput(t, m, "o1", "v1")
	seedOutput(t, m, "o2", "v1")
	seedOutput(t, m, "o3", "v2")

	outs, err := m.ListOutputs(ctx, "v1")
	if err != nil {
		t.Fatalf("ListOutputs error: %v", err)
	}
	if len(outs) != 2 {
		t.Fatalf("got %d outputs for v1; want 2", len(outs))
	}
	if outs, _ := m.ListOutputs(ctx, "ghost"); len(outs) != 0 {
		t.Fatalf("ListOutputs(ghost) returned %d", len(outs))
	}
}

func TestMemoryCancelFlag(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	seedOutput(t, m, "o1", "v1")

	if err := m.RequestCancel(ctx, "ghost"); err != ErrNotFound {
		t.Fatalf("RequestCancel(ghost) = %v; want ErrNotFound", err)
	}
	if got, _ := m.CancelRequested(ctx, "o1"); got {
		t.Fatal("cancel flag set before request")
	}
	if err := m.RequestCancel(ctx, "o1"); err != nil {
		t.Fatalf("RequestCancel error: %v", err)
	}
	if got, _ := m.CancelRequested(ctx, "o1"); !got {
		t.Fatal("cancel flag not set after request")
	}
}

func TestMemorySaveOutputRequiresExisting(t *testing.T) {
	m := NewMemory()
	out := &types.VideoOutput{ID: "ghost", ArtifactRefs: map[types.Stage]string{}}
	if err := m.SaveOutput(context.Background(), out); err != ErrNotFound {
		t.Fatalf("SaveOutput(ghost) = %v; want ErrNotFound", err)
	}
}
