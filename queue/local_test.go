package queue

import (
	"context"
	"testing"
	"time"

	"github.com/franclarke/multidub-ai/types"
)

func TestLocalAckRemovesTask(t *testing.T) {
	q := NewLocal(time.Minute)
	defer q.Close()
	ctx := context.Background()

	if err := q.Enqueue(ctx, types.DubbingTask{OutputID: "o1", Language: "es"}); err != nil {
		t.Fatalf("Enqueue error: %v", err)
	}

	d, err := q.Claim(ctx)
	if err != nil {
		t.Fatalf("Claim error: %v", err)
	}
	if d.Task.OutputID != "o1" {
		t.Fatalf("claimed task %+v; want o1", d.Task)
	}
	if err := q.Ack(ctx, d); err != nil {
		t.Fatalf("Ack error: %v", err)
	}
	if q.Size() != 0 {
		t.Fatalf("Size() = %d after ack; want 0", q.Size())
	}
}

func TestLocalClaimHidesTaskUntilNack(t *testing.T) {
	q := NewLocal(time.Hour)
	defer q.Close()
	ctx := context.Background()

	if err := q.Enqueue(ctx, types.DubbingTask{OutputID: "o1"}); err != nil {
		t.Fatalf("Enqueue error: %v", err)
	}
	d, err := q.Claim(ctx)
	if err != nil {
		t.Fatalf("Claim error: %v", err)
	}

	// The task is in flight, so another claim must block.
	shortCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	if _, err := q.Claim(shortCtx); err == nil {
		t.Fatal("second Claim should time out while the task is invisible")
	}

	if err := q.Nack(ctx, d); err != nil {
		t.Fatalf("Nack error: %v", err)
	}
	d2, err := q.Claim(ctx)
	if err != nil {
		t.Fatalf("Claim after nack error: %v", err)
	}
	if d2.Task.OutputID != "o1" {
		t.Fatalf("redelivered task %+v; want o1", d2.Task)
	}
}

func TestLocalVisibilityTimeoutRedelivers(t *testing.T) {
	q := NewLocal(50 * time.Millisecond)
	defer q.Close()
	ctx := context.Background()

	if err := q.Enqueue(ctx, types.DubbingTask{OutputID: "o1"}); err != nil {
		t.Fatalf("Enqueue error: %v", err)
	}
	if _, err := q.Claim(ctx); err != nil {
		t.Fatalf("Claim error: %v", err)
	}

	// Never acknowledged: after the visibility timeout the task comes back.
	claimCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	d, err := q.Claim(claimCtx)
	if err != nil {
		t.Fatalf("redelivery Claim error: %v", err)
	}
	if d.Task.OutputID != "o1" {
		t.Fatalf("redelivered task %+v; want o1", d.Task)
	}
}

func TestLocalClaimRespectsContext(t *testing.T) {
	q := NewLocal(time.Minute)
	defer q.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := q.Claim(ctx); err != context.DeadlineExceeded {
		t.Fatalf("Claim on empty queue = %v; want deadline exceeded", err)
	}
}

func TestLocalFIFOAcrossTasks(t *testing.T) {
	q := NewLocal(time.Minute)
	defer q.Close()
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if err := q.Enqueue(ctx, types.DubbingTask{OutputID: id}); err != nil {
			t.Fatalf("Enqueue error: %v", err)
		}
	}
	for _, want := range []string{"a", "b", "c"} {
		d, err := q.Claim(ctx)
		if err != nil {
			t.Fatalf("Claim error: %v", err)
		}
		if d.Task.OutputID != want {
			t.Fatalf("claimed %s; want %s", d.Task.OutputID, want)
		}
	}
}
