package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/franclarke/multidub-ai/types"
)

// Local is an in-process Queue for environments without a managed broker.
// Claimed tasks are hidden for the visibility timeout; a worker that never
// acknowledges loses the claim and the task becomes claimable again.
type Local struct {
	visibility time.Duration

	mu     sync.Mutex
	items  []*localItem
	notify chan struct{}
	closed bool
}

type localItem struct {
	id        string
	task      types.DubbingTask
	visibleAt time.Time
}

// NewLocal returns an empty local queue with the given visibility timeout.
func NewLocal(visibility time.Duration) *Local {
	return &Local{
		visibility: visibility,
		notify:     make(chan struct{}, 1),
	}
}

func (q *Local) Enqueue(ctx context.Context, task types.DubbingTask) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return fmt.Errorf("queue closed")
	}
	q.items = append(q.items, &localItem{
		id:        uuid.NewString(),
		task:      task,
		visibleAt: time.Now(),
	})
	q.wake()
	return nil
}

func (q *Local) Claim(ctx context.Context) (*Delivery, error) {
	for {
		q.mu.Lock()
		if q.closed {
			q.mu.Unlock()
			return nil, fmt.Errorf("queue closed")
		}
		now := time.Now()
		var next time.Time
		for _, it := range q.items {
			if !it.visibleAt.After(now) {
				it.visibleAt = now.Add(q.visibility)
				d := &Delivery{ID: it.id, Task: it.task, receipt: it.id}
				q.mu.Unlock()
				return d, nil
			}
			if next.IsZero() || it.visibleAt.Before(next) {
				next = it.visibleAt
			}
		}
		q.mu.Unlock()

		// Nothing claimable: wait for an enqueue/nack, the earliest
		// visibility deadline, or cancellation.
		wait := 100 * time.Millisecond
		if !next.IsZero() {
			if d := time.Until(next); d < wait {
				wait = d
			}
		}
		if wait < time.Millisecond {
			wait = time.Millisecond
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-q.notify:
			timer.Stop()
		case <-timer.C:
		}
	}
}

func (q *Local) Ack(ctx context.Context, d *Delivery) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, it := range q.items {
		if it.id == d.ID {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return nil
		}
	}
	return nil
}

func (q *Local) Nack(ctx context.Context, d *Delivery) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, it := range q.items {
		if it.id == d.ID {
			it.visibleAt = time.Now()
			q.wake()
			return nil
		}
	}
	return nil
}

func (q *Local) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.wake()
	return nil
}

// Size reports how many tasks are queued or in flight, for test assertions.
func (q *Local) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// wake must be called with the lock held.
func (q *Local) wake() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}
