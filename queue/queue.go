// Package queue provides at-least-once delivery of per-language dubbing
// tasks. The Runner's artifact-based resumption makes redelivered tasks safe
// to re-process, so both implementations only have to guarantee that an
// unacknowledged task eventually becomes claimable again.
package queue

import (
	"context"

	"github.com/franclarke/multidub-ai/types"
)

// Delivery is one claimed task. It stays invisible to other consumers until
// acknowledged, negatively acknowledged, or its visibility deadline passes.
type Delivery struct {
	ID      string
	Task    types.DubbingTask
	receipt any
}

// Queue is the broker-agnostic task queue surface.
type Queue interface {
	// Enqueue publishes one per-language task.
	Enqueue(ctx context.Context, task types.DubbingTask) error
	// Claim blocks until a task is available or ctx is done.
	Claim(ctx context.Context) (*Delivery, error)
	// Ack deletes a completed (or permanently failed) task.
	Ack(ctx context.Context, d *Delivery) error
	// Nack returns a task for redelivery.
	Nack(ctx context.Context, d *Delivery) error
	Close() error
}
