// Package dispatcher fans dubbing work out to the queue and runs the fixed
// worker pool that drains it.
package dispatcher

import (
	"context"
	"log/slog"
	"sync"

	"github.com/franclarke/multidub-ai/metrics"
	"github.com/franclarke/multidub-ai/queue"
	"github.com/franclarke/multidub-ai/types"
)

// TaskRunner processes one claimed task. A nil return acknowledges the
// delivery; an error puts it back on the queue.
type TaskRunner interface {
	Run(ctx context.Context, task types.DubbingTask) error
}

// Dispatcher owns the queue on both sides: the API enqueues through it and
// the worker pool claims from it.
type Dispatcher struct {
	Queue   queue.Queue
	Runner  TaskRunner
	Log     *slog.Logger
	Metrics *metrics.Metrics
	Workers int
}

// Dispatch enqueues one task per requested language output.
func (d *Dispatcher) Dispatch(ctx context.Context, tasks []types.DubbingTask) error {
	for _, t := range tasks {
		if err := d.Queue.Enqueue(ctx, t); err != nil {
			return err
		}
		d.Log.Info("task enqueued", "video_id", t.VideoID, "output_id", t.OutputID, "language", t.Language)
	}
	return nil
}

// Run blocks driving the worker pool until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	n := d.Workers
	if n <= 0 {
		n = 1
	}
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			d.work(ctx, worker)
		}(i)
	}
	wg.Wait()
}

func (d *Dispatcher) work(ctx context.Context, worker int) {
	log := d.Log.With("worker", worker)
	for {
		delivery, err := d.Queue.Claim(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error("claim failed", "error", err)
			continue
		}

		d.Metrics.WorkerStarted()
		runErr := d.Runner.Run(ctx, delivery.Task)
		d.Metrics.WorkerDone()

		if runErr != nil {
			log.Warn("task requeued", "output_id", delivery.Task.OutputID, "error", runErr)
			if err := d.Queue.Nack(ctx, delivery); err != nil && ctx.Err() == nil {
				log.Error("nack failed", "delivery", delivery.ID, "error", err)
			}
			continue
		}
		if err := d.Queue.Ack(ctx, delivery); err != nil && ctx.Err() == nil {
			log.Error("ack failed", "delivery", delivery.ID, "error", err)
		}
	}
}
