// Package pipeline runs one language's dubbing task through the fixed stage
// sequence, resuming from durable artifacts after redelivery and isolating
// failures to the output they belong to.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/franclarke/multidub-ai/media"
	"github.com/franclarke/multidub-ai/metrics"
	"github.com/franclarke/multidub-ai/providers"
	"github.com/franclarke/multidub-ai/storage"
	"github.com/franclarke/multidub-ai/store"
	"github.com/franclarke/multidub-ai/types"
)

// mediaToolAttempts caps retries for external tool failures. One retry covers
// flaky process spawns; a deterministic ffmpeg failure repeats identically.
const mediaToolAttempts = 2

// Deps bundles everything a Runner needs. All fields are required except
// WorkDir, which defaults to the OS temp directory.
type Deps struct {
	Repo        store.Repository
	Objects     storage.ObjectStore
	Media       media.Tooling
	Transcriber providers.Transcriber
	Translator  providers.Translator
	Speech      providers.Synthesizer
	Log         *slog.Logger
	Metrics     *metrics.Metrics
	WorkDir     string
	MaxAttempts int
	RetryDelay  time.Duration
}

// Runner executes dubbing tasks. It is safe for concurrent use; each Run call
// works in its own scratch directory.
type Runner struct {
	deps Deps
}

func NewRunner(deps Deps) *Runner {
	if deps.MaxAttempts <= 0 {
		deps.MaxAttempts = 3
	}
	if deps.RetryDelay <= 0 {
		deps.RetryDelay = time.Second
	}
	return &Runner{deps: deps}
}

// Run processes one task to a terminal stage or returns an error that means
// the delivery should be redelivered. Permanent failures are absorbed: the
// output is marked failed and nil is returned so the queue drops the message.
func (r *Runner) Run(ctx context.Context, task types.DubbingTask) error {
	r.deps.Metrics.IncTasksProcessed()
	log := r.deps.Log.With("video_id", task.VideoID, "output_id", task.OutputID, "language", task.Language)

	out, err := r.deps.Repo.GetOutput(ctx, task.OutputID)
	if errors.Is(err, store.ErrNotFound) {
		log.Warn("dropping task for unknown output")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load output: %w", err)
	}
	if out.Stage.Terminal() {
		// A crash between the terminal SaveOutput and the ack leaves the
		// aggregate unsettled and the work prefix unpurged; the redelivery
		// has to finish that bookkeeping before it is dropped.
		log.Info("output already terminal, dropping redelivery", "stage", out.Stage)
		if err := r.deps.Objects.DeletePrefix(ctx, storage.WorkPrefix(task.VideoID, task.OutputID)); err != nil {
			log.Warn("work prefix cleanup failed", "error", err)
		}
		return r.aggregateInput(ctx, task.VideoID)
	}

	input, err := r.deps.Repo.GetInput(ctx, task.VideoID)
	if errors.Is(err, store.ErrNotFound) {
		return r.failOutput(ctx, log, task, out, types.StageFetched, fmt.Errorf("video input %s not found", task.VideoID))
	}
	if err != nil {
		return fmt.Errorf("load input: %w", err)
	}

	dir, err := os.MkdirTemp(r.deps.WorkDir, "dub-"+task.OutputID+"-")
	if err != nil {
		return fmt.Errorf("scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	rc := &runContext{task: task, input: input, out: out, dir: dir}

	resume, err := r.resumePoint(ctx, rc)
	if err != nil {
		return err
	}
	if resume > 0 {
		log.Info("resuming from durable artifacts", "next_stage", types.StageOrder[resume])
	}

	for i := resume; i < len(types.StageOrder); i++ {
		stage := types.StageOrder[i]

		cancelled, err := r.deps.Repo.CancelRequested(ctx, task.OutputID)
		if err != nil {
			return fmt.Errorf("check cancel: %w", err)
		}
		if cancelled {
			return r.cancelOutput(ctx, log, task, out)
		}

		ref, err := r.runStageWithRetry(ctx, rc, stage, log)
		if err != nil {
			if retryable(err) || isInfra(err) {
				return err
			}
			return r.failOutput(ctx, log, task, out, stage, err)
		}

		out.ArtifactRefs[stage] = ref
		out.Stage = stage
		out.UpdatedAt = time.Now().UTC()
		if err := r.deps.Repo.SaveOutput(ctx, out); err != nil {
			return fmt.Errorf("save output after %s: %w", stage, err)
		}
		log.Info("stage complete", "stage", stage, "artifact", ref)
	}

	if err := r.deps.Objects.DeletePrefix(ctx, storage.WorkPrefix(task.VideoID, task.OutputID)); err != nil {
		log.Warn("work prefix cleanup failed", "error", err)
	}
	return r.aggregateInput(ctx, task.VideoID)
}

// resumePoint returns the index of the first stage whose artifact is not
// durably present. A recorded reference whose object has vanished counts as
// absent, so that stage simply runs again.
func (r *Runner) resumePoint(ctx context.Context, rc *runContext) (int, error) {
	for i, stage := range types.StageOrder {
		ref, ok := rc.out.ArtifactRefs[stage]
		if !ok || ref == "" {
			return i, nil
		}
		exists, err := r.deps.Objects.Exists(ctx, ref)
		if err != nil {
			return 0, fmt.Errorf("check artifact %s: %w", ref, err)
		}
		if !exists {
			r.deps.Log.Warn("recorded artifact missing, re-running stage",
				"output_id", rc.out.ID, "stage", stage, "artifact", ref)
			return i, nil
		}
	}
	return len(types.StageOrder), nil
}

// runStageWithRetry retries transient provider failures up to MaxAttempts and
// media tool failures once. Permanent and infrastructure errors return
// immediately.
func (r *Runner) runStageWithRetry(ctx context.Context, rc *runContext, stage types.Stage, log *slog.Logger) (string, error) {
	var lastErr error
	for attempt := 1; ; attempt++ {
		ref, err := r.runStage(ctx, rc, stage)
		if err == nil {
			return ref, nil
		}
		lastErr = err
		rc.out.AttemptCount++
		r.deps.Metrics.IncStageFailures(string(stage))
		log.Warn("stage attempt failed", "stage", stage, "attempt", attempt, "error", err)

		if isInfra(err) {
			return "", err
		}
		limit := 1
		switch {
		case types.IsTransient(err):
			limit = r.deps.MaxAttempts
		case types.IsMediaTool(err):
			limit = mediaToolAttempts
		}
		if attempt >= limit {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Duration(attempt) * r.deps.RetryDelay):
		}
	}
	return "", lastErr
}

// failOutput marks the output failed, purges its working storage and settles
// the parent video if every sibling is terminal. Returning nil acknowledges
// the delivery; the failure is recorded, not retried.
func (r *Runner) failOutput(ctx context.Context, log *slog.Logger, task types.DubbingTask, out *types.VideoOutput, stage types.Stage, cause error) error {
	log.Error("output failed", "stage", stage, "error", cause)
	out.Stage = types.StageFailed
	out.ErrorDetail = cause.Error()
	out.UpdatedAt = time.Now().UTC()
	if err := r.deps.Repo.SaveOutput(ctx, out); err != nil {
		return fmt.Errorf("save failed output: %w", err)
	}
	if err := r.deps.Objects.DeletePrefix(ctx, storage.WorkPrefix(task.VideoID, task.OutputID)); err != nil {
		log.Warn("work prefix cleanup failed", "error", err)
	}
	return r.aggregateInput(ctx, task.VideoID)
}

func (r *Runner) cancelOutput(ctx context.Context, log *slog.Logger, task types.DubbingTask, out *types.VideoOutput) error {
	log.Info("output cancelled")
	out.Stage = types.StageCancelled
	out.UpdatedAt = time.Now().UTC()
	if err := r.deps.Repo.SaveOutput(ctx, out); err != nil {
		return fmt.Errorf("save cancelled output: %w", err)
	}
	if err := r.deps.Objects.DeletePrefix(ctx, storage.WorkPrefix(task.VideoID, task.OutputID)); err != nil {
		log.Warn("work prefix cleanup failed", "error", err)
	}
	return r.aggregateInput(ctx, task.VideoID)
}

// aggregateInput settles the video's coarse status once all of its outputs are
// terminal: completed when at least one language published, failed otherwise.
func (r *Runner) aggregateInput(ctx context.Context, videoID string) error {
	outs, err := r.deps.Repo.ListOutputs(ctx, videoID)
	if err != nil {
		return fmt.Errorf("list outputs: %w", err)
	}
	published := 0
	for _, o := range outs {
		if !o.Stage.Terminal() {
			return nil
		}
		if o.Stage == types.StagePublished {
			published++
		}
	}
	status := types.InputFailed
	if published > 0 {
		status = types.InputCompleted
	}
	if err := r.deps.Repo.UpdateInputStatus(ctx, videoID, status); err != nil {
		return fmt.Errorf("update input status: %w", err)
	}
	return nil
}

// retryable reports whether the delivery should go back to the queue rather
// than fail the output: only interruption of the run itself qualifies.
func retryable(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// isInfra distinguishes our own platform failing (storage, repository) from
// the work itself failing. Infrastructure errors are unclassified plain
// errors; provider and media tool failures carry their own types.
func isInfra(err error) bool {
	var pe *types.ProviderError
	if errors.As(err, &pe) {
		return false
	}
	if types.IsMediaTool(err) {
		return false
	}
	if retryable(err) {
		return false
	}
	return true
}
