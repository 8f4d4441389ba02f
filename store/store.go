package store

import (
	"context"
	"errors"

	"github.com/franclarke/multidub-ai/types"
)

// ErrNotFound is returned when a video or output does not exist.
var ErrNotFound = errors.New("not found")

// Repository persists video inputs and per-language outputs. Implementations
// must return deep copies so callers can mutate results freely.
type Repository interface {
	CreateInput(ctx context.Context, in *types.VideoInput) error
	GetInput(ctx context.Context, videoID string) (*types.VideoInput, error)
	UpdateInputStatus(ctx context.Context, videoID string, status types.InputStatus) error

	CreateOutput(ctx context.Context, out *types.VideoOutput) error
	GetOutput(ctx context.Context, outputID string) (*types.VideoOutput, error)
	SaveOutput(ctx context.Context, out *types.VideoOutput) error
	ListOutputs(ctx context.Context, videoID string) ([]*types.VideoOutput, error)

	// RequestCancel flags an output so workers stop it at the next stage
	// boundary. CancelRequested reports whether the flag is set.
	RequestCancel(ctx context.Context, outputID string) error
	CancelRequested(ctx context.Context, outputID string) (bool, error)
}
