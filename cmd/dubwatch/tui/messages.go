package tui

import (
	"time"

	"github.com/franclarke/multidub-ai/types"
)

// Messages for the tea program (polling-based)

// StatusUpdateMsg is sent when we receive status from the service.
type StatusUpdateMsg struct {
	Status *types.VideoStatus
	Err    error
}

// TickMsg is sent periodically to trigger polling.
type TickMsg struct {
	Time time.Time
}

// CancelSentMsg is sent after a cancellation request completes.
type CancelSentMsg struct {
	OutputID string
	Err      error
}
