package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/franclarke/multidub-ai/types"
)

// Model is the watcher state: the last status snapshot plus a cursor over the
// outputs so a selected one can be cancelled.
type Model struct {
	Client  *Client
	VideoID string

	Status    *types.VideoStatus
	Err       error
	Connected bool

	Cursor int
	Notice string
}

// NewModel creates a watcher for one video.
func NewModel(serviceURL, videoID string) Model {
	return Model{
		Client:  NewClient(serviceURL),
		VideoID: videoID,
	}
}

// Init implements tea.Model interface
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		pollStatus(m.Client, m.VideoID),
		tickCmd(),
	)
}

// selectedOutput returns the output under the cursor, if any.
func (m Model) selectedOutput() *types.OutputStatus {
	if m.Status == nil || m.Cursor < 0 || m.Cursor >= len(m.Status.Outputs) {
		return nil
	}
	return &m.Status.Outputs[m.Cursor]
}
