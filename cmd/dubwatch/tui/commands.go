package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// pollStatus creates a command to poll the video's status.
func pollStatus(client *Client, videoID string) tea.Cmd {
	return func() tea.Msg {
		status, err := client.GetStatus(videoID)
		return StatusUpdateMsg{
			Status: status,
			Err:    err,
		}
	}
}

// cancelOutput creates a command that requests cancellation of one output.
func cancelOutput(client *Client, outputID string) tea.Cmd {
	return func() tea.Msg {
		err := client.Cancel(outputID)
		return CancelSentMsg{OutputID: outputID, Err: err}
	}
}

// tickCmd creates a command that ticks every second for polling.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}
