package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Update implements tea.Model interface
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case TickMsg:
		return m, tea.Batch(pollStatus(m.Client, m.VideoID), tickCmd())
	case StatusUpdateMsg:
		return m.handleStatusUpdate(msg)
	case CancelSentMsg:
		return m.handleCancelSent(msg)
	}
	return m, nil
}

// handleKeyPress processes keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Status != nil && m.Cursor < len(m.Status.Outputs)-1 {
			m.Cursor++
		}
	case "c", "C":
		if out := m.selectedOutput(); out != nil && !out.Stage.Terminal() {
			m.Notice = fmt.Sprintf("cancelling %s...", out.Language)
			return m, cancelOutput(m.Client, out.ID)
		}
	}
	return m, nil
}

// handleStatusUpdate processes a status poll result
func (m Model) handleStatusUpdate(msg StatusUpdateMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.Connected = false
		m.Err = msg.Err
		return m, nil
	}
	m.Connected = true
	m.Err = nil
	m.Status = msg.Status
	if m.Cursor >= len(msg.Status.Outputs) {
		m.Cursor = 0
	}
	return m, nil
}

// handleCancelSent processes a cancellation response
func (m Model) handleCancelSent(msg CancelSentMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.Notice = fmt.Sprintf("cancel failed: %v", msg.Err)
		return m, nil
	}
	m.Notice = "cancellation requested"
	return m, pollStatus(m.Client, m.VideoID)
}
