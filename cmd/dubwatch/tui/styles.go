package tui

import "github.com/charmbracelet/lipgloss"

const (
	colorAccent = "#5F5FD7"
	colorStage  = "#2AA65E"
	colorError  = "#D75F5F"
	colorMuted  = "#8A8A8A"
	colorBright = "#EEEEEE"
	colorFrame  = "#5F87AF"
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Underline(true).
			Foreground(lipgloss.Color(colorAccent)).
			MarginBottom(1)

	StageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorStage))

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorError))

	InfoStyle = lipgloss.NewStyle().
			Faint(true).
			Foreground(lipgloss.Color(colorMuted))

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color(colorFrame)).
			Padding(0, 2)

	HighlightStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorBright)).
			Background(lipgloss.Color(colorAccent)).
			Padding(0, 1)
)
