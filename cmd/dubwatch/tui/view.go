package tui

import (
	"fmt"
	"strings"

	"github.com/franclarke/multidub-ai/types"
)

// View implements tea.Model interface
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("🎬 Dubbing Pipeline Watcher"))
	b.WriteString("\n\n")

	if !m.Connected {
		b.WriteString(ErrorStyle.Render("❌ Not connected to dubbing service"))
		if m.Err != nil {
			b.WriteString("\n" + InfoStyle.Render(m.Err.Error()))
		}
		b.WriteString("\n\n")
		b.WriteString(InfoStyle.Render("Press 'q' or Ctrl+C to quit"))
		return b.String()
	}

	if m.Status != nil {
		header := fmt.Sprintf("Video: %s", m.Status.ID)
		if m.Status.Title != "" {
			header = fmt.Sprintf("Video: %s (%s)", m.Status.Title, m.Status.ID)
		}
		b.WriteString(HighlightStyle.Render(header))
		b.WriteString("\n")
		b.WriteString(InfoStyle.Render(fmt.Sprintf("Status: %s", m.Status.Status)))
		b.WriteString("\n\n")

		var rows strings.Builder
		for i, out := range m.Status.Outputs {
			cursor := "  "
			if i == m.Cursor {
				cursor = "> "
			}
			rows.WriteString(cursor + renderOutput(out) + "\n")
		}
		if len(m.Status.Outputs) == 0 {
			rows.WriteString(InfoStyle.Render("no outputs yet"))
			rows.WriteString("\n")
		}
		b.WriteString(BoxStyle.Render(strings.TrimRight(rows.String(), "\n")))
		b.WriteString("\n\n")
	}

	if m.Notice != "" {
		b.WriteString(StageStyle.Render(m.Notice))
		b.WriteString("\n\n")
	}

	b.WriteString(InfoStyle.Render("↑/↓ select | 'c' cancel selected | 'q' quit"))
	return b.String()
}

func renderOutput(out types.OutputStatus) string {
	stage := StageStyle.Render(string(out.Stage))
	switch out.Stage {
	case types.StageFailed:
		stage = ErrorStyle.Render(string(out.Stage))
	case types.StageCancelled:
		stage = InfoStyle.Render(string(out.Stage))
	case types.StagePublished:
		stage = HighlightStyle.Render(string(out.Stage))
	}

	line := fmt.Sprintf("%-4s %s", out.Language, stage)
	if out.ClippedSegments > 0 {
		line += InfoStyle.Render(fmt.Sprintf("  (%d clipped)", out.ClippedSegments))
	}
	if out.ErrorDetail != "" {
		line += "\n     " + ErrorStyle.Render(out.ErrorDetail)
	}
	if out.DownloadURL != "" {
		line += "\n     " + InfoStyle.Render(out.DownloadURL)
	}
	return line
}
