package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// chromeHeight is the vertical space taken by header, reasoning, and hints.
const chromeHeight = 5

// View composes the header, scrollable suggestion list, and key hints.
func (m Model) View() string {
	if !m.ready {
		return "Loading suggestions..."
	}
	header := headerStyle.Render(fmt.Sprintf("Review suggestions (%d)", len(m.suggestions)))
	reasoning := reasoningStyle.Render(m.reasoning)
	hints := hintStyle.Render("y approve | n reject | u undo | enter finish | q abort")
	return lipgloss.JoinVertical(lipgloss.Left, header, reasoning, m.body.View(), hints)
}

func (m Model) renderList() string {
	rows := make([]string, 0, len(m.suggestions))
	for i, s := range m.suggestions {
		name := "(unmatched)"
		if s.File != nil {
			name = s.File.Name
		}
		marker := pendingStyle.Render("[ ]")
		switch m.decisions[i] {
		case DecisionApproved:
			marker = approvedStyle.Render("[y]")
		case DecisionRejected:
			marker = rejectedStyle.Render("[n]")
		}
		prefix := "  "
		if i == m.cursor {
			prefix = cursorStyle.Render("> ")
		}
		rows = append(rows, fmt.Sprintf("%s%s %s -> %s (%.0f%%)",
			prefix, marker, name, pathStyle.Render(s.SuggestedPath), s.Confidence*100))
	}
	return strings.Join(rows, "\n")
}
