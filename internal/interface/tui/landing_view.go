package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) updateLanding(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		if m.input.Value() == "" {
			return m, tea.Quit
		}
	case "?":
		if m.input.Value() == "" {
			m.mode = helpView
			return m, nil
		}
	case "enter":
		paths := strings.Fields(m.input.Value())
		m.status = ""
		return m, submitFiles(m.orch, paths)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) viewLanding() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Mnemo"))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render("Upload financial documents for a conversational funding analysis."))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n\n")
	}
	b.WriteString(helpStyle.Render("enter: analyze • ?: help • ctrl+c: quit"))
	return b.String()
}
