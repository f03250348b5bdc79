package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) updateAnalyzing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+r":
		m.orch.Reset()
		return m, nil
	case "?":
		m.mode = helpView
		return m, nil
	}
	return m, nil
}

func (m Model) viewAnalyzing() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Mnemo"))
	b.WriteString("\n\n")
	b.WriteString(m.spin.View())
	b.WriteString(" Analyzing your documents...")
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("ctrl+r: cancel and start over • ctrl+c: quit"))
	return b.String()
}
