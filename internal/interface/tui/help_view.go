package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) updateHelp(_ tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mode = modeFor(m.session.Phase)
	return m, nil
}

func (m Model) viewHelp() string {
	help := `
Mnemo - Help
════════════

LANDING
───────
  Type         File paths, separated by spaces
  Enter        Analyze documents
  q            Quit (when the input is empty)

ANALYZING
─────────
  ctrl+r       Cancel and start over

DASHBOARD
─────────
  Type         Ask a question about the analysis
  Enter        Send
  ctrl+p       Pause narration, or play the last response
  ctrl+x       Stop narration
  ctrl+y       Copy the last response to clipboard
  ctrl+r       Reset the session
  pgup/pgdown  Scroll the conversation

Press any key to return
`
	return helpStyle.Render(help)
}
