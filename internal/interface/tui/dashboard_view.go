package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/wordwrap"

	"github.com/mnemolabs/mnemo/internal/core/models"
	"github.com/mnemolabs/mnemo/internal/core/session"
)

const sidebarWidth = 44

func (m Model) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		text := strings.TrimSpace(m.input.Value())
		m.input.SetValue("")
		m.status = ""
		return m, sendMessage(m.orch, text)

	case "ctrl+p":
		// Toggles narration: pause while speaking, otherwise play
		// (resume, or replay the last response).
		if m.orch.Narration().Speaking {
			m.orch.Playback(session.PlaybackPause)
		} else {
			m.orch.Playback(session.PlaybackPlay)
		}
		return m, nil

	case "ctrl+x":
		m.orch.Playback(session.PlaybackStop)
		return m, nil

	case "ctrl+y":
		if turn, ok := m.session.LastModelTurn(); ok {
			return m, copyToClipboard(turn.Text)
		}
		return m, nil

	case "ctrl+r":
		m.orch.Reset()
		return m, nil

	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(msg)
		return m, cmd

	case "?":
		// Chat text regularly ends in a question mark; open help only
		// when nothing is being typed.
		if m.input.Value() == "" {
			m.mode = helpView
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) resize() {
	if m.width == 0 {
		return
	}
	chatWidth := m.width - sidebarWidth - 4
	if chatWidth < 20 {
		chatWidth = m.width - 2
	}
	chatHeight := m.height - 6
	if chatHeight < 5 {
		chatHeight = 5
	}
	if !m.chatReady {
		m.chat = viewport.New(chatWidth, chatHeight)
		m.chatReady = true
	} else {
		m.chat.Width = chatWidth
		m.chat.Height = chatHeight
	}
	m.input.Width = chatWidth - 4
	m.refreshChat()
}

func (m *Model) refreshChat() {
	if !m.chatReady {
		m.resize()
		if !m.chatReady {
			return
		}
	}
	var b strings.Builder
	for i, turn := range m.session.Transcript {
		if i > 0 {
			b.WriteString("\n")
		}
		switch turn.Role {
		case models.RoleUser:
			b.WriteString(userStyle.Render("You: "))
		default:
			b.WriteString(modelStyle.Render("Mnemo: "))
		}
		b.WriteString(wrap(turn.Text, m.chat.Width-8))
		b.WriteString("\n")
	}
	m.chat.SetContent(b.String())
	m.chat.GotoBottom()
}

func (m Model) viewDashboard() string {
	if m.session.Analysis == nil {
		return "Loading..."
	}

	chat := m.chat.View()
	sidebar := m.viewSidebar()

	main := lipgloss.JoinHorizontal(lipgloss.Top, chat, " ", sidebar)

	var b strings.Builder
	b.WriteString(main)
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	footer := "enter: send • ctrl+p: play/pause • ctrl+x: stop • ctrl+y: copy • ctrl+r: reset • ?: help"
	if st := m.orch.Narration(); st.Speaking {
		footer = speakingStyle.Render("speaking... ") + footer
	} else if st.Paused {
		footer = speakingStyle.Render("paused ") + footer
	}
	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render(footer))
	return b.String()
}

func (m Model) viewSidebar() string {
	a := m.session.Analysis
	var b strings.Builder

	b.WriteString(titleStyle.Render(a.BusinessName))
	b.WriteString("\n\n")
	b.WriteString(subtitleStyle.Render("Estimated funding capacity"))
	b.WriteString("\n")
	b.WriteString(capacityStyle.Render("$" + humanize.CommafWithDigits(a.FundingCapacity, 0)))
	b.WriteString("\n")

	if len(a.Insights) > 0 {
		b.WriteString("\n")
		b.WriteString(subtitleStyle.Render("Insights"))
		b.WriteString("\n")
		for _, s := range a.Insights {
			b.WriteString(insightStyle.Render("+ " + s))
			b.WriteString("\n")
		}
	}
	if len(a.Risks) > 0 {
		b.WriteString("\n")
		b.WriteString(subtitleStyle.Render("Risks"))
		b.WriteString("\n")
		for _, s := range a.Risks {
			b.WriteString(riskStyle.Render("! " + s))
			b.WriteString("\n")
		}
	}
	if chart := renderChart(a.Chart, sidebarWidth-6); chart != "" {
		b.WriteString("\n")
		b.WriteString(chart)
	}

	return sidebarStyle.Width(sidebarWidth).Render(b.String())
}

// renderChart draws each dataset as horizontal bars, one row per
// label, scaled to the widest value.
func renderChart(c models.ChartSeries, width int) string {
	if len(c.Labels) == 0 || len(c.Datasets) == 0 || width < 10 {
		return ""
	}

	labelWidth := 0
	for _, l := range c.Labels {
		if len(l) > labelWidth {
			labelWidth = len(l)
		}
	}
	barWidth := width - labelWidth - 2
	if barWidth < 3 {
		return ""
	}

	var b strings.Builder
	for di, ds := range c.Datasets {
		if di > 0 {
			b.WriteString("\n")
		}
		b.WriteString(subtitleStyle.Render(ds.Name))
		b.WriteString("\n")

		max := 0.0
		for _, v := range ds.Points {
			if v > max {
				max = v
			}
		}
		if max == 0 {
			max = 1
		}
		for i, label := range c.Labels {
			if i >= len(ds.Points) {
				break
			}
			n := int(ds.Points[i] / max * float64(barWidth))
			if n < 1 && ds.Points[i] > 0 {
				n = 1
			}
			b.WriteString(fmt.Sprintf("%-*s ", labelWidth, label))
			b.WriteString(barStyle.Render(strings.Repeat("█", n)))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// wrap word-wraps chat text to the viewport. Width is measured in
// display cells, so multibyte text does not wrap early.
func wrap(text string, width int) string {
	if width < 10 {
		return text
	}
	return wordwrap.String(text, width)
}
