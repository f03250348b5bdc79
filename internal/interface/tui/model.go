package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mnemolabs/mnemo/internal/core/models"
	"github.com/mnemolabs/mnemo/internal/core/session"
)

type viewMode int

const (
	landingView viewMode = iota
	analyzingView
	dashboardView
	helpView
)

type Model struct {
	orch *session.Orchestrator
	mode viewMode

	input     textinput.Model
	chat      viewport.Model
	spin      spinner.Model
	width     int
	height    int
	status    string
	chatReady bool

	// Snapshot rendered by View. Refreshed on every stateChangedMsg.
	session models.Session
}

func New(orch *session.Orchestrator) Model {
	input := textinput.New()
	input.Placeholder = "Paths to financial documents, separated by spaces"
	input.Focus()
	input.CharLimit = 0

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		orch:    orch,
		input:   input,
		spin:    sp,
		session: orch.Snapshot(),
	}
	m.mode = modeFor(m.session.Phase)
	return m
}

func modeFor(phase models.SessionPhase) viewMode {
	switch phase {
	case models.PhaseAnalyzing:
		return analyzingView
	case models.PhaseDashboard:
		return dashboardView
	default:
		return landingView
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForUpdate(m.orch), textinput.Blink)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		// Only chords are global. Printable keys belong to the focused
		// input, so "?" opens help per view, never over typed text.
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		switch m.mode {
		case landingView:
			return m.updateLanding(msg)
		case analyzingView:
			return m.updateAnalyzing(msg)
		case dashboardView:
			return m.updateDashboard(msg)
		case helpView:
			return m.updateHelp(msg)
		}

	case stateChangedMsg:
		prev := m.session.Phase
		m.session = m.orch.Snapshot()
		m.mode = modeFor(m.session.Phase)
		if m.session.Phase != prev {
			m.enterPhase()
		}
		if m.mode == dashboardView {
			m.refreshChat()
		}
		cmds := []tea.Cmd{waitForUpdate(m.orch)}
		if m.mode == analyzingView && prev != models.PhaseAnalyzing {
			cmds = append(cmds, m.spin.Tick)
		}
		return m, tea.Batch(cmds...)

	case statusMsg:
		m.status = string(msg)
		return m, nil

	case spinner.TickMsg:
		if m.mode != analyzingView {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	return m, nil
}

// enterPhase does the one-shot work of a phase transition.
func (m *Model) enterPhase() {
	m.status = ""
	switch m.session.Phase {
	case models.PhaseLanding:
		m.input.Placeholder = "Paths to financial documents, separated by spaces"
		m.input.SetValue("")
		m.input.Focus()
	case models.PhaseDashboard:
		m.input.Placeholder = "Ask about the analysis"
		m.input.SetValue("")
		m.input.Focus()
		m.chatReady = false
		m.resize()
	}
}

func (m Model) View() string {
	switch m.mode {
	case landingView:
		return m.viewLanding()
	case analyzingView:
		return m.viewAnalyzing()
	case dashboardView:
		return m.viewDashboard()
	case helpView:
		return m.viewHelp()
	}
	return ""
}
