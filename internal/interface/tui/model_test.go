package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mnemolabs/mnemo/internal/core/session"
	"github.com/mnemolabs/mnemo/internal/core/store"
)

func dashboardModel(t *testing.T) Model {
	t.Helper()
	m := New(session.New(session.Config{Store: store.NewMemory()}))
	m.mode = dashboardView
	return m
}

func typeKeys(t *testing.T, m Model, text string) Model {
	t.Helper()
	for _, r := range text {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(Model)
	}
	return m
}

func TestQuestionMarkReachesChatInput(t *testing.T) {
	m := dashboardModel(t)

	m = typeKeys(t, m, "How was this computed?")

	if m.mode != dashboardView {
		t.Fatalf("mode = %v, want dashboardView", m.mode)
	}
	if got := m.input.Value(); got != "How was this computed?" {
		t.Errorf("input = %q, question mark was swallowed", got)
	}
}

func TestQuestionMarkOpensHelpWhenIdle(t *testing.T) {
	m := dashboardModel(t)

	m = typeKeys(t, m, "?")

	if m.mode != helpView {
		t.Fatalf("mode = %v, want helpView", m.mode)
	}
	if got := m.input.Value(); got != "" {
		t.Errorf("input = %q, want empty", got)
	}
}

func TestQuestionMarkStaysInLandingInput(t *testing.T) {
	m := New(session.New(session.Config{Store: store.NewMemory()}))

	m = typeKeys(t, m, "reports/q3?.csv")

	if m.mode != landingView {
		t.Fatalf("mode = %v, want landingView", m.mode)
	}
	if got := m.input.Value(); got != "reports/q3?.csv" {
		t.Errorf("input = %q, question mark was swallowed", got)
	}
}
