package tui

import (
	"context"
	"errors"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mnemolabs/mnemo/internal/core/session"
)

// stateChangedMsg means the orchestrator advanced and the snapshot is
// stale. The payload is intentionally empty; View re-reads.
type stateChangedMsg struct{}

type statusMsg string

// waitForUpdate blocks on the orchestrator's update channel. Update
// re-issues it after every stateChangedMsg, so there is always
// exactly one listener.
func waitForUpdate(o *session.Orchestrator) tea.Cmd {
	return func() tea.Msg {
		<-o.Updates()
		return stateChangedMsg{}
	}
}

// submitFiles and sendMessage report rejections as status text; on
// success the orchestrator signals its update channel and the
// pending waitForUpdate delivers the transition.
func submitFiles(o *session.Orchestrator, paths []string) tea.Cmd {
	return func() tea.Msg {
		if err := o.SubmitFiles(context.Background(), paths); err != nil {
			return statusMsg(inputReason(err))
		}
		return nil
	}
}

func sendMessage(o *session.Orchestrator, text string) tea.Cmd {
	return func() tea.Msg {
		if err := o.SendMessage(context.Background(), text); err != nil {
			return statusMsg(inputReason(err))
		}
		return nil
	}
}

func copyToClipboard(text string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(text); err != nil {
			return statusMsg("Clipboard unavailable: " + err.Error())
		}
		return statusMsg("Last response copied to clipboard")
	}
}

func inputReason(err error) string {
	var inputErr *session.InputError
	if errors.As(err, &inputErr) {
		return inputErr.Reason
	}
	return err.Error()
}
