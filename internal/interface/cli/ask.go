package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mnemolabs/mnemo/internal/core/models"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question about the current analysis",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	noNarration = true

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if a.orch.Snapshot().Phase != models.PhaseDashboard {
		return fmt.Errorf("no analysis yet; run 'mnemo analyze <file>...' first")
	}

	question := strings.Join(args, " ")
	before := len(a.orch.Snapshot().Transcript)
	if err := a.orch.SendMessage(cmd.Context(), question); err != nil {
		return err
	}

	// The user turn lands synchronously; wait for the reply turn.
	for {
		s := a.orch.Snapshot()
		if len(s.Transcript) >= before+2 {
			cmd.Println(s.Transcript[len(s.Transcript)-1].Text)
			return nil
		}
		<-a.orch.Updates()
	}
}
