package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mnemolabs/mnemo/internal/core/models"
	"github.com/mnemolabs/mnemo/internal/core/session"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>...",
	Short: "Analyze financial documents and print the result",
	Long: `Analyze one or more financial documents and print the funding
analysis. The session persists, so "mnemo ask" and the TUI pick up
where this leaves off.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	noNarration = true // One-shot command; exiting would cut speech off.

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if a.orch.Snapshot().Phase != models.PhaseLanding {
		return fmt.Errorf("a session already exists; run 'mnemo reset' first or 'mnemo show' to see it")
	}

	if err := a.orch.SubmitFiles(cmd.Context(), args); err != nil {
		return err
	}

	s := waitSettled(a.orch)
	if s.Phase != models.PhaseDashboard {
		return fmt.Errorf("analysis failed; run with --verbose for details")
	}

	printAnalysis(cmd, s)
	return nil
}

// waitSettled blocks until the orchestrator leaves the analyzing
// phase.
func waitSettled(o *session.Orchestrator) models.Session {
	for {
		s := o.Snapshot()
		if s.Phase != models.PhaseAnalyzing {
			return s
		}
		<-o.Updates()
	}
}
