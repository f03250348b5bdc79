package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/mnemolabs/mnemo/internal/core/models"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current session",
	RunE:  runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	noNarration = true

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	s := a.orch.Snapshot()
	if s.Phase != models.PhaseDashboard {
		cmd.Println("No analysis yet. Run 'mnemo analyze <file>...' or 'mnemo tui'.")
		return nil
	}

	printAnalysis(cmd, s)

	if len(s.Transcript) > 1 {
		cmd.Println("\nConversation:")
		for _, turn := range s.Transcript[1:] {
			who := "You"
			if turn.Role == models.RoleModel {
				who = "Mnemo"
			}
			cmd.Printf("  %s: %s\n", who, turn.Text)
		}
	}
	return nil
}

func printAnalysis(cmd *cobra.Command, s models.Session) {
	a := s.Analysis
	cmd.Printf("%s\n", a.BusinessName)
	cmd.Printf("Estimated funding capacity: $%s\n", humanize.CommafWithDigits(a.FundingCapacity, 0))

	if len(a.Insights) > 0 {
		cmd.Println("\nInsights:")
		for _, ins := range a.Insights {
			cmd.Printf("  + %s\n", ins)
		}
	}
	if len(a.Risks) > 0 {
		cmd.Println("\nRisks:")
		for _, r := range a.Risks {
			cmd.Printf("  ! %s\n", r)
		}
	}
	if len(s.Transcript) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n", s.Transcript[0].Text)
	}
}
