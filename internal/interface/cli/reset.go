package cli

import (
	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Discard the current session",
	Long:  "Discard the current analysis and conversation, returning to a clean slate.",
	RunE:  runReset,
}

func init() {
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) error {
	noNarration = true

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	a.orch.Reset()
	cmd.Println("Session cleared.")
	return nil
}
