package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	dbPath      string
	provider    string
	noNarration bool
	verbose     bool
	versionInfo string
)

// SetVersion sets the version information from build-time ldflags
func SetVersion(version, commit, date string) {
	versionInfo = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
	rootCmd.Version = versionInfo
}

// Execute runs the CLI
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "mnemo",
	Short: "Conversational funding analysis for your financial documents",
	Long: `mnemo - turn financial documents into a spoken, conversational funding analysis

Upload bank statements or financial reports; mnemo estimates a funding
capacity, surfaces insights and risks, narrates the result, and answers
follow-up questions. The session survives restarts until you reset it.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := zerolog.WarnLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default to TUI if no subcommand specified
		return tuiCmd.RunE(cmd, args)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Session database path (default ~/.config/mnemo/mnemo.db)")
	rootCmd.PersistentFlags().StringVar(&provider, "provider", "", "AI provider: googleai or bedrock")
	rootCmd.PersistentFlags().BoolVar(&noNarration, "no-narration", false, "Disable speech narration")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")
}
