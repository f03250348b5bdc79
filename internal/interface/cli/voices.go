package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mnemolabs/mnemo/internal/core/narration"
)

var voicesCmd = &cobra.Command{
	Use:   "voices",
	Short: "List narration voices available on this machine",
	RunE:  runVoices,
}

func init() {
	rootCmd.AddCommand(voicesCmd)
}

func runVoices(cmd *cobra.Command, args []string) error {
	synth, err := narration.NewCommandSynthesizer()
	if err != nil {
		return fmt.Errorf("no speech command found: %w", err)
	}

	voices, err := synth.Voices(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list voices: %w", err)
	}
	if len(voices) == 0 {
		cmd.Println("No voices available.")
		return nil
	}

	pref := narration.DefaultPreference
	chosen, _ := narration.SelectVoice(voices, pref)

	for _, v := range voices {
		marker := " "
		if v.ID == chosen.ID {
			marker = "*"
		}
		gender := v.Gender
		if gender == "" {
			gender = "-"
		}
		cmd.Printf("%s %-30s %-8s %s\n", marker, v.ID, v.Language, gender)
	}
	return nil
}
