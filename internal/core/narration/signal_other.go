//go:build !unix

package narration

// Pause/resume needs job-control signals; on other platforms the
// utterance just keeps playing.
func (c *CommandSynthesizer) signalCurrent(bool) error {
	return nil
}
