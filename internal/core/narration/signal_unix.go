//go:build unix

package narration

import "syscall"

// signalCurrent pauses or resumes the running speech process with
// SIGSTOP/SIGCONT. No-op when nothing is playing.
func (c *CommandSynthesizer) signalCurrent(pause bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil || c.current.Process == nil {
		return nil
	}
	sig := syscall.SIGCONT
	if pause {
		sig = syscall.SIGSTOP
	}
	return c.current.Process.Signal(sig)
}
