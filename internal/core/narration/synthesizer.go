package narration

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"sync"
)

// ErrUnsupported is returned when the platform has no usable speech
// synthesis. Callers degrade to a muted engine, never to a failure.
var ErrUnsupported = errors.New("speech synthesis is not available on this platform")

// Synthesizer abstracts platform speech synthesis. Speak blocks until
// the utterance finishes or ctx is cancelled.
type Synthesizer interface {
	Voices(ctx context.Context) ([]Voice, error)
	Speak(ctx context.Context, voice Voice, text string) error
	Pause() error
	Resume() error
}

// CommandSynthesizer speaks through the host speech command: `say` on
// macOS, `espeak-ng`/`espeak` elsewhere. Playback runs as a child
// process, so cancellation kills it and pause/resume signal it.
type CommandSynthesizer struct {
	binary string

	mu      sync.Mutex
	current *exec.Cmd
}

// NewCommandSynthesizer locates the platform speech binary. Returns
// ErrUnsupported when none is on PATH.
func NewCommandSynthesizer() (*CommandSynthesizer, error) {
	candidates := []string{"espeak-ng", "espeak"}
	if runtime.GOOS == "darwin" {
		candidates = []string{"say"}
	}
	for _, name := range candidates {
		if path, err := exec.LookPath(name); err == nil {
			return &CommandSynthesizer{binary: path}, nil
		}
	}
	return nil, ErrUnsupported
}

// Voices parses the platform voice catalog.
func (c *CommandSynthesizer) Voices(ctx context.Context) ([]Voice, error) {
	if c.isSay() {
		return c.sayVoices(ctx)
	}
	return c.espeakVoices(ctx)
}

func (c *CommandSynthesizer) isSay() bool {
	return strings.HasSuffix(c.binary, "/say") || c.binary == "say"
}

// sayVoices parses `say -v ?` output. Lines look like:
//
//	Kate                en_GB    # Hello, my name is Kate.
func (c *CommandSynthesizer) sayVoices(ctx context.Context) ([]Voice, error) {
	out, err := exec.CommandContext(ctx, c.binary, "-v", "?").Output()
	if err != nil {
		return nil, fmt.Errorf("failed to list voices: %w", err)
	}

	var voices []Voice
	scanner := bufio.NewScanner(strings.NewReader(string(out)))
	for scanner.Scan() {
		line := scanner.Text()
		hash := strings.Index(line, "#")
		if hash > 0 {
			line = line[:hash]
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		lang := strings.ReplaceAll(fields[len(fields)-1], "_", "-")
		name := strings.Join(fields[:len(fields)-1], " ")
		voices = append(voices, Voice{
			ID:       name,
			Name:     name,
			Language: lang,
		})
	}
	return voices, nil
}

// espeakVoices parses `espeak --voices` output. Columns:
//
//	Pty Language Age/Gender VoiceName          File          Other Languages
//	 5  en-gb          M  english             en
func (c *CommandSynthesizer) espeakVoices(ctx context.Context) ([]Voice, error) {
	out, err := exec.CommandContext(ctx, c.binary, "--voices").Output()
	if err != nil {
		return nil, fmt.Errorf("failed to list voices: %w", err)
	}

	var voices []Voice
	scanner := bufio.NewScanner(strings.NewReader(string(out)))
	first := true
	for scanner.Scan() {
		if first {
			first = false // header row
			continue
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 {
			continue
		}
		gender := ""
		switch strings.TrimLeft(strings.ToUpper(fields[2]), "0123456789/") {
		case "F":
			gender = "female"
		case "M":
			gender = "male"
		}
		voices = append(voices, Voice{
			ID:       fields[3],
			Name:     fields[3],
			Language: fields[1],
			Gender:   gender,
		})
	}
	return voices, nil
}

// Speak implements Synthesizer.
func (c *CommandSynthesizer) Speak(ctx context.Context, voice Voice, text string) error {
	// Both say and espeak take -v <voice> followed by the text.
	args := []string{}
	if voice.ID != "" {
		args = append(args, "-v", voice.ID)
	}
	args = append(args, text)
	cmd := exec.CommandContext(ctx, c.binary, args...)

	c.mu.Lock()
	if err := cmd.Start(); err != nil {
		c.mu.Unlock()
		return fmt.Errorf("failed to start speech command: %w", err)
	}
	c.current = cmd
	c.mu.Unlock()

	err := cmd.Wait()

	c.mu.Lock()
	if c.current == cmd {
		c.current = nil
	}
	c.mu.Unlock()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return fmt.Errorf("speech command failed: %w", err)
	}
	return nil
}

// Pause suspends the current utterance, if any.
func (c *CommandSynthesizer) Pause() error {
	return c.signalCurrent(true)
}

// Resume continues a paused utterance, if any.
func (c *CommandSynthesizer) Resume() error {
	return c.signalCurrent(false)
}
