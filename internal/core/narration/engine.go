// Package narration plays model output through platform speech
// synthesis. The engine owns at most one utterance at a time; a new
// Speak cancels the old one, and cancellation never counts as
// completion.
package narration

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// State is the narration snapshot mirrored by the orchestrator for
// presentation purposes.
type State struct {
	Speaking   bool
	Paused     bool
	LastSpoken string
}

// Engine sequences utterances over a Synthesizer. A nil synthesizer or
// an empty voice catalog produces a muted engine: every operation is a
// safe no-op.
type Engine struct {
	mu       sync.Mutex
	synth    Synthesizer
	pref     Preference
	voice    Voice
	hasVoice bool

	speaking   bool
	paused     bool
	lastSpoken string
	cancel     context.CancelFunc
	seq        uint64
}

// NewEngine creates an engine and selects a narration voice. synth may
// be nil when the platform has no speech support.
func NewEngine(synth Synthesizer, pref Preference) *Engine {
	if pref.Language == "" {
		pref = DefaultPreference
	}
	e := &Engine{synth: synth, pref: pref}
	e.RefreshVoices(context.Background())
	return e
}

// RefreshVoices re-reads the voice catalog and re-runs selection.
// Catalogs can show up late or change, so this is safe to call again
// at any point.
func (e *Engine) RefreshVoices(ctx context.Context) {
	if e.synth == nil {
		return
	}
	catalog, err := e.synth.Voices(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("voice catalog unavailable, narration muted")
		e.mu.Lock()
		e.hasVoice = false
		e.mu.Unlock()
		return
	}
	voice, ok := SelectVoice(catalog, e.pref)
	e.mu.Lock()
	e.voice = voice
	e.hasVoice = ok
	e.mu.Unlock()
}

// Muted reports whether narration is unavailable.
func (e *Engine) Muted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.synth == nil || !e.hasVoice
}

// Speak starts narrating text, cancelling any utterance already in
// flight. onDone fires exactly once, and only when the utterance ends
// naturally: being superseded or stopped does not count as
// completion.
func (e *Engine) Speak(text string, onDone func()) {
	e.mu.Lock()
	if e.synth == nil || !e.hasVoice {
		e.lastSpoken = text
		e.mu.Unlock()
		return
	}

	if e.cancel != nil {
		e.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.seq++
	seq := e.seq
	e.speaking = true
	e.paused = false
	e.lastSpoken = text
	voice := e.voice
	synth := e.synth
	e.mu.Unlock()

	go func() {
		err := synth.Speak(ctx, voice, text)

		e.mu.Lock()
		if e.seq == seq {
			e.speaking = false
			e.paused = false
			e.cancel = nil
		}
		natural := err == nil && ctx.Err() == nil
		e.mu.Unlock()

		if err != nil && ctx.Err() == nil {
			log.Debug().Err(err).Msg("narration playback failed")
		}
		if natural && onDone != nil {
			onDone()
		}
	}()
}

// Pause suspends the current utterance.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.synth == nil || !e.speaking || e.paused {
		return
	}
	if err := e.synth.Pause(); err != nil {
		log.Debug().Err(err).Msg("failed to pause narration")
		return
	}
	e.paused = true
}

// Resume continues a paused utterance.
func (e *Engine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.synth == nil || !e.speaking || !e.paused {
		return
	}
	if err := e.synth.Resume(); err != nil {
		log.Debug().Err(err).Msg("failed to resume narration")
		return
	}
	e.paused = false
}

// Stop cancels the current utterance. The completion callback of the
// cancelled utterance never fires.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.speaking = false
	e.paused = false
}

// State returns the narration snapshot. A paused utterance does not
// count as speaking.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return State{
		Speaking:   e.speaking && !e.paused,
		Paused:     e.speaking && e.paused,
		LastSpoken: e.lastSpoken,
	}
}
