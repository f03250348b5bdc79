// Package session owns the session state machine: it sequences
// document ingestion, AI analysis, persisted conversational state,
// turn-by-turn chat, and speech narration. All mutation happens here;
// the presentation layer only reads snapshots and forwards intents.
package session

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"

	"github.com/mnemolabs/mnemo/internal/core/ai"
	"github.com/mnemolabs/mnemo/internal/core/audit"
	"github.com/mnemolabs/mnemo/internal/core/documents"
	"github.com/mnemolabs/mnemo/internal/core/models"
	"github.com/mnemolabs/mnemo/internal/core/narration"
	"github.com/mnemolabs/mnemo/internal/core/store"
)

// fallbackReply is appended in place of a model turn when a converse
// call fails, so the conversation never stalls.
const fallbackReply = "I encountered an error. Please try again."

// PlaybackAction is a narration intent forwarded from the
// presentation layer.
type PlaybackAction string

const (
	PlaybackPlay  PlaybackAction = "play"
	PlaybackPause PlaybackAction = "pause"
	PlaybackStop  PlaybackAction = "stop"
)

// InputError marks a request rejected locally before any remote call
// was made: an empty upload, a blank message, an intent that does not
// fit the current phase.
type InputError struct {
	Reason string
}

func (e *InputError) Error() string { return e.Reason }

// Config wires an Orchestrator's collaborators.
type Config struct {
	Gateway  ai.Gateway
	Store    store.Store
	Narrator *narration.Engine
	Audit    audit.Emitter

	// ExcerptLimit bounds the per-document text that reaches the
	// analysis prompt. Zero means documents.DefaultExcerptLimit.
	ExcerptLimit int
}

// Orchestrator is the session state machine. It is safe for use from
// multiple goroutines; remote calls run asynchronously and only ever
// suspend their own operation.
type Orchestrator struct {
	gateway  ai.Gateway
	store    store.Store
	narrator *narration.Engine
	audit    audit.Emitter
	excerpt  int

	mu      sync.Mutex
	session models.Session
	// gen tags in-flight remote calls. Reset advances it, so a late
	// analyze or converse result from a discarded session is ignored
	// instead of resurrecting it.
	gen uint64

	updates chan struct{}
}

// New creates an orchestrator with an empty landing-phase session.
func New(cfg Config) *Orchestrator {
	if cfg.Audit == nil {
		cfg.Audit = audit.Nop{}
	}
	if cfg.Narrator == nil {
		cfg.Narrator = narration.NewEngine(nil, narration.DefaultPreference)
	}
	if cfg.ExcerptLimit <= 0 {
		cfg.ExcerptLimit = documents.DefaultExcerptLimit
	}
	return &Orchestrator{
		gateway:  cfg.Gateway,
		store:    cfg.Store,
		narrator: cfg.Narrator,
		audit:    cfg.Audit,
		excerpt:  cfg.ExcerptLimit,
		session:  models.NewSession(),
		updates:  make(chan struct{}, 1),
	}
}

// Updates signals after every completed transition so the
// presentation layer can re-render. Notifications coalesce; read the
// snapshot, don't count them.
func (o *Orchestrator) Updates() <-chan struct{} {
	return o.updates
}

func (o *Orchestrator) notify() {
	select {
	case o.updates <- struct{}{}:
	default:
	}
}

// Snapshot returns a read-only copy of the session.
func (o *Orchestrator) Snapshot() models.Session {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.session.Clone()
}

// Narration mirrors the narration engine state for the UI.
func (o *Orchestrator) Narration() narration.State {
	return o.narrator.State()
}

// Rehydrate restores the session persisted by a previous run. Missing
// or unusable state leaves the fresh landing session in place.
// Narration is never replayed on rehydration.
func (o *Orchestrator) Rehydrate() {
	loaded, err := o.store.Load()
	if err != nil {
		log.Warn().Err(err).Msg("could not load persisted session, starting fresh")
		return
	}
	if loaded == nil {
		return
	}
	if err := loaded.Validate(); err != nil {
		log.Warn().Err(err).Msg("persisted session is invalid, starting fresh")
		return
	}

	o.mu.Lock()
	o.session = *loaded
	o.mu.Unlock()
	o.notify()
}

// SubmitFiles reads the given files concurrently and submits them for
// analysis. The Landing -> Analyzing transition happens synchronously;
// reading and the analyze call run in the background and resolve to
// either Dashboard or back to Landing.
func (o *Orchestrator) SubmitFiles(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return &InputError{Reason: "at least one document is required"}
	}
	gen, err := o.beginAnalysis(len(paths), fileNames(paths))
	if err != nil {
		return err
	}

	go func() {
		docs, err := documents.ReadAll(ctx, paths)
		if err != nil {
			o.failAnalysis(gen, err)
			return
		}
		o.runAnalysis(ctx, gen, docs)
	}()
	return nil
}

// SubmitDocuments submits already-read documents for analysis.
func (o *Orchestrator) SubmitDocuments(ctx context.Context, docs []models.Document) error {
	if len(docs) == 0 {
		return &InputError{Reason: "at least one document is required"}
	}
	gen, err := o.beginAnalysis(len(docs), documents.Names(docs))
	if err != nil {
		return err
	}

	go o.runAnalysis(ctx, gen, docs)
	return nil
}

// beginAnalysis performs the synchronous part of the submit
// transition and emits the analysis_started event.
func (o *Orchestrator) beginAnalysis(fileCount int, names []string) (uint64, error) {
	o.mu.Lock()
	if o.session.Phase != models.PhaseLanding {
		o.mu.Unlock()
		return 0, &InputError{Reason: "an analysis is already in progress"}
	}
	o.session.Phase = models.PhaseAnalyzing
	gen := o.gen
	o.mu.Unlock()

	o.audit.Emit(audit.EventAnalysisStarted, audit.Fields{
		"fileCount": fileCount,
		"fileNames": names,
	})
	o.notify()
	return gen, nil
}

func (o *Orchestrator) runAnalysis(ctx context.Context, gen uint64, docs []models.Document) {
	result, err := o.gateway.Analyze(ctx, docs)
	if err != nil {
		o.failAnalysis(gen, err)
		return
	}

	seed := models.ChatTurn{Role: models.RoleModel, Text: seedSummary(result)}

	o.mu.Lock()
	if o.gen != gen {
		// Reset won while we were waiting on the model; the result
		// belongs to a discarded session.
		o.mu.Unlock()
		return
	}
	o.session.Phase = models.PhaseDashboard
	o.session.Analysis = result
	o.session.Transcript = []models.ChatTurn{seed}
	o.persistLocked()
	o.mu.Unlock()

	o.audit.Emit(audit.EventAnalysisComplete, audit.Fields{
		"businessName":    result.BusinessName,
		"fundingCapacity": result.FundingCapacity,
	})
	o.narrator.Speak(seed.Text, o.notify)
	o.notify()
}

// failAnalysis discards any partial state and returns to Landing.
// A partial analysis is never shown.
func (o *Orchestrator) failAnalysis(gen uint64, cause error) {
	o.mu.Lock()
	if o.gen != gen {
		o.mu.Unlock()
		return
	}
	o.session = models.NewSession()
	o.mu.Unlock()

	o.audit.Emit(audit.EventAnalysisError, audit.Fields{"error": cause.Error()})
	o.notify()
}

// SendMessage appends the user turn immediately and requests a model
// reply in the background. A failed converse call becomes a visible
// fallback turn; the conversation never stalls.
func (o *Orchestrator) SendMessage(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return &InputError{Reason: "message is empty"}
	}

	o.mu.Lock()
	if o.session.Phase != models.PhaseDashboard {
		o.mu.Unlock()
		return &InputError{Reason: "no active analysis to chat about"}
	}
	// The model expects alternating turns: hand it the transcript as
	// it stood before this message, not including the new user turn.
	history := make([]models.ChatTurn, len(o.session.Transcript))
	copy(history, o.session.Transcript)
	o.session.Transcript = append(o.session.Transcript, models.ChatTurn{Role: models.RoleUser, Text: text})
	gen := o.gen
	o.persistLocked()
	o.mu.Unlock()

	o.audit.Emit(audit.EventUserMessage, audit.Fields{"message": text})
	o.notify()

	go o.runConverse(ctx, gen, history, text)
	return nil
}

func (o *Orchestrator) runConverse(ctx context.Context, gen uint64, history []models.ChatTurn, text string) {
	reply, err := o.gateway.Converse(ctx, history, text)

	o.mu.Lock()
	if o.gen != gen {
		o.mu.Unlock()
		return
	}
	turn := models.ChatTurn{Role: models.RoleModel, Text: reply}
	if err != nil {
		turn.Text = fallbackReply
	}
	o.session.Transcript = append(o.session.Transcript, turn)
	o.persistLocked()
	o.mu.Unlock()

	if err != nil {
		o.audit.Emit(audit.EventAIError, audit.Fields{"error": err.Error()})
	} else {
		o.audit.Emit(audit.EventAIResponse, audit.Fields{"response": reply})
	}
	o.notify()
}

// Playback forwards a narration intent. Play resumes a paused
// utterance or re-speaks the last model turn.
func (o *Orchestrator) Playback(action PlaybackAction) {
	switch action {
	case PlaybackPlay:
		if o.narrator.State().Paused {
			o.narrator.Resume()
			break
		}
		o.mu.Lock()
		turn, ok := o.session.LastModelTurn()
		o.mu.Unlock()
		if ok {
			o.narrator.Speak(turn.Text, o.notify)
		}
	case PlaybackPause:
		o.narrator.Pause()
	case PlaybackStop:
		o.narrator.Stop()
	}
	o.notify()
}

// Reset stops narration, clears the session and the persisted state.
// It is unconditional and idempotent: resetting an empty session is a
// no-op that still succeeds.
func (o *Orchestrator) Reset() {
	o.narrator.Stop()

	o.mu.Lock()
	o.gen++ // in-flight results now belong to a dead session
	o.session = models.NewSession()
	o.mu.Unlock()

	if err := o.store.Clear(); err != nil {
		log.Warn().Err(err).Msg("failed to clear persisted session")
	}
	o.notify()
}

// persistLocked saves the current session. Persistence failures are
// logged and swallowed; the in-memory session stays authoritative.
// Callers hold o.mu, which keeps snapshots ordered.
func (o *Orchestrator) persistLocked() {
	if err := o.store.Save(o.session.Clone()); err != nil {
		log.Warn().Err(err).Msg("failed to persist session")
	}
}

// seedSummary is the narrated model turn a fresh analysis seeds the
// transcript with.
func seedSummary(r *models.AnalysisResult) string {
	return fmt.Sprintf(
		"Based on the documents, here is the initial analysis for %s. The estimated funding capacity is $%s.",
		r.BusinessName,
		humanize.CommafWithDigits(r.FundingCapacity, 0),
	)
}

func fileNames(paths []string) []string {
	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = filepath.Base(p)
	}
	return names
}
