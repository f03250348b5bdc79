package models

import (
	"errors"
	"strings"
)

// SessionPhase is the coarse position of a session in its lifecycle.
// Exactly one phase is active at any time and it decides which
// presentation view is valid.
type SessionPhase string

const (
	PhaseLanding   SessionPhase = "landing"
	PhaseAnalyzing SessionPhase = "analyzing"
	PhaseDashboard SessionPhase = "dashboard"
)

// Role identifies the author of a chat turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// ChatTurn is one message in the conversation transcript. The
// transcript is append-only; turns are never edited or removed except
// by a full session reset.
type ChatTurn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Session is the full persisted state of one analysis-and-chat
// interaction. It is owned exclusively by the session orchestrator;
// everything else sees copies.
type Session struct {
	Phase      SessionPhase    `json:"phase"`
	Analysis   *AnalysisResult `json:"analysis,omitempty"`
	Transcript []ChatTurn      `json:"transcript"`
}

// NewSession returns an empty session in the landing phase.
func NewSession() Session {
	return Session{Phase: PhaseLanding}
}

// Validate checks the session invariants: an analysis result is
// present if and only if the session is in the dashboard phase, and a
// dashboard session always has at least the seeded model turn.
func (s *Session) Validate() error {
	switch s.Phase {
	case PhaseLanding, PhaseAnalyzing, PhaseDashboard:
	default:
		return errors.New("unknown session phase")
	}
	if s.Phase == PhaseDashboard {
		if s.Analysis == nil {
			return errors.New("dashboard session has no analysis result")
		}
		if len(s.Transcript) == 0 {
			return errors.New("dashboard session has an empty transcript")
		}
	} else if s.Analysis != nil {
		return errors.New("analysis result outside dashboard phase")
	}
	return nil
}

// Clone returns a deep copy safe to hand to the presentation layer.
func (s *Session) Clone() Session {
	out := Session{Phase: s.Phase}
	if s.Analysis != nil {
		a := s.Analysis.Clone()
		out.Analysis = &a
	}
	if len(s.Transcript) > 0 {
		out.Transcript = make([]ChatTurn, len(s.Transcript))
		copy(out.Transcript, s.Transcript)
	}
	return out
}

// LastModelTurn returns the most recent model turn, if any.
func (s *Session) LastModelTurn() (ChatTurn, bool) {
	for i := len(s.Transcript) - 1; i >= 0; i-- {
		if s.Transcript[i].Role == RoleModel {
			return s.Transcript[i], true
		}
	}
	return ChatTurn{}, false
}

// Document is one uploaded file reduced to a text payload. Documents
// are ephemeral: they exist only for the duration of an analysis
// request and are never persisted.
type Document struct {
	Name    string
	RawText string
}

// Validate checks the document has a name and a non-blank payload.
func (d *Document) Validate() error {
	if d.Name == "" {
		return errors.New("document name is required")
	}
	if strings.TrimSpace(d.RawText) == "" {
		return errors.New("document text is empty")
	}
	return nil
}
