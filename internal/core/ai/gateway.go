// Package ai is the capability-typed gateway to the generative model
// service. The rest of the system treats both operations as
// single-shot, potentially slow remote calls with no partial results.
package ai

import (
	"context"

	"github.com/mnemolabs/mnemo/internal/core/models"
)

// Gateway is the interface for generative model backends.
type Gateway interface {
	// Analyze reduces the documents to a funding analysis. The gateway
	// owns result extraction: whatever the model replies is parsed into
	// a structured AnalysisResult or the call fails.
	Analyze(ctx context.Context, docs []models.Document) (*models.AnalysisResult, error)

	// Converse continues the conversation. history is the transcript as
	// it stood before message; message is the new user turn. Returns
	// the model's reply text.
	Converse(ctx context.Context, history []models.ChatTurn, message string) (string, error)

	// Name returns the provider name (e.g. "googleai", "bedrock").
	Name() string
}

// AnalysisError wraps any failure of the analyze call: network, quota,
// or a reply that could not be parsed.
type AnalysisError struct {
	Err error
}

func (e *AnalysisError) Error() string {
	return "analysis failed: " + e.Err.Error()
}

func (e *AnalysisError) Unwrap() error { return e.Err }

// ConversationError wraps any failure of the converse call.
type ConversationError struct {
	Err error
}

func (e *ConversationError) Error() string {
	return "conversation failed: " + e.Err.Error()
}

func (e *ConversationError) Unwrap() error { return e.Err }
