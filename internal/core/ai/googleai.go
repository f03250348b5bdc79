package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"

	"github.com/mnemolabs/mnemo/internal/core/documents"
	"github.com/mnemolabs/mnemo/internal/core/models"
)

// GoogleAIConfig holds configuration for the Gemini-backed gateway.
type GoogleAIConfig struct {
	APIKey       string // required
	Model        string // defaults to gemini-1.5-flash
	ExcerptLimit int    // per-document prompt budget, defaults to documents.DefaultExcerptLimit
}

// GoogleAIGateway implements Gateway using the Gemini API.
type GoogleAIGateway struct {
	llm          *googleai.GoogleAI
	excerptLimit int
}

// NewGoogleAI creates a new Gemini gateway.
func NewGoogleAI(ctx context.Context, cfg GoogleAIConfig) (*GoogleAIGateway, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("googleai: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-1.5-flash"
	}
	if cfg.ExcerptLimit <= 0 {
		cfg.ExcerptLimit = documents.DefaultExcerptLimit
	}

	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(cfg.APIKey),
		googleai.WithDefaultModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create googleai client: %w", err)
	}

	return &GoogleAIGateway{llm: llm, excerptLimit: cfg.ExcerptLimit}, nil
}

// Analyze implements Gateway.
func (g *GoogleAIGateway) Analyze(ctx context.Context, docs []models.Document) (*models.AnalysisResult, error) {
	prompt, err := buildAnalysisPrompt(docs, g.excerptLimit)
	if err != nil {
		return nil, &AnalysisError{Err: err}
	}

	reply, err := llms.GenerateFromSinglePrompt(ctx, g.llm, prompt,
		llms.WithMaxTokens(2048),
		llms.WithTemperature(0.2),
	)
	if err != nil {
		return nil, &AnalysisError{Err: err}
	}

	result, err := ParseAnalysis(reply)
	if err != nil {
		return nil, &AnalysisError{Err: err}
	}
	return result, nil
}

// Converse implements Gateway. The transcript maps directly onto the
// model's alternating-turn convention.
func (g *GoogleAIGateway) Converse(ctx context.Context, history []models.ChatTurn, message string) (string, error) {
	messages := make([]llms.MessageContent, 0, len(history)+1)
	for _, turn := range history {
		role := llms.ChatMessageTypeHuman
		if turn.Role == models.RoleModel {
			role = llms.ChatMessageTypeAI
		}
		messages = append(messages, llms.TextParts(role, turn.Text))
	}
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, message))

	resp, err := g.llm.GenerateContent(ctx, messages,
		llms.WithMaxTokens(1024),
		llms.WithTemperature(0.7),
	)
	if err != nil {
		return "", &ConversationError{Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &ConversationError{Err: errors.New("empty model response")}
	}
	return resp.Choices[0].Content, nil
}

// Name implements Gateway.
func (g *GoogleAIGateway) Name() string {
	return "googleai"
}
