package ai

import (
	"fmt"

	"github.com/cbroglie/mustache"
	"github.com/mnemolabs/mnemo/internal/core/documents"
	"github.com/mnemolabs/mnemo/internal/core/models"
)

const analysisPromptTemplate = `Analyze the following financial documents for a business funding application. Extract the business name, calculate the average monthly deposit, and estimate a funding capacity based on 13% of that average. Provide a brief set of insights and risks, and a monthly revenue/expenses series for charting.

Respond with a single JSON object and nothing else, in this shape:
{"businessName": "...", "fundingCapacity": 0, "insights": ["..."], "risks": ["..."], "chart": {"labels": ["Jan"], "datasets": [{"name": "Revenue", "points": [0]}]}}

{{#documents}}
File: {{{name}}}

{{{excerpt}}}

{{/documents}}`

// buildAnalysisPrompt renders the analysis request with one bounded
// excerpt per document.
func buildAnalysisPrompt(docs []models.Document, excerptLimit int) (string, error) {
	sections := make([]map[string]string, len(docs))
	for i, d := range docs {
		sections[i] = map[string]string{
			"name":    d.Name,
			"excerpt": documents.Excerpt(d.RawText, excerptLimit),
		}
	}

	prompt, err := mustache.Render(analysisPromptTemplate, map[string]any{"documents": sections})
	if err != nil {
		return "", fmt.Errorf("failed to render analysis prompt: %w", err)
	}
	return prompt, nil
}

// flattenConversation renders a transcript plus the new user message
// as a single prompt, for providers without a native multi-turn API.
func flattenConversation(history []models.ChatTurn, message string) string {
	prompt := "You are a business funding analyst continuing a conversation with a client. Answer the final user message.\n\n"
	for _, turn := range history {
		role := "User"
		if turn.Role == models.RoleModel {
			role = "Assistant"
		}
		prompt += role + ": " + turn.Text + "\n\n"
	}
	prompt += "User: " + message + "\n\nAssistant:"
	return prompt
}
