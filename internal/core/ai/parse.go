package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mnemolabs/mnemo/internal/core/models"
)

// ParseAnalysis extracts an AnalysisResult from a model reply. Models
// wrap JSON in code fences or prose often enough that we scan for the
// outermost object instead of decoding the raw reply.
func ParseAnalysis(reply string) (*models.AnalysisResult, error) {
	payload, err := extractJSONObject(reply)
	if err != nil {
		return nil, err
	}

	var result models.AnalysisResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, fmt.Errorf("malformed analysis reply: %w", err)
	}
	if err := result.Validate(); err != nil {
		return nil, fmt.Errorf("incomplete analysis reply: %w", err)
	}
	return &result, nil
}

func extractJSONObject(reply string) (string, error) {
	s := strings.TrimSpace(reply)

	// Strip a ```json ... ``` fence if present.
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", errors.New("no JSON object in analysis reply")
	}
	return s[start : end+1], nil
}
