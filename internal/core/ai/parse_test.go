package ai

import (
	"strings"
	"testing"

	"github.com/mnemolabs/mnemo/internal/core/models"
)

const goodReply = `{
	"businessName": "QuantumLeap Tech",
	"fundingCapacity": 15000,
	"insights": ["Strong monthly revenue", "Consistent cash flow"],
	"risks": ["High dependency on a single client"],
	"chart": {
		"labels": ["Jan", "Feb", "Mar"],
		"datasets": [{"name": "Revenue", "points": [120000, 110000, 130000]}]
	}
}`

func TestParseAnalysis(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		wantErr bool
	}{
		{name: "bare JSON", reply: goodReply},
		{name: "fenced JSON", reply: "```json\n" + goodReply + "\n```"},
		{name: "fence without language tag", reply: "```\n" + goodReply + "\n```"},
		{name: "JSON surrounded by prose", reply: "Here is the analysis:\n" + goodReply + "\nLet me know if you need more."},
		{name: "no JSON at all", reply: "I cannot analyze these documents.", wantErr: true},
		{name: "truncated JSON", reply: goodReply[:40], wantErr: true},
		{name: "missing business name", reply: `{"fundingCapacity": 15000}`, wantErr: true},
		{name: "negative capacity", reply: `{"businessName": "Acme", "fundingCapacity": -5}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseAnalysis(tt.reply)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAnalysis() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if result.BusinessName != "QuantumLeap Tech" {
				t.Errorf("BusinessName = %q", result.BusinessName)
			}
			if result.FundingCapacity != 15000 {
				t.Errorf("FundingCapacity = %v", result.FundingCapacity)
			}
			if len(result.Insights) != 2 || len(result.Risks) != 1 {
				t.Errorf("insights/risks = %d/%d", len(result.Insights), len(result.Risks))
			}
			if len(result.Chart.Labels) != 3 {
				t.Errorf("chart labels = %v", result.Chart.Labels)
			}
		})
	}
}

func TestBuildAnalysisPromptCapsExcerpts(t *testing.T) {
	docs := []models.Document{
		{Name: "statements.csv", RawText: strings.Repeat("x", 5000)},
		{Name: "invoices.txt", RawText: "small"},
	}

	prompt, err := buildAnalysisPrompt(docs, 2000)
	if err != nil {
		t.Fatalf("buildAnalysisPrompt() error = %v", err)
	}
	if !strings.Contains(prompt, "File: statements.csv") {
		t.Error("prompt missing document header")
	}
	if !strings.Contains(prompt, "File: invoices.txt") {
		t.Error("prompt missing second document")
	}
	if !strings.Contains(prompt, "business funding application") {
		t.Error("prompt missing analysis instructions")
	}
	if strings.Contains(prompt, strings.Repeat("x", 2100)) {
		t.Error("document excerpt not capped")
	}
	if !strings.Contains(prompt, "...") {
		t.Error("truncated excerpt should carry an ellipsis")
	}
}
