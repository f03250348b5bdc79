package models

import "errors"

// AnalysisResult is the structured outcome of one funding analysis.
// It is immutable once produced; a new analysis replaces it wholesale,
// results are never merged.
type AnalysisResult struct {
	BusinessName    string      `json:"businessName"`
	FundingCapacity float64     `json:"fundingCapacity"`
	Insights        []string    `json:"insights"`
	Risks           []string    `json:"risks"`
	Chart           ChartSeries `json:"chart"`
}

// ChartSeries is a labelled time series used by the dashboard chart,
// typically monthly revenue and expenses.
type ChartSeries struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Dataset is one named series of points aligned with the chart labels.
type Dataset struct {
	Name   string    `json:"name"`
	Points []float64 `json:"points"`
}

// Validate checks the result carries the fields the dashboard needs.
func (a *AnalysisResult) Validate() error {
	if a.BusinessName == "" {
		return errors.New("business name is required")
	}
	if a.FundingCapacity < 0 {
		return errors.New("funding capacity must not be negative")
	}
	return nil
}

// Clone returns a deep copy of the result.
func (a *AnalysisResult) Clone() AnalysisResult {
	out := AnalysisResult{
		BusinessName:    a.BusinessName,
		FundingCapacity: a.FundingCapacity,
	}
	if len(a.Insights) > 0 {
		out.Insights = append([]string(nil), a.Insights...)
	}
	if len(a.Risks) > 0 {
		out.Risks = append([]string(nil), a.Risks...)
	}
	if len(a.Chart.Labels) > 0 {
		out.Chart.Labels = append([]string(nil), a.Chart.Labels...)
	}
	for _, ds := range a.Chart.Datasets {
		out.Chart.Datasets = append(out.Chart.Datasets, Dataset{
			Name:   ds.Name,
			Points: append([]float64(nil), ds.Points...),
		})
	}
	return out
}
