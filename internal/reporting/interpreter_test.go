package reporting

import (
	"strings"
	"testing"

	"github.com/jconnelly/underwriting-ai-agent-demos/internal/impact"
	"github.com/jconnelly/underwriting-ai-agent-demos/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestInterpretAgreement(t *testing.T) {
	tests := []struct {
		name string
		rate float64
		want string
	}{
		{"identical", 100, "Near-identical (>=95%)"},
		{"identical boundary", 95, "Near-identical (>=95%)"},
		{"high", 94.9, "High (85-95%)"},
		{"high boundary", 85, "High (85-95%)"},
		{"moderate", 80, "Moderate (70-85%)"},
		{"moderate boundary", 70, "Moderate (70-85%)"},
		{"low", 69.9, "Low (<70%)"},
		{"zero", 0, "Low (<70%)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InterpretAgreement(tt.rate))
		})
	}
}

func TestInterpretRisk(t *testing.T) {
	tests := []struct {
		level    models.RiskLevel
		contains string
	}{
		{models.RiskHigh, "gradually"},
		{models.RiskMedium, "monitor"},
		{models.RiskLow, "much like"},
		{"Severe", `"Severe"`},
	}
	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			assert.Contains(t, InterpretRisk(tt.level), tt.contains)
		})
	}
}

func TestInterpretSignificance(t *testing.T) {
	assert.Equal(t, "No statistical tests were run.", InterpretSignificance(nil))

	tests := []models.StatisticalTest{
		{TestName: "Chi-Square"},
		{TestName: "T-Test", IsSignificant: true},
	}
	assert.Equal(t, "1 of 2 tests found a significant difference: T-Test.", InterpretSignificance(tests))
	assert.Equal(t, "None of 1 tests found a significant difference.", InterpretSignificance(tests[:1]))
}

func TestFormatSummaryReport(t *testing.T) {
	report := FormatSummaryReport(fixtureReport(t))

	assert.Contains(t, report, "=== Interpretation ===")
	assert.Contains(t, report, "Sample size: 6 applicants, confidence level 95%")
	assert.Contains(t, report, "rules_standard_vs_liberal")
	assert.Contains(t, report, "Agreement: 33.3% (Low (<70%))")
	assert.Contains(t, report, "1 of 5 tests found a significant difference: Independent T-Test (Processing Time).")
	assert.Contains(t, report, "High risk")
	assert.Contains(t, report, "First recommendation: "+impact.RecommendGradualRollout)
}

func TestFormatSummaryReport_Empty(t *testing.T) {
	report := FormatSummaryReport(&Report{TestResults: map[string]*ComparisonReport{}})
	assert.True(t, strings.Contains(report, "Interpretation"))
	assert.Contains(t, report, "No comparisons recorded.")
}
