package reporting

import (
	"fmt"
	"strings"

	"github.com/jconnelly/underwriting-ai-agent-demos/internal/models"
)

// InterpretAgreement returns a plain-language label for an agreement rate
// given as a percentage.
func InterpretAgreement(rate float64) string {
	switch {
	case rate >= 95:
		return "Near-identical (>=95%)"
	case rate >= 85:
		return "High (85-95%)"
	case rate >= 70:
		return "Moderate (70-85%)"
	default:
		return "Low (<70%)"
	}
}

// InterpretRisk explains what a risk level asks of the reader.
func InterpretRisk(level models.RiskLevel) string {
	switch level {
	case models.RiskHigh:
		return "High risk: roll out variant B gradually and review disagreements first."
	case models.RiskMedium:
		return "Medium risk: variant B changes outcomes noticeably; monitor closely after rollout."
	case models.RiskLow:
		return "Low risk: variant B behaves much like variant A."
	}
	return fmt.Sprintf("Unknown risk level %q.", level)
}

// InterpretSignificance summarizes how many tests found a difference.
func InterpretSignificance(tests []models.StatisticalTest) string {
	if len(tests) == 0 {
		return "No statistical tests were run."
	}
	var significant []string
	for _, t := range tests {
		if t.IsSignificant {
			significant = append(significant, t.TestName)
		}
	}
	if len(significant) == 0 {
		return fmt.Sprintf("None of %d tests found a significant difference.", len(tests))
	}
	return fmt.Sprintf("%d of %d tests found a significant difference: %s.",
		len(significant), len(tests), strings.Join(significant, ", "))
}

// FormatSummaryReport produces a plain-language summary of every comparison
// in a report.
func FormatSummaryReport(r *Report) string {
	var b strings.Builder

	b.WriteString("=== Interpretation ===\n\n")
	fmt.Fprintf(&b, "Sample size: %d applicants, confidence level %.0f%%\n",
		r.TestConfiguration.SampleSize, r.TestConfiguration.ConfidenceLevel*100)

	keys := r.Keys()
	if len(keys) == 0 {
		b.WriteString("\nNo comparisons recorded.\n")
		return b.String()
	}

	for _, key := range keys {
		cr := r.TestResults[key]
		b.WriteString("\n")
		b.WriteString(key)
		b.WriteString("\n")
		if cr.Metrics != nil {
			fmt.Fprintf(&b, "  Agreement: %.1f%% (%s)\n", cr.Metrics.AgreementRate, InterpretAgreement(cr.Metrics.AgreementRate))
		}
		fmt.Fprintf(&b, "  %s\n", InterpretSignificance(cr.StatisticalSignificance))
		if cr.BusinessImpact != nil {
			fmt.Fprintf(&b, "  %s\n", InterpretRisk(cr.BusinessImpact.RiskLevel))
			if len(cr.BusinessImpact.Recommendations) > 0 {
				fmt.Fprintf(&b, "  First recommendation: %s\n", cr.BusinessImpact.Recommendations[0])
			}
		}
	}

	return b.String()
}
