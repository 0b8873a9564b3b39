package reporting

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jconnelly/underwriting-ai-agent-demos/internal/models"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// MaxListedDisagreements caps the disagreement table of each comparison.
const MaxListedDisagreements = 10

var numbers = message.NewPrinter(language.English)

// SignedCount formats n with thousands separators and an explicit sign.
func SignedCount(n int) string {
	if n >= 0 {
		return "+" + numbers.Sprintf("%d", n)
	}
	return numbers.Sprintf("%d", n)
}

// SignedAmount formats a currency amount rounded to whole units.
func SignedAmount(v float64) string {
	if v >= 0 {
		return "$+" + numbers.Sprintf("%.0f", v)
	}
	return "$-" + numbers.Sprintf("%.0f", -v)
}

// Count formats n with thousands separators.
func Count(n int) string {
	return numbers.Sprintf("%d", n)
}

// Markdown renders the report as a Markdown document with one section per
// comparison.
func Markdown(r *Report) string {
	var b strings.Builder

	b.WriteString("# Underwriting A/B Test Report\n\n")
	fmt.Fprintf(&b, "- Run: `%s`\n", r.RunID)
	fmt.Fprintf(&b, "- Timestamp: %s\n", r.TestSuiteTimestamp.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "- Sample size: %d\n", r.TestConfiguration.SampleSize)
	fmt.Fprintf(&b, "- Confidence level: %.0f%%\n", r.TestConfiguration.ConfidenceLevel*100)
	fmt.Fprintf(&b, "- Monthly applications: %s\n", Count(r.TestConfiguration.MonthlyApplications))

	for _, key := range r.Keys() {
		writeComparison(&b, key, r.TestResults[key])
	}
	return b.String()
}

func writeComparison(b *strings.Builder, key string, cr *ComparisonReport) {
	fmt.Fprintf(b, "\n## %s\n", key)

	if m := cr.Metrics; m != nil {
		fmt.Fprintf(b, "\nVariant A `%s` vs variant B `%s`: %d applicants, %.1f%% agreement.\n",
			m.VariantAID, m.VariantBID, m.TotalTests, m.AgreementRate)

		b.WriteString("\n### Decision distribution\n\n")
		b.WriteString("| Decision | Variant A | Variant B | Change |\n")
		b.WriteString("|---|---:|---:|---:|\n")
		for _, d := range models.Decisions {
			ra, rb := m.DecisionRatesA.Rate(d), m.DecisionRatesB.Rate(d)
			fmt.Fprintf(b, "| %s | %.1f%% | %.1f%% | %+.1f%% |\n", d, ra, rb, rb-ra)
		}

		b.WriteString("\n### Performance\n\n")
		b.WriteString("| Metric | Variant A | Variant B |\n")
		b.WriteString("|---|---:|---:|\n")
		fmt.Fprintf(b, "| Avg processing time | %.1fms | %.1fms |\n", m.Performance.AvgProcessingTimeA, m.Performance.AvgProcessingTimeB)
		fmt.Fprintf(b, "| Error rate | %.1f%% | %.1f%% |\n", m.Performance.ErrorRateA, m.Performance.ErrorRateB)
		if ci := cr.LatencyDifference; ci != nil && ci.ConfidenceLevel > 0 {
			fmt.Fprintf(b, "\nLatency difference (B - A): %.1fms, %.0f%% CI [%.1f, %.1f]\n",
				ci.Mean, ci.ConfidenceLevel*100, ci.Lower, ci.Upper)
		}
	}

	if len(cr.StatisticalSignificance) > 0 {
		b.WriteString("\n### Statistical tests\n\n")
		b.WriteString("| Test | Statistic | p-value | Significant | Effect size |\n")
		b.WriteString("|---|---:|---:|:---:|---:|\n")
		for _, t := range cr.StatisticalSignificance {
			sig := "no"
			if t.IsSignificant {
				sig = "**yes**"
			}
			fmt.Fprintf(b, "| %s | %.4f | %.4f | %s | %.3f |\n", t.TestName, t.Statistic, t.PValue, sig, t.EffectSize)
		}
		b.WriteString("\n")
		for _, t := range cr.StatisticalSignificance {
			fmt.Fprintf(b, "- %s\n", t.Interpretation)
		}
	}

	if bi := cr.BusinessImpact; bi != nil {
		b.WriteString("\n### Business impact\n\n")
		b.WriteString("| Projection | Value |\n")
		b.WriteString("|---|---:|\n")
		fmt.Fprintf(b, "| Monthly application volume | %s |\n", Count(bi.EstimatedMonthlyApplications))
		fmt.Fprintf(b, "| Accept rate | %+.1f%% (%s monthly) |\n", bi.AcceptRateChange, SignedCount(bi.AdditionalAcceptsMonthly))
		fmt.Fprintf(b, "| Deny rate | %+.1f%% (%s monthly) |\n", bi.DenyRateChange, SignedCount(bi.AdditionalDeniesMonthly))
		fmt.Fprintf(b, "| Adjudicate rate | %+.1f%% (%s monthly) |\n", bi.AdjudicateRateChange, SignedCount(bi.AdditionalAdjudicationsMonthly))
		fmt.Fprintf(b, "| Loss ratio change | %+.3f |\n", bi.EstimatedLossRatioChange)
		fmt.Fprintf(b, "| Processing cost change | %s/month |\n", SignedAmount(bi.EstimatedProcessingCostChange))
		fmt.Fprintf(b, "| Market share impact | %+.2f%% |\n", bi.EstimatedMarketShareImpact)

		fmt.Fprintf(b, "\nRisk level: **%s**\n", bi.RiskLevel)
		if len(bi.RiskFactors) > 0 {
			b.WriteString("\nRisk factors:\n\n")
			for _, f := range bi.RiskFactors {
				fmt.Fprintf(b, "- %s\n", f)
			}
		}
		b.WriteString("\nRecommendations:\n\n")
		for _, rec := range bi.Recommendations {
			fmt.Fprintf(b, "- %s\n", rec)
		}
	}

	if m := cr.Metrics; m != nil && len(m.Disagreements) > 0 {
		b.WriteString("\n### Disagreements\n\n")
		b.WriteString("| Applicant | Variant A | Variant B |\n")
		b.WriteString("|---|---|---|\n")
		for i, d := range m.Disagreements {
			if i == MaxListedDisagreements {
				fmt.Fprintf(b, "\n... and %d more disagreements\n", len(m.Disagreements)-MaxListedDisagreements)
				break
			}
			fmt.Fprintf(b, "| %s | %s | %s |\n", d.ApplicantID, d.DecisionA, d.DecisionB)
		}
	}
}

// HTML renders the Markdown report to a standalone HTML fragment.
func HTML(r *Report) ([]byte, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	var buf bytes.Buffer
	if err := md.Convert([]byte(Markdown(r)), &buf); err != nil {
		return nil, fmt.Errorf("rendering HTML: %w", err)
	}
	return buf.Bytes(), nil
}
