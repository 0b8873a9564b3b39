package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/jconnelly/underwriting-ai-agent-demos/internal/metrics"
	"github.com/jconnelly/underwriting-ai-agent-demos/internal/models"
	"github.com/jconnelly/underwriting-ai-agent-demos/internal/reporting"
	"github.com/jconnelly/underwriting-ai-agent-demos/internal/statistics"
	"github.com/mattn/go-runewidth"
)

const ruleWidth = 60

var (
	passMark  = color.New(color.FgGreen).SprintFunc()
	failMark  = color.New(color.FgRed).SprintFunc()
	warnMark  = color.New(color.FgYellow).SprintFunc()
	heading   = color.New(color.Bold).SprintFunc()
	riskColor = map[models.RiskLevel]func(a ...any) string{
		models.RiskLow:    passMark,
		models.RiskMedium: warnMark,
		models.RiskHigh:   failMark,
	}
)

// padRight pads s with spaces so its terminal display width reaches width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}

//nolint:errcheck // terminal output
func printRule(w io.Writer, ch string) {
	fmt.Fprintln(w, strings.Repeat(ch, ruleWidth))
}

//nolint:errcheck // terminal output
func printTitle(w io.Writer, title string) {
	printRule(w, "=")
	fmt.Fprintln(w, heading(title))
	printRule(w, "=")
}

// printComparison renders one comparison for a terminal.
//
//nolint:errcheck // terminal output
func printComparison(w io.Writer, key string, cr *reporting.ComparisonReport) {
	m := cr.Metrics
	printTitle(w, fmt.Sprintf("%s: %s vs %s", key, m.VariantAID, m.VariantBID))

	fmt.Fprintf(w, "Applicants compared: %d\n", m.TotalTests)
	fmt.Fprintf(w, "Agreement: %.1f%% (%s)\n\n", m.AgreementRate, reporting.InterpretAgreement(m.AgreementRate))

	fmt.Fprintln(w, heading("Decision distribution"))
	fmt.Fprintf(w, "  %s %10s %10s %10s\n", padRight("", 12), "A", "B", "B - A")
	for _, d := range models.Decisions {
		a, b := m.DecisionRatesA.Rate(d), m.DecisionRatesB.Rate(d)
		fmt.Fprintf(w, "  %s %9.1f%% %9.1f%% %+9.1f%%\n", padRight(string(d), 12), a, b, b-a)
	}
	fmt.Fprintln(w)

	p := m.Performance
	fmt.Fprintln(w, heading("Performance"))
	fmt.Fprintf(w, "  Avg processing time: %.1fms vs %.1fms\n", p.AvgProcessingTimeA, p.AvgProcessingTimeB)
	fmt.Fprintf(w, "  Error rate:          %.1f%% vs %.1f%%\n", p.ErrorRateA, p.ErrorRateB)
	if ci := cr.LatencyDifference; ci != nil {
		fmt.Fprintf(w, "  Latency difference:  %.1fms, %.0f%% CI [%.1f, %.1f]\n",
			ci.Mean, ci.ConfidenceLevel*100, ci.Lower, ci.Upper)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, heading("Statistical tests"))
	for _, t := range cr.StatisticalSignificance {
		var mark string
		switch {
		case t.Interpretation == statistics.InsufficientData:
			mark = warnMark("?")
		case t.IsSignificant:
			mark = failMark("✗")
		default:
			mark = passMark("✓")
		}
		fmt.Fprintf(w, "  %s %s p=%.4f effect=%.3f\n", mark, padRight(t.TestName, 42), t.PValue, t.EffectSize)
	}
	fmt.Fprintf(w, "  %s\n\n", reporting.InterpretSignificance(cr.StatisticalSignificance))

	if bi := cr.BusinessImpact; bi != nil {
		printImpact(w, bi)
	}

	if len(m.Disagreements) > 0 {
		fmt.Fprintln(w, heading("Disagreements"))
		for i, d := range m.Disagreements {
			if i == reporting.MaxListedDisagreements {
				fmt.Fprintf(w, "  ... and %d more\n", len(m.Disagreements)-i)
				break
			}
			fmt.Fprintf(w, "  %s  %s -> %s\n", padRight(d.ApplicantID, 10), d.DecisionA, d.DecisionB)
		}
		fmt.Fprintln(w)
	}
}

//nolint:errcheck // terminal output
func printImpact(w io.Writer, bi *models.BusinessImpactAnalysis) {
	fmt.Fprintf(w, "%s (%s applications/month)\n", heading("Business impact"), reporting.Count(bi.EstimatedMonthlyApplications))
	fmt.Fprintf(w, "  Accepts:        %s/month (%+.1f%%)\n", reporting.SignedCount(bi.AdditionalAcceptsMonthly), bi.AcceptRateChange)
	fmt.Fprintf(w, "  Denies:         %s/month (%+.1f%%)\n", reporting.SignedCount(bi.AdditionalDeniesMonthly), bi.DenyRateChange)
	fmt.Fprintf(w, "  Adjudications:  %s/month (%+.1f%%)\n", reporting.SignedCount(bi.AdditionalAdjudicationsMonthly), bi.AdjudicateRateChange)
	fmt.Fprintf(w, "  Loss ratio:     %+.2f%%\n", bi.EstimatedLossRatioChange)
	fmt.Fprintf(w, "  Processing:     %s/month\n", reporting.SignedAmount(bi.EstimatedProcessingCostChange))
	fmt.Fprintf(w, "  Market share:   %+.2f%%\n", bi.EstimatedMarketShareImpact)

	level := string(bi.RiskLevel)
	if paint, ok := riskColor[bi.RiskLevel]; ok {
		level = paint(level)
	}
	fmt.Fprintf(w, "  Risk level:     %s\n", level)
	for _, f := range bi.RiskFactors {
		fmt.Fprintf(w, "    - %s\n", f)
	}
	if len(bi.Recommendations) > 0 {
		fmt.Fprintln(w, "  Recommendations:")
		for _, r := range bi.Recommendations {
			fmt.Fprintf(w, "    - %s\n", r)
		}
	}
	fmt.Fprintln(w)
}

// printVariantSummary renders one variant's decisions with Wilson
// intervals for each decision share.
//
//nolint:errcheck // terminal output
func printVariantSummary(w io.Writer, s *models.VariantSummary, analyzer *statistics.Analyzer) {
	printTitle(w, "Variant analysis: "+s.VariantID)
	fmt.Fprintf(w, "Applicants: %d   Errors: %d (%.1f%%)\n", s.TotalTests, s.ErrorCount, s.ErrorRate)

	level := analyzer.ConfidenceLevel() * 100
	latency := statistics.BootstrapCI(metrics.ProcessingTimes(s.Results, true), analyzer.ConfidenceLevel(), -1)
	fmt.Fprintf(w, "Avg time: %.1fms   %.0f%% CI [%.1f, %.1f]\n\n", s.AvgProcessingTimeMs, level, latency.Lower, latency.Upper)

	for _, d := range models.Decisions {
		lo, hi := analyzer.WilsonInterval(s.DecisionCounts[d], s.TotalTests)
		fmt.Fprintf(w, "  %s %4d  %5.1f%%  %.0f%% CI [%.1f%%, %.1f%%]\n",
			padRight(string(d), 12), s.DecisionCounts[d], s.DecisionRates.Rate(d), level, lo*100, hi*100)
	}
	fmt.Fprintln(w)

	for _, r := range s.Results {
		decision := string(r.Decision)
		if r.Failed() {
			decision += " " + failMark("[error]")
		}
		fmt.Fprintf(w, "  %s %s %s\n", padRight(r.ApplicantID, 10), padRight(decision, 12), r.Reason)
	}
	fmt.Fprintln(w)
}

// printEvaluation renders a single decision with its supporting detail.
//
//nolint:errcheck // terminal output
func printEvaluation(w io.Writer, r *models.EvaluationResult) {
	paint := passMark
	switch r.Decision {
	case models.DecisionDeny:
		paint = failMark
	case models.DecisionAdjudicate:
		paint = warnMark
	}
	fmt.Fprintf(w, "%s  %s (%s, %.0fms)\n", r.ApplicantID, paint(string(r.Decision)), r.VariantID, r.ProcessingTimeMs)
	fmt.Fprintf(w, "  Reason: %s\n", r.Reason)
	if len(r.TriggeredRules) > 0 {
		fmt.Fprintf(w, "  Triggered rules: %s\n", strings.Join(r.TriggeredRules, ", "))
	}
	if len(r.RiskFactors) > 0 {
		fmt.Fprintf(w, "  Risk factors: %s\n", strings.Join(r.RiskFactors, ", "))
	}
	if r.Failed() {
		fmt.Fprintf(w, "  %s %s\n", failMark("Error:"), r.Error)
	}
}

// printConfigurations lists registered variants.
//
//nolint:errcheck // terminal output
func printConfigurations(w io.Writer, cfgs []models.TestConfiguration) {
	idWidth := len("ID")
	for _, c := range cfgs {
		idWidth = max(idWidth, runewidth.StringWidth(c.ID))
	}
	idWidth += 2

	fmt.Fprintf(w, "%s%s%s\n", padRight("ID", idWidth), padRight("RULES", 38), "PROMPT")
	for _, c := range cfgs {
		prompt := c.PromptTemplate
		if prompt == "" {
			prompt = "-"
		}
		fmt.Fprintf(w, "%s%s%s\n", padRight(c.ID, idWidth), padRight(c.RulesFile, 38), prompt)
		if c.Description != "" {
			fmt.Fprintf(w, "%s%s\n", padRight("", idWidth), c.Description)
		}
	}
}
