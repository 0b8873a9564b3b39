// Package reporting assembles comparison results into an exportable report
// and renders it for people.
package reporting

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jconnelly/underwriting-ai-agent-demos/internal/impact"
	"github.com/jconnelly/underwriting-ai-agent-demos/internal/metrics"
	"github.com/jconnelly/underwriting-ai-agent-demos/internal/models"
	"github.com/jconnelly/underwriting-ai-agent-demos/internal/statistics"
)

// Configuration records the settings a report was produced with.
type Configuration struct {
	SampleSize          int     `json:"sample_size"`
	ConfidenceLevel     float64 `json:"confidence_level"`
	MonthlyApplications int     `json:"monthly_applications"`
}

// ComparisonReport holds everything computed for one variant pair.
type ComparisonReport struct {
	Metrics                 *models.ComparisonMetrics      `json:"metrics"`
	StatisticalSignificance []models.StatisticalTest       `json:"statistical_significance"`
	BusinessImpact          *models.BusinessImpactAnalysis `json:"business_impact"`

	DecisionAgreement []metrics.ClassMetrics         `json:"decision_agreement,omitempty"`
	LatencyDifference *statistics.ConfidenceInterval `json:"latency_difference_ci,omitempty"`
}

// Report is the exported document. TestOrder lists the keys of TestResults
// in the order they were added.
type Report struct {
	RunID              string                       `json:"run_id"`
	TestSuiteTimestamp time.Time                    `json:"test_suite_timestamp"`
	TestConfiguration  Configuration                `json:"test_configuration"`
	TestResults        map[string]*ComparisonReport `json:"test_results"`
	TestOrder          []string                     `json:"test_order,omitempty"`
}

// Keys returns the comparison keys in insertion order. Keys missing from
// TestOrder, as in reports written by other tools, follow sorted.
func (r *Report) Keys() []string {
	seen := make(map[string]bool, len(r.TestResults))
	keys := make([]string, 0, len(r.TestResults))
	for _, k := range r.TestOrder {
		if _, ok := r.TestResults[k]; ok && !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	var rest []string
	for k := range r.TestResults {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

// RulesKey names a rule comparison in a report.
func RulesKey(a, b string) string {
	return fmt.Sprintf("rules_%s_vs_%s", a, b)
}

// PromptsKey names a prompt comparison in a report.
func PromptsKey(a, b string) string {
	return fmt.Sprintf("prompts_%s_vs_%s", a, b)
}

// ComparisonKey names an arbitrary comparison in a report.
func ComparisonKey(a, b string) string {
	return fmt.Sprintf("%s_vs_%s", a, b)
}

// Builder accumulates comparisons into a Report.
type Builder struct {
	analyzer   *statistics.Analyzer
	calculator *impact.Calculator
	seed       int64
	report     *Report
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithTimestamp sets the report timestamp.
func WithTimestamp(t time.Time) BuilderOption {
	return func(b *Builder) { b.report.TestSuiteTimestamp = t }
}

// WithRunID sets the report run id instead of a random one.
func WithRunID(id string) BuilderOption {
	return func(b *Builder) { b.report.RunID = id }
}

// WithBootstrapSeed makes the latency interval reproducible.
func WithBootstrapSeed(seed int64) BuilderOption {
	return func(b *Builder) { b.seed = seed }
}

// NewBuilder starts a report for a batch of sampleSize applicants.
func NewBuilder(analyzer *statistics.Analyzer, calculator *impact.Calculator, sampleSize int, opts ...BuilderOption) *Builder {
	b := &Builder{
		analyzer:   analyzer,
		calculator: calculator,
		seed:       -1,
		report: &Report{
			RunID:              uuid.NewString(),
			TestSuiteTimestamp: time.Now(),
			TestConfiguration: Configuration{
				SampleSize:          sampleSize,
				ConfidenceLevel:     analyzer.ConfidenceLevel(),
				MonthlyApplications: calculator.MonthlyApplications(),
			},
			TestResults: map[string]*ComparisonReport{},
		},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Analyze computes metrics, significance tests and impact for variants a
// and b from src without adding them to the report.
func (b *Builder) Analyze(src metrics.Source, variantA, variantB string) (*ComparisonReport, error) {
	m, err := metrics.ComputeMetrics(src, variantA, variantB)
	if err != nil {
		return nil, err
	}

	resultsA, resultsB := src.ForVariant(variantA), src.ForVariant(variantB)
	latency := statistics.BootstrapDiffCI(
		metrics.ProcessingTimes(resultsA, true),
		metrics.ProcessingTimes(resultsB, true),
		b.analyzer.ConfidenceLevel(),
		b.seed,
	)

	return &ComparisonReport{
		Metrics:                 m,
		StatisticalSignificance: b.analyzer.RunAll(resultsA, resultsB),
		BusinessImpact:          b.calculator.Calculate(m),
		DecisionAgreement:       metrics.ComputeDecisionAgreement(metrics.Intersect(resultsA, resultsB)),
		LatencyDifference:       &latency,
	}, nil
}

// Add analyzes a comparison and stores it under key. Adding an existing
// key replaces its entry and keeps its position.
func (b *Builder) Add(key string, src metrics.Source, variantA, variantB string) (*ComparisonReport, error) {
	cr, err := b.Analyze(src, variantA, variantB)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	if _, exists := b.report.TestResults[key]; !exists {
		b.report.TestOrder = append(b.report.TestOrder, key)
	}
	b.report.TestResults[key] = cr
	return cr, nil
}

// Report returns the report built so far.
func (b *Builder) Report() *Report {
	return b.report
}
