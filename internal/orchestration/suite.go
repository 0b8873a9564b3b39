package orchestration

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jconnelly/underwriting-ai-agent-demos/internal/models"
	"github.com/jconnelly/underwriting-ai-agent-demos/internal/registry"
)

// SuiteComparison is one variant pair of a suite run.
type SuiteComparison struct {
	// Key names the comparison in the report.
	Key string
	A   string
	B   string
}

// RulesComparison pairs two rule variants.
func RulesComparison(a, b string) SuiteComparison {
	return SuiteComparison{Key: fmt.Sprintf("rules_%s_vs_%s", a, b), A: a, B: b}
}

// PromptsComparison pairs two prompt variants given by template name.
func PromptsComparison(a, b string) SuiteComparison {
	return SuiteComparison{
		Key: fmt.Sprintf("prompts_%s_vs_%s", a, b),
		A:   registry.PromptVariantID(a),
		B:   registry.PromptVariantID(b),
	}
}

// DefaultSuite is the comprehensive comparison set over the built-in
// catalog: every pair of rule variants, then three prompt pairs.
func DefaultSuite() []SuiteComparison {
	return []SuiteComparison{
		RulesComparison("standard", "conservative"),
		RulesComparison("standard", "liberal"),
		RulesComparison("conservative", "liberal"),
		PromptsComparison("conservative", "liberal"),
		PromptsComparison("balanced", "detailed"),
		PromptsComparison("detailed", "concise"),
	}
}

// SuiteFunc receives the log of a finished comparison before it is cleared.
type SuiteFunc func(c SuiteComparison) error

// RunSuite runs each comparison over the same applicants. The log is
// cleared before every comparison, so it holds only that comparison's
// results when onDone is called. An error from CompareBatch or onDone stops
// the suite.
func (r *Runner) RunSuite(ctx context.Context, applicants []*models.Applicant, suite []SuiteComparison, onDone SuiteFunc) error {
	for i, c := range suite {
		slog.Info("running suite comparison", "key", c.Key, "num", i+1, "total", len(suite))

		r.log.Clear()
		if _, err := r.CompareBatch(ctx, applicants, c.A, c.B); err != nil {
			return fmt.Errorf("%s: %w", c.Key, err)
		}
		if onDone != nil {
			if err := onDone(c); err != nil {
				return fmt.Errorf("%s: %w", c.Key, err)
			}
		}
	}
	return nil
}
