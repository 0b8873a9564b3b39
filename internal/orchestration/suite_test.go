package orchestration

import (
	"context"
	"errors"
	"testing"

	"github.com/jconnelly/underwriting-ai-agent-demos/internal/dataset"
	"github.com/jconnelly/underwriting-ai-agent-demos/internal/metrics"
	"github.com/jconnelly/underwriting-ai-agent-demos/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSuite(t *testing.T) {
	suite := DefaultSuite()
	require.Len(t, suite, 6)

	keys := make([]string, len(suite))
	for i, c := range suite {
		keys[i] = c.Key
	}
	assert.Equal(t, []string{
		"rules_standard_vs_conservative",
		"rules_standard_vs_liberal",
		"rules_conservative_vs_liberal",
		"prompts_conservative_vs_liberal",
		"prompts_balanced_vs_detailed",
		"prompts_detailed_vs_concise",
	}, keys)
	assert.Equal(t, SuiteComparison{Key: "prompts_balanced_vs_detailed", A: "prompt_balanced", B: "prompt_detailed"}, suite[4])
}

func TestRunSuite_ClearsBetweenComparisons(t *testing.T) {
	applicants := dataset.SampleApplicants()
	runner := NewRunner(newTestRegistry(t), nil)

	var seen []string
	err := runner.RunSuite(context.Background(), applicants, DefaultSuite(), func(c SuiteComparison) error {
		seen = append(seen, c.Key)
		assert.Equal(t, 2*len(applicants), runner.Log().Len(), c.Key)
		assert.Len(t, runner.Log().ForVariant(c.A), len(applicants))

		m, err := metrics.ComputeMetrics(runner.Log(), c.A, c.B)
		require.NoError(t, err)
		assert.Equal(t, len(applicants), m.TotalTests)
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, seen, 6)
}

func TestRunSuite_StopsOnError(t *testing.T) {
	runner := NewRunner(newTestRegistry(t), nil)
	suite := []SuiteComparison{
		RulesComparison("standard", "liberal"),
		RulesComparison("standard", "aggressive"),
		RulesComparison("standard", "conservative"),
	}

	calls := 0
	err := runner.RunSuite(context.Background(), dataset.SampleApplicants(), suite, func(SuiteComparison) error {
		calls++
		return nil
	})
	require.ErrorIs(t, err, registry.ErrUnknownVariant)
	assert.Contains(t, err.Error(), "rules_standard_vs_aggressive")
	assert.Equal(t, 1, calls)

	stop := errors.New("disk full")
	err = runner.RunSuite(context.Background(), dataset.SampleApplicants(), suite, func(SuiteComparison) error {
		return stop
	})
	require.ErrorIs(t, err, stop)
	assert.Contains(t, err.Error(), "rules_standard_vs_liberal")
}
