package orchestration

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jconnelly/underwriting-ai-agent-demos/internal/dataset"
	"github.com/jconnelly/underwriting-ai-agent-demos/internal/execution"
	"github.com/jconnelly/underwriting-ai-agent-demos/internal/metrics"
	"github.com/jconnelly/underwriting-ai-agent-demos/internal/models"
	"github.com/jconnelly/underwriting-ai-agent-demos/internal/registry"
	"github.com/jconnelly/underwriting-ai-agent-demos/internal/results"
	"github.com/jconnelly/underwriting-ai-agent-demos/internal/rules"
	"github.com/jconnelly/underwriting-ai-agent-demos/internal/underwriting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var refDate = time.Date(2025, time.January, 15, 12, 0, 0, 0, time.UTC)

func newTestRegistry(t testing.TB) *registry.Registry {
	t.Helper()
	reg := registry.New("../../config/rules", execution.NewMockEngine("mock"),
		underwriting.WithClock(func() time.Time { return refDate }))
	require.NoError(t, reg.RegisterAll(registry.DefaultConfigurations()))
	return reg
}

type collabFunc func(ctx context.Context, rulesText, applicantText string) (string, error)

func (f collabFunc) Invoke(ctx context.Context, rulesText, applicantText string) (string, error) {
	return f(ctx, rulesText, applicantText)
}

type variantMap map[string]*underwriting.Engine

func (m variantMap) Lookup(id string) (*underwriting.Engine, error) {
	e, ok := m[id]
	if !ok {
		return nil, registry.ErrUnknownVariant
	}
	return e, nil
}

type countingRecorder struct {
	n atomic.Int64
}

func (c *countingRecorder) Observe(*models.EvaluationResult) {
	c.n.Add(1)
}

func TestCompareBatch_StandardVsLiberal(t *testing.T) {
	applicants := dataset.SampleApplicants()
	runner := NewRunner(newTestRegistry(t), nil)

	pairs, err := runner.CompareBatch(context.Background(), applicants, "standard", "liberal")
	require.NoError(t, err)
	require.Len(t, pairs, len(applicants))
	for i, p := range pairs {
		assert.Equal(t, applicants[i].ApplicantID, p.A.ApplicantID)
		assert.Equal(t, applicants[i].ApplicantID, p.B.ApplicantID)
		assert.Equal(t, "standard", p.A.VariantID)
		assert.Equal(t, "liberal", p.B.VariantID)
	}
	assert.Equal(t, 12, runner.Log().Len())

	m, err := metrics.ComputeMetrics(runner.Log(), "standard", "liberal")
	require.NoError(t, err)
	assert.Equal(t, 6, m.TotalTests)
	assert.InDelta(t, 100.0/3, m.AgreementRate, 1e-9)
	assert.InDelta(t, 100.0/3, m.DecisionRatesA.Accept, 1e-9)
	assert.InDelta(t, 200.0/3, m.DecisionRatesB.Accept, 1e-9)
	require.Len(t, m.Disagreements, 4)
	assert.Equal(t, "APP003", m.Disagreements[0].ApplicantID)
}

func TestCompare_AppendsBothResults(t *testing.T) {
	runner := NewRunner(newTestRegistry(t), results.NewLog())
	applicant := dataset.SampleApplicants()[2]

	pair, err := runner.Compare(context.Background(), applicant, "standard", "conservative")
	require.NoError(t, err)
	assert.Equal(t, models.DecisionDeny, pair.A.Decision)
	assert.Equal(t, "conservative", pair.B.VariantID)

	all := runner.Log().All()
	require.Len(t, all, 2)
	assert.Same(t, pair.A, all[0])
	assert.Same(t, pair.B, all[1])
}

func TestCompareBatch_UnknownVariant(t *testing.T) {
	runner := NewRunner(newTestRegistry(t), nil)

	_, err := runner.CompareBatch(context.Background(), dataset.SampleApplicants(), "standard", "aggressive")
	require.ErrorIs(t, err, registry.ErrUnknownVariant)
	assert.Contains(t, err.Error(), "variant B")
	assert.Zero(t, runner.Log().Len())

	_, err = runner.AnalyzeVariant(context.Background(), dataset.SampleApplicants(), "aggressive")
	require.ErrorIs(t, err, registry.ErrUnknownVariant)
}

func TestCompareBatch_FailureDoesNotAbort(t *testing.T) {
	rs := &rules.RuleSet{}
	ok := collabFunc(func(context.Context, string, string) (string, error) {
		return "Decision: ACCEPT\nPrimary Reason: fine", nil
	})
	broken := collabFunc(func(context.Context, string, string) (string, error) {
		return "", errors.New("service unavailable")
	})
	variants := variantMap{
		"ok":     underwriting.NewEngine("ok", rs, ok),
		"broken": underwriting.NewEngine("broken", rs, broken),
	}

	for _, workers := range []int{0, 4} {
		runner := NewRunner(variants, nil, WithParallel(workers))
		pairs, err := runner.CompareBatch(context.Background(), dataset.SampleApplicants(), "ok", "broken")
		require.NoError(t, err)
		require.Len(t, pairs, 6)
		for _, p := range pairs {
			assert.Equal(t, models.DecisionAccept, p.A.Decision)
			assert.Equal(t, models.DecisionAdjudicate, p.B.Decision)
			assert.Contains(t, p.B.Error, "service unavailable")
			assert.Equal(t, []string{models.SystemErrorFactor}, p.B.RiskFactors)
		}

		m, err := metrics.ComputeMetrics(runner.Log(), "ok", "broken")
		require.NoError(t, err)
		assert.Equal(t, 100.0, m.Performance.ErrorRateB)
	}
}

func TestCompareBatch_ParallelMatchesSequential(t *testing.T) {
	applicants := dataset.SampleApplicants()
	reg := newTestRegistry(t)

	seq := NewRunner(reg, nil)
	_, err := seq.CompareBatch(context.Background(), applicants, "standard", "prompt_liberal")
	require.NoError(t, err)

	par := NewRunner(reg, nil, WithParallel(3))
	_, err = par.CompareBatch(context.Background(), applicants, "standard", "prompt_liberal")
	require.NoError(t, err)

	seqLog, parLog := seq.Log().All(), par.Log().All()
	require.Len(t, parLog, len(seqLog))
	for i := range seqLog {
		assert.Equal(t, seqLog[i].ApplicantID, parLog[i].ApplicantID)
		assert.Equal(t, seqLog[i].VariantID, parLog[i].VariantID)
		assert.Equal(t, seqLog[i].Decision, parLog[i].Decision)
	}
}

func TestCompareBatch_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	applicants := dataset.SampleApplicants()
	runner := NewRunner(newTestRegistry(t), nil)
	runner.OnProgress(func(e ProgressEvent) {
		if e.EventType == EventApplicantComplete && e.Num == 2 {
			cancel()
		}
	})

	pairs, err := runner.CompareBatch(ctx, applicants, "standard", "liberal")
	require.ErrorIs(t, err, context.Canceled)
	assert.Len(t, pairs, 2)
	assert.Equal(t, 4, runner.Log().Len())

	_, err = NewRunner(newTestRegistry(t), nil, WithParallel(2)).CompareBatch(ctx, applicants, "standard", "liberal")
	require.ErrorIs(t, err, context.Canceled)
}

func TestCompareBatch_ProgressAndRecorder(t *testing.T) {
	rec := &countingRecorder{}
	runner := NewRunner(newTestRegistry(t), nil, WithRecorder(rec), WithParallel(2))

	var mu sync.Mutex
	counts := map[EventType]int{}
	runner.OnProgress(func(e ProgressEvent) {
		mu.Lock()
		defer mu.Unlock()
		counts[e.EventType]++
	})

	_, err := runner.CompareBatch(context.Background(), dataset.SampleApplicants(), "standard", "conservative")
	require.NoError(t, err)

	assert.Equal(t, 1, counts[EventBatchStart])
	assert.Equal(t, 6, counts[EventApplicantStart])
	assert.Equal(t, 6, counts[EventApplicantComplete])
	assert.Equal(t, 1, counts[EventBatchComplete])
	assert.Equal(t, int64(12), rec.n.Load())
}

func TestAnalyzeVariant(t *testing.T) {
	runner := NewRunner(newTestRegistry(t), nil)

	summary, err := runner.AnalyzeVariant(context.Background(), dataset.SampleApplicants(), "standard")
	require.NoError(t, err)
	assert.Equal(t, "standard", summary.VariantID)
	assert.Equal(t, 6, summary.TotalTests)
	assert.Equal(t, map[models.Decision]int{
		models.DecisionAccept:     2,
		models.DecisionDeny:       2,
		models.DecisionAdjudicate: 2,
	}, summary.DecisionCounts)
	assert.InDelta(t, 100.0/3, summary.DecisionRates.Deny, 1e-9)
	assert.Zero(t, summary.ErrorCount)
	require.Len(t, summary.Results, 6)
	assert.Equal(t, "APP006", summary.Results[5].ApplicantID)
	assert.Equal(t, 6, runner.Log().Len())
}

func TestCompareBatch_OrderPreserved(t *testing.T) {
	reg := newTestRegistry(t)
	samples := dataset.SampleApplicants()

	rapid.Check(t, func(t *rapid.T) {
		idx := rapid.SliceOfN(rapid.IntRange(0, len(samples)-1), 0, 20).Draw(t, "indexes")
		workers := rapid.IntRange(0, 8).Draw(t, "workers")

		applicants := make([]*models.Applicant, len(idx))
		for i, j := range idx {
			applicants[i] = samples[j]
		}

		runner := NewRunner(reg, nil, WithParallel(workers))
		pairs, err := runner.CompareBatch(context.Background(), applicants, "conservative", "liberal")
		if err != nil {
			t.Fatalf("CompareBatch: %v", err)
		}
		if len(pairs) != len(applicants) {
			t.Fatalf("got %d pairs for %d applicants", len(pairs), len(applicants))
		}
		logged := runner.Log().All()
		for i, p := range pairs {
			want := applicants[i].ApplicantID
			if p.A.ApplicantID != want || p.B.ApplicantID != want {
				t.Fatalf("pair %d is for %s/%s, want %s", i, p.A.ApplicantID, p.B.ApplicantID, want)
			}
			if logged[2*i] != p.A || logged[2*i+1] != p.B {
				t.Fatalf("log entry %d out of order", i)
			}
		}
	})
}
