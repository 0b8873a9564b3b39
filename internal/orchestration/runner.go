package orchestration

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jconnelly/underwriting-ai-agent-demos/internal/metrics"
	"github.com/jconnelly/underwriting-ai-agent-demos/internal/models"
	"github.com/jconnelly/underwriting-ai-agent-demos/internal/results"
	"github.com/jconnelly/underwriting-ai-agent-demos/internal/underwriting"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("github.com/jconnelly/underwriting-ai-agent-demos/internal/orchestration")

// Variants resolves variant ids to engines. *registry.Registry satisfies it.
type Variants interface {
	Lookup(id string) (*underwriting.Engine, error)
}

// Recorder observes every result the runner produces.
type Recorder interface {
	Observe(result *models.EvaluationResult)
}

// Runner drives engines over applicants and appends every result to its log.
type Runner struct {
	variants Variants
	log      *results.Log

	// Parallel evaluation; 0 or 1 means strictly sequential
	workers int

	recorder Recorder

	// Progress tracking
	progressMu sync.Mutex
	listeners  []ProgressListener
}

// ProgressListener receives progress updates
type ProgressListener func(event ProgressEvent)

// EventType represents the type of progress event
type EventType string

// EventType constants
const (
	EventBatchStart        EventType = "batch_start"
	EventBatchComplete     EventType = "batch_complete"
	EventBatchStopped      EventType = "batch_stopped"
	EventApplicantStart    EventType = "applicant_start"
	EventApplicantComplete EventType = "applicant_complete"
)

// ProgressEvent represents a progress update
type ProgressEvent struct {
	EventType   EventType
	ApplicantID string
	Num         int
	Total       int
	VariantA    string
	VariantB    string
	Details     map[string]any
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithParallel evaluates up to workers applicants at once. Results keep
// input order regardless.
func WithParallel(workers int) RunnerOption {
	return func(r *Runner) {
		r.workers = workers
	}
}

// WithRecorder reports each result to rec as it is produced.
func WithRecorder(rec Recorder) RunnerOption {
	return func(r *Runner) {
		r.recorder = rec
	}
}

// NewRunner creates a runner that appends to log. A nil log gets a fresh one.
func NewRunner(variants Variants, log *results.Log, opts ...RunnerOption) *Runner {
	if log == nil {
		log = results.NewLog()
	}
	r := &Runner{
		variants:  variants,
		log:       log,
		listeners: []ProgressListener{},
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Log returns the log the runner appends to.
func (r *Runner) Log() *results.Log {
	return r.log
}

// OnProgress registers a progress listener
func (r *Runner) OnProgress(listener ProgressListener) {
	r.progressMu.Lock()
	defer r.progressMu.Unlock()
	r.listeners = append(r.listeners, listener)
}

func (r *Runner) notifyProgress(event ProgressEvent) {
	r.progressMu.Lock()
	listeners := make([]ProgressListener, len(r.listeners))
	copy(listeners, r.listeners)
	r.progressMu.Unlock()

	for _, listener := range listeners {
		listener(event)
	}
}

func (r *Runner) parallel() bool {
	return r.workers > 1
}

// Compare runs one applicant through variants a and b, in that order, and
// appends both results to the log. The only errors are unknown variants.
func (r *Runner) Compare(ctx context.Context, applicant *models.Applicant, a, b string) (models.ComparisonPair, error) {
	engineA, engineB, err := r.lookupPair(a, b)
	if err != nil {
		return models.ComparisonPair{}, err
	}
	pair := r.comparePair(ctx, applicant, engineA, engineB)
	r.log.Append(pair.A, pair.B)
	return pair, nil
}

// CompareBatch compares every applicant under variants a and b. pairs[i]
// always belongs to applicants[i], and results reach the log in input
// order. A failed evaluation never stops the batch; cancellation does.
// On cancellation a sequential run returns the pairs completed so far,
// while a parallel run returns none.
func (r *Runner) CompareBatch(ctx context.Context, applicants []*models.Applicant, a, b string) ([]models.ComparisonPair, error) {
	engineA, engineB, err := r.lookupPair(a, b)
	if err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "orchestration.CompareBatch", trace.WithAttributes(
		attribute.String("variant_a", a),
		attribute.String("variant_b", b),
		attribute.Int("applicants", len(applicants)),
	))
	defer span.End()

	total := len(applicants)
	r.notifyProgress(ProgressEvent{EventType: EventBatchStart, Total: total, VariantA: a, VariantB: b})
	start := time.Now()

	pairs := make([]models.ComparisonPair, total)
	done, err := r.forEach(ctx, total, func(ctx context.Context, i int) {
		applicant := applicants[i]
		r.notifyProgress(ProgressEvent{
			EventType:   EventApplicantStart,
			ApplicantID: applicantID(applicant),
			Num:         i + 1,
			Total:       total,
			VariantA:    a,
			VariantB:    b,
		})

		pair := r.comparePair(ctx, applicant, engineA, engineB)
		pairs[i] = pair
		if !r.parallel() {
			r.log.Append(pair.A, pair.B)
		}

		r.notifyProgress(ProgressEvent{
			EventType:   EventApplicantComplete,
			ApplicantID: applicantID(applicant),
			Num:         i + 1,
			Total:       total,
			VariantA:    a,
			VariantB:    b,
			Details: map[string]any{
				"decision_a": pair.A.Decision,
				"decision_b": pair.B.Decision,
				"agree":      pair.A.Decision == pair.B.Decision,
				"failed":     pair.A.Failed() || pair.B.Failed(),
			},
		})
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.notifyProgress(ProgressEvent{
			EventType: EventBatchStopped,
			Num:       done,
			Total:     total,
			VariantA:  a,
			VariantB:  b,
			Details:   map[string]any{"reason": err.Error()},
		})
		if r.parallel() {
			return nil, err
		}
		return pairs[:done], err
	}

	if r.parallel() {
		for _, p := range pairs {
			r.log.Append(p.A, p.B)
		}
	}

	r.notifyProgress(ProgressEvent{
		EventType: EventBatchComplete,
		Num:       total,
		Total:     total,
		VariantA:  a,
		VariantB:  b,
		Details:   map[string]any{"duration_ms": time.Since(start).Milliseconds()},
	})
	return pairs, nil
}

// AnalyzeVariant runs every applicant through one variant, appends the
// results to the log and summarizes them.
func (r *Runner) AnalyzeVariant(ctx context.Context, applicants []*models.Applicant, variant string) (*models.VariantSummary, error) {
	engine, err := r.variants.Lookup(variant)
	if err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "orchestration.AnalyzeVariant", trace.WithAttributes(
		attribute.String("variant", variant),
		attribute.Int("applicants", len(applicants)),
	))
	defer span.End()

	total := len(applicants)
	r.notifyProgress(ProgressEvent{EventType: EventBatchStart, Total: total, VariantA: variant})

	out := make([]*models.EvaluationResult, total)
	done, err := r.forEach(ctx, total, func(ctx context.Context, i int) {
		res := r.decide(ctx, engine, applicants[i])
		out[i] = res
		r.notifyProgress(ProgressEvent{
			EventType:   EventApplicantComplete,
			ApplicantID: res.ApplicantID,
			Num:         i + 1,
			Total:       total,
			VariantA:    variant,
			Details:     map[string]any{"decision_a": res.Decision, "failed": res.Failed()},
		})
	})
	r.log.Append(out[:done]...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	r.notifyProgress(ProgressEvent{EventType: EventBatchComplete, Num: total, Total: total, VariantA: variant})
	return Summarize(variant, out), nil
}

// Summarize builds a variant summary from results already produced.
func Summarize(variant string, rs []*models.EvaluationResult) *models.VariantSummary {
	errCount := 0
	for _, res := range rs {
		if res.Failed() {
			errCount++
		}
	}
	return &models.VariantSummary{
		VariantID:           variant,
		TotalTests:          len(rs),
		DecisionCounts:      metrics.Counts(rs),
		DecisionRates:       metrics.Rates(rs),
		AvgProcessingTimeMs: metrics.MeanProcessingTime(rs),
		ErrorCount:          errCount,
		ErrorRate:           metrics.ErrorRate(rs),
		Results:             rs,
	}
}

func (r *Runner) lookupPair(a, b string) (*underwriting.Engine, *underwriting.Engine, error) {
	engineA, err := r.variants.Lookup(a)
	if err != nil {
		return nil, nil, fmt.Errorf("variant A: %w", err)
	}
	engineB, err := r.variants.Lookup(b)
	if err != nil {
		return nil, nil, fmt.Errorf("variant B: %w", err)
	}
	return engineA, engineB, nil
}

// comparePair evaluates both variants one after the other on the same
// applicant.
func (r *Runner) comparePair(ctx context.Context, applicant *models.Applicant, a, b *underwriting.Engine) models.ComparisonPair {
	resA := r.decide(ctx, a, applicant)
	resB := r.decide(ctx, b, applicant)
	return models.ComparisonPair{A: resA, B: resB}
}

func (r *Runner) decide(ctx context.Context, engine *underwriting.Engine, applicant *models.Applicant) *models.EvaluationResult {
	res := engine.Decide(ctx, applicant)
	if r.recorder != nil {
		r.recorder.Observe(res)
	}
	return res
}

// forEach calls fn for indexes 0..n-1. Sequentially it stops before the
// first index reached after ctx is done and reports how many completed.
// In parallel it runs up to r.workers calls at once.
func (r *Runner) forEach(ctx context.Context, n int, fn func(ctx context.Context, i int)) (int, error) {
	if !r.parallel() {
		for i := range n {
			if err := ctx.Err(); err != nil {
				return i, err
			}
			fn(ctx, i)
		}
		return n, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i := range n {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn(gctx, i)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		slog.Warn("parallel batch stopped", "error", err)
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return n, nil
}

func applicantID(a *models.Applicant) string {
	if a == nil {
		return ""
	}
	return a.ApplicantID
}
