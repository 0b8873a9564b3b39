// Package underwriting turns one applicant into one decision for one
// variant: it renders rules and applicant data as text, hands both to a
// collaborator and parses the answer.
package underwriting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jconnelly/underwriting-ai-agent-demos/internal/models"
	"github.com/jconnelly/underwriting-ai-agent-demos/internal/rules"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/jconnelly/underwriting-ai-agent-demos/internal/underwriting")

// SystemErrorPrefix starts the reason of every result produced by a failed
// evaluation.
const SystemErrorPrefix = "System error: "

// Engine decides applicants for a single variant. It owns its rule text
// and collaborator exclusively and is safe for concurrent use as long as
// the collaborator is.
type Engine struct {
	variantID    string
	rulesText    string
	collaborator Collaborator
	now          func() time.Time
	timeout      time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock used for timestamps and for the reference date
// of applicant text.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithTimeout bounds each collaborator call. Zero means no bound.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// NewEngine creates an engine for variantID. The rule text is rendered once.
func NewEngine(variantID string, rs *rules.RuleSet, collaborator Collaborator, opts ...Option) *Engine {
	e := &Engine{
		variantID:    variantID,
		rulesText:    rs.Text(),
		collaborator: collaborator,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// VariantID returns the variant this engine decides for.
func (e *Engine) VariantID() string {
	return e.variantID
}

// RulesText returns the rendered rule text.
func (e *Engine) RulesText() string {
	return e.rulesText
}

// Decide evaluates one applicant. It never returns an error: any failure,
// including a timeout or a panic in the collaborator, becomes an ADJUDICATE
// result with the error recorded.
func (e *Engine) Decide(ctx context.Context, applicant *models.Applicant) (result *models.EvaluationResult) {
	applicantID := ""
	if applicant != nil {
		applicantID = applicant.ApplicantID
	}

	ctx, span := tracer.Start(ctx, "underwriting.Decide",
		trace.WithAttributes(
			attribute.String("variant_id", e.variantID),
			attribute.String("applicant_id", applicantID),
		),
	)
	defer span.End()

	ref := e.now()
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			result = e.failure(span, applicantID, ref, start, fmt.Errorf("collaborator panic: %v", r))
		}
	}()

	if applicant == nil {
		return e.failure(span, applicantID, ref, start, errors.New("nil applicant"))
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	text, err := e.collaborator.Invoke(ctx, e.rulesText, FormatApplicant(applicant, ref))
	if err != nil {
		return e.failure(span, applicantID, ref, start, err)
	}

	parsed := ParseResponse(text)

	result = &models.EvaluationResult{
		ApplicantID:      applicantID,
		VariantID:        e.variantID,
		Decision:         parsed.Decision,
		Reason:           parsed.Reason,
		TriggeredRules:   parsed.TriggeredRules,
		RiskFactors:      parsed.RiskFactors,
		ProcessingTimeMs: elapsedMs(start),
		Timestamp:        ref,
	}
	if !parsed.Matched {
		result.RawResponse = text
		slog.Debug("no decision label in response", "applicant_id", applicantID, "variant_id", e.variantID, "response", text)
	}

	span.SetAttributes(attribute.String("decision", string(result.Decision)))
	return result
}

func (e *Engine) failure(span trace.Span, applicantID string, ref, start time.Time, err error) *models.EvaluationResult {
	slog.Warn("evaluation failed", "applicant_id", applicantID, "variant_id", e.variantID, "error", err)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	return &models.EvaluationResult{
		ApplicantID:      applicantID,
		VariantID:        e.variantID,
		Decision:         models.DecisionAdjudicate,
		Reason:           SystemErrorPrefix + err.Error(),
		TriggeredRules:   []string{},
		RiskFactors:      []string{models.SystemErrorFactor},
		ProcessingTimeMs: elapsedMs(start),
		Timestamp:        ref,
		Error:            err.Error(),
	}
}

func elapsedMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
