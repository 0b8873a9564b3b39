package metrics

import (
	"errors"
	"fmt"

	"github.com/jconnelly/underwriting-ai-agent-demos/internal/models"
)

// ErrInsufficientData is returned when two variants share no applicants.
var ErrInsufficientData = errors.New("insufficient data")

// Source provides the recorded results of one variant in append order.
// *results.Log satisfies it.
type Source interface {
	ForVariant(variantID string) []*models.EvaluationResult
}

// Intersect pairs the results of two variants by applicant id. Each side
// keeps one result per applicant, the most recently appended. Applicants
// missing on either side are dropped. Pairs follow the order in which
// applicants first appear in a.
func Intersect(a, b []*models.EvaluationResult) []models.ComparisonPair {
	latestA, orderA := latestByApplicant(a)
	latestB, _ := latestByApplicant(b)

	pairs := make([]models.ComparisonPair, 0, len(orderA))
	for _, id := range orderA {
		rb, ok := latestB[id]
		if !ok {
			continue
		}
		pairs = append(pairs, models.ComparisonPair{A: latestA[id], B: rb})
	}
	return pairs
}

func latestByApplicant(rs []*models.EvaluationResult) (map[string]*models.EvaluationResult, []string) {
	latest := make(map[string]*models.EvaluationResult, len(rs))
	var order []string
	for _, r := range rs {
		if _, seen := latest[r.ApplicantID]; !seen {
			order = append(order, r.ApplicantID)
		}
		latest[r.ApplicantID] = r
	}
	return latest, order
}

// ComputeMetrics compares variants a and b over the applicants both have
// results for. It reads src and never modifies it, so repeated calls on an
// unchanged source return identical metrics.
func ComputeMetrics(src Source, a, b string) (*models.ComparisonMetrics, error) {
	pairs := Intersect(src.ForVariant(a), src.ForVariant(b))
	if len(pairs) == 0 {
		return nil, fmt.Errorf("%w: no common applicants between %q and %q", ErrInsufficientData, a, b)
	}

	resultsA := make([]*models.EvaluationResult, len(pairs))
	resultsB := make([]*models.EvaluationResult, len(pairs))
	agreements := 0
	disagreements := []models.Disagreement{}

	for i, p := range pairs {
		resultsA[i], resultsB[i] = p.A, p.B
		if p.A.Decision == p.B.Decision {
			agreements++
			continue
		}
		disagreements = append(disagreements, models.Disagreement{
			ApplicantID: p.A.ApplicantID,
			DecisionA:   p.A.Decision,
			DecisionB:   p.B.Decision,
			ReasonA:     p.A.Reason,
			ReasonB:     p.B.Reason,
		})
	}

	total := len(pairs)
	return &models.ComparisonMetrics{
		VariantAID:     a,
		VariantBID:     b,
		TotalTests:     total,
		AgreementRate:  percent(agreements, total),
		DecisionRatesA: Rates(resultsA),
		DecisionRatesB: Rates(resultsB),
		Performance: models.PerformanceMetrics{
			AvgProcessingTimeA: MeanProcessingTime(resultsA),
			AvgProcessingTimeB: MeanProcessingTime(resultsB),
			ErrorRateA:         ErrorRate(resultsA),
			ErrorRateB:         ErrorRate(resultsB),
		},
		Disagreements: disagreements,
	}, nil
}

// Counts tallies decisions.
func Counts(rs []*models.EvaluationResult) map[models.Decision]int {
	counts := make(map[models.Decision]int, len(models.Decisions))
	for _, d := range models.Decisions {
		counts[d] = 0
	}
	for _, r := range rs {
		counts[r.Decision]++
	}
	return counts
}

// Rates returns each decision's share of rs as a percentage.
func Rates(rs []*models.EvaluationResult) models.DecisionRates {
	c := Counts(rs)
	n := len(rs)
	return models.DecisionRates{
		Accept:     percent(c[models.DecisionAccept], n),
		Deny:       percent(c[models.DecisionDeny], n),
		Adjudicate: percent(c[models.DecisionAdjudicate], n),
	}
}

// MeanProcessingTime averages processing_time_ms, 0 for no results.
func MeanProcessingTime(rs []*models.EvaluationResult) float64 {
	return Mean(ProcessingTimes(rs, false))
}

// ProcessingTimes extracts latencies, optionally skipping failed results.
func ProcessingTimes(rs []*models.EvaluationResult, skipFailed bool) []float64 {
	out := make([]float64, 0, len(rs))
	for _, r := range rs {
		if skipFailed && r.Failed() {
			continue
		}
		out = append(out, r.ProcessingTimeMs)
	}
	return out
}

// ErrorRate is the percentage of results with an error recorded.
func ErrorRate(rs []*models.EvaluationResult) float64 {
	failed := 0
	for _, r := range rs {
		if r.Failed() {
			failed++
		}
	}
	return percent(failed, len(rs))
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}
