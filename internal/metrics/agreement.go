package metrics

import (
	"math"

	"github.com/jconnelly/underwriting-ai-agent-demos/internal/models"
)

// ClassMetrics scores variant B's use of one decision against variant A,
// which serves as the reference labelling.
type ClassMetrics struct {
	Decision  models.Decision `json:"decision"`
	TP        int             `json:"true_positives"`
	FP        int             `json:"false_positives"`
	TN        int             `json:"true_negatives"`
	FN        int             `json:"false_negatives"`
	Precision float64         `json:"precision"`
	Recall    float64         `json:"recall"`
	F1        float64         `json:"f1"`
	Accuracy  float64         `json:"accuracy"`
}

// ConfusionMatrix counts pairs by (decision A, decision B).
type ConfusionMatrix map[models.Decision]map[models.Decision]int

// Confusion tallies pairs into a matrix with a row and column for every
// decision, zero-filled.
func Confusion(pairs []models.ComparisonPair) ConfusionMatrix {
	m := make(ConfusionMatrix, len(models.Decisions))
	for _, a := range models.Decisions {
		m[a] = make(map[models.Decision]int, len(models.Decisions))
		for _, b := range models.Decisions {
			m[a][b] = 0
		}
	}
	for _, p := range pairs {
		row, ok := m[p.A.Decision]
		if !ok {
			row = map[models.Decision]int{}
			m[p.A.Decision] = row
		}
		row[p.B.Decision]++
	}
	return m
}

// ComputeDecisionAgreement calculates one-vs-rest precision, recall, F1 and
// accuracy for each decision. Returns nil when pairs is empty.
func ComputeDecisionAgreement(pairs []models.ComparisonPair) []ClassMetrics {
	if len(pairs) == 0 {
		return nil
	}

	out := make([]ClassMetrics, 0, len(models.Decisions))
	for _, d := range models.Decisions {
		var tp, fp, tn, fn int
		for _, p := range pairs {
			want := p.A.Decision == d
			got := p.B.Decision == d
			switch {
			case want && got:
				tp++
			case !want && got:
				fp++
			case !want && !got:
				tn++
			default:
				fn++
			}
		}

		precision := safeDivide(float64(tp), float64(tp+fp))
		recall := safeDivide(float64(tp), float64(tp+fn))
		var f1 float64
		if precision+recall > 0 {
			f1 = 2 * precision * recall / (precision + recall)
		}

		out = append(out, ClassMetrics{
			Decision:  d,
			TP:        tp,
			FP:        fp,
			TN:        tn,
			FN:        fn,
			Precision: roundTo4(precision),
			Recall:    roundTo4(recall),
			F1:        roundTo4(f1),
			Accuracy:  roundTo4(safeDivide(float64(tp+tn), float64(len(pairs)))),
		})
	}
	return out
}

func safeDivide(num, den float64) float64 {
	if den == 0 {
		return 0.0
	}
	return num / den
}

func roundTo4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
