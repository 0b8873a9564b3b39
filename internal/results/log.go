// Package results holds the evaluation log that comparisons append to and
// metrics read from.
package results

import (
	"sync"

	"github.com/jconnelly/underwriting-ai-agent-demos/internal/models"
)

// Log is an append-only list of evaluation results. Clear is the only way
// to shrink it. A Log is safe for concurrent use; callers running
// independent comparisons should give each its own Log or Clear between
// runs.
type Log struct {
	mu      sync.Mutex
	results []*models.EvaluationResult
}

// NewLog returns an empty log.
func NewLog() *Log {
	return &Log{}
}

// Append adds results in the order given.
func (l *Log) Append(rs ...*models.EvaluationResult) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.results = append(l.results, rs...)
}

// All returns a snapshot of every result in append order.
func (l *Log) All() []*models.EvaluationResult {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*models.EvaluationResult, len(l.results))
	copy(out, l.results)
	return out
}

// ForVariant returns the results recorded for one variant in append order.
func (l *Log) ForVariant(variantID string) []*models.EvaluationResult {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []*models.EvaluationResult
	for _, r := range l.results {
		if r.VariantID == variantID {
			out = append(out, r)
		}
	}
	return out
}

// Len returns the number of recorded results.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.results)
}

// Clear empties the log.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.results = nil
}
