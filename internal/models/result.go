package models

import (
	"strings"
	"time"
)

// Decision is the categorical outcome of one underwriting evaluation.
// The values carry no ordering.
type Decision string

const (
	DecisionAccept     Decision = "ACCEPT"
	DecisionDeny       Decision = "DENY"
	DecisionAdjudicate Decision = "ADJUDICATE"
)

// Decisions lists every decision in reporting order.
var Decisions = []Decision{DecisionAccept, DecisionDeny, DecisionAdjudicate}

// Key returns the lower-case form used in report keys and test names.
func (d Decision) Key() string {
	return strings.ToLower(string(d))
}

// SystemErrorFactor is the risk factor attached to results produced by a
// failed evaluation.
const SystemErrorFactor = "System Error"

// EvaluationResult is one decision for one (applicant, variant) pair.
// It is never modified after the engine returns it.
type EvaluationResult struct {
	ApplicantID      string    `json:"applicant_id"`
	VariantID        string    `json:"variant_id"`
	Decision         Decision  `json:"decision"`
	Reason           string    `json:"reason"`
	TriggeredRules   []string  `json:"triggered_rules"`
	RiskFactors      []string  `json:"risk_factors"`
	ProcessingTimeMs float64   `json:"processing_time_ms"`
	Timestamp        time.Time `json:"timestamp"`
	Error            string    `json:"error,omitempty"`

	// RawResponse keeps the collaborator text when the parser fell back
	// to its default decision.
	RawResponse string `json:"raw_response,omitempty"`
}

// Failed reports whether the evaluation recorded an error.
func (r *EvaluationResult) Failed() bool {
	return r.Error != ""
}

// ComparisonPair holds the two results produced for one applicant.
type ComparisonPair struct {
	A *EvaluationResult `json:"a"`
	B *EvaluationResult `json:"b"`
}
