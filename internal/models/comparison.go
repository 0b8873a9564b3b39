package models

// DecisionRates holds the share of each decision as a percentage (0-100).
type DecisionRates struct {
	Accept     float64 `json:"accept"`
	Deny       float64 `json:"deny"`
	Adjudicate float64 `json:"adjudicate"`
}

// Rate returns the percentage for a single decision.
func (r DecisionRates) Rate(d Decision) float64 {
	switch d {
	case DecisionAccept:
		return r.Accept
	case DecisionDeny:
		return r.Deny
	case DecisionAdjudicate:
		return r.Adjudicate
	}
	return 0
}

// PerformanceMetrics compares latency and error rate of the two variants.
type PerformanceMetrics struct {
	AvgProcessingTimeA float64 `json:"avg_processing_time_a"`
	AvgProcessingTimeB float64 `json:"avg_processing_time_b"`
	ErrorRateA         float64 `json:"error_rate_a"`
	ErrorRateB         float64 `json:"error_rate_b"`
}

// Disagreement records one applicant on which the variants decided differently.
type Disagreement struct {
	ApplicantID string   `json:"applicant_id"`
	DecisionA   Decision `json:"decision_a"`
	DecisionB   Decision `json:"decision_b"`
	ReasonA     string   `json:"reason_a"`
	ReasonB     string   `json:"reason_b"`
}

// ComparisonMetrics is a snapshot computed from a result log for one
// variant pair.
type ComparisonMetrics struct {
	VariantAID     string             `json:"variant_a_id"`
	VariantBID     string             `json:"variant_b_id"`
	TotalTests     int                `json:"total_tests"`
	AgreementRate  float64            `json:"agreement_rate"`
	DecisionRatesA DecisionRates      `json:"decision_rates_a"`
	DecisionRatesB DecisionRates      `json:"decision_rates_b"`
	Performance    PerformanceMetrics `json:"performance"`
	Disagreements  []Disagreement     `json:"disagreements"`
}

// StatisticalTest is the outcome of one significance test.
type StatisticalTest struct {
	TestName        string  `json:"test_name"`
	Statistic       float64 `json:"statistic"`
	PValue          float64 `json:"p_value"`
	IsSignificant   bool    `json:"is_significant"`
	ConfidenceLevel float64 `json:"confidence_level"`
	EffectSize      float64 `json:"effect_size"`
	Interpretation  string  `json:"interpretation"`
}

// RiskLevel is the qualitative rating attached to a business impact projection.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// BusinessImpactAnalysis projects rate changes onto monthly volume.
type BusinessImpactAnalysis struct {
	VariantAID                   string `json:"variant_a_id"`
	VariantBID                   string `json:"variant_b_id"`
	EstimatedMonthlyApplications int    `json:"estimated_monthly_applications"`

	AcceptRateChange     float64 `json:"accept_rate_change"`
	DenyRateChange       float64 `json:"deny_rate_change"`
	AdjudicateRateChange float64 `json:"adjudicate_rate_change"`

	AdditionalAcceptsMonthly       int `json:"additional_accepts_monthly"`
	AdditionalDeniesMonthly        int `json:"additional_denies_monthly"`
	AdditionalAdjudicationsMonthly int `json:"additional_adjudications_monthly"`

	EstimatedLossRatioChange      float64 `json:"estimated_loss_ratio_change"`
	EstimatedProcessingCostChange float64 `json:"estimated_processing_cost_change"`
	EstimatedMarketShareImpact    float64 `json:"estimated_market_share_impact"`

	RiskLevel       RiskLevel `json:"risk_level"`
	RiskFactors     []string  `json:"risk_factors"`
	Recommendations []string  `json:"recommendations"`
}

// VariantSummary describes one variant's results over a batch.
type VariantSummary struct {
	VariantID           string              `json:"variant_id"`
	TotalTests          int                 `json:"total_tests"`
	DecisionCounts      map[Decision]int    `json:"decision_counts"`
	DecisionRates       DecisionRates       `json:"decision_rates"`
	AvgProcessingTimeMs float64             `json:"avg_processing_time_ms"`
	ErrorCount          int                 `json:"error_count"`
	ErrorRate           float64             `json:"error_rate"`
	Results             []*EvaluationResult `json:"results"`
}
