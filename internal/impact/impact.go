// Package impact projects the rate differences between two variants onto a
// monthly application volume. The coefficients are linear proxies, not a
// calibrated actuarial model.
package impact

import "github.com/jconnelly/underwriting-ai-agent-demos/internal/models"

const (
	// DefaultMonthlyApplications is used when no volume is configured.
	DefaultMonthlyApplications = 10000

	// LossRatioPerPoint is the loss ratio change per percentage point of
	// acceptance rate.
	LossRatioPerPoint = 0.005
	// AdjudicationCostDelta is the extra cost of a manual review over an
	// automated decision.
	AdjudicationCostDelta = 45.0
	// MarketSharePerPoint is the market share change per percentage point
	// of acceptance rate.
	MarketSharePerPoint = 0.1
)

// Risk factor messages.
const (
	FactorAcceptSurge       = "Significant increase in acceptance rate may increase loss exposure"
	FactorAcceptRise        = "Moderate increase in acceptance rate"
	FactorLowAgreement      = "Low agreement rate indicates significant rule differences"
	FactorModerateAgreement = "Moderate agreement rate"
	FactorSlower            = "Significant processing time increase"
	FactorMoreErrors        = "Increased error rate in variant B"
)

// Recommendations.
const (
	RecommendGradualRollout = "Consider gradual rollout due to significant acceptance rate increase"
	RecommendMonitorLoss    = "Monitor loss ratios closely if implementing variant B"
	RecommendTooRestrictive = "Variant B may be too restrictive, potentially losing market share"
	RecommendStaffing       = "Ensure adequate underwriting staff for increased manual reviews"
	RecommendValidateAuto   = "Validate that automated decisions maintain quality standards"
	RecommendReviewCases    = "Review disagreement cases to understand rule impact"
	RecommendSmallerTest    = "Consider A/B testing with smaller population first"
	RecommendOptimize       = "Optimize variant B for better performance"
	RecommendProceed        = "Results show minimal impact - safe to proceed with implementation"
	RecommendMonitor        = "Continue monitoring key metrics post-implementation"
)

// Calculator turns comparison metrics into a business impact projection.
type Calculator struct {
	monthly int
}

// NewCalculator creates a calculator for the given monthly volume. A
// non-positive volume selects DefaultMonthlyApplications.
func NewCalculator(monthlyApplications int) *Calculator {
	if monthlyApplications <= 0 {
		monthlyApplications = DefaultMonthlyApplications
	}
	return &Calculator{monthly: monthlyApplications}
}

// MonthlyApplications returns the configured volume.
func (c *Calculator) MonthlyApplications() int {
	return c.monthly
}

// Calculate projects m onto the monthly volume. Deltas are B minus A.
// Volume deltas are truncated toward zero.
func (c *Calculator) Calculate(m *models.ComparisonMetrics) *models.BusinessImpactAnalysis {
	acceptDelta := m.DecisionRatesB.Accept - m.DecisionRatesA.Accept
	denyDelta := m.DecisionRatesB.Deny - m.DecisionRatesA.Deny
	adjudicateDelta := m.DecisionRatesB.Adjudicate - m.DecisionRatesA.Adjudicate
	monthly := float64(c.monthly)

	level, factors := assessRisk(m, acceptDelta)
	return &models.BusinessImpactAnalysis{
		VariantAID:                   m.VariantAID,
		VariantBID:                   m.VariantBID,
		EstimatedMonthlyApplications: c.monthly,

		AcceptRateChange:     acceptDelta,
		DenyRateChange:       denyDelta,
		AdjudicateRateChange: adjudicateDelta,

		AdditionalAcceptsMonthly:       int(monthly * acceptDelta / 100),
		AdditionalDeniesMonthly:        int(monthly * denyDelta / 100),
		AdditionalAdjudicationsMonthly: int(monthly * adjudicateDelta / 100),

		EstimatedLossRatioChange:      acceptDelta * LossRatioPerPoint,
		EstimatedProcessingCostChange: monthly * adjudicateDelta / 100 * AdjudicationCostDelta,
		EstimatedMarketShareImpact:    acceptDelta * MarketSharePerPoint,

		RiskLevel:       level,
		RiskFactors:     factors,
		Recommendations: recommend(m, acceptDelta, adjudicateDelta),
	}
}

func assessRisk(m *models.ComparisonMetrics, acceptDelta float64) (models.RiskLevel, []string) {
	factors := []string{}
	score := 0

	switch {
	case acceptDelta > 10:
		factors = append(factors, FactorAcceptSurge)
		score += 2
	case acceptDelta > 5:
		factors = append(factors, FactorAcceptRise)
		score++
	}

	switch {
	case m.AgreementRate < 70:
		factors = append(factors, FactorLowAgreement)
		score += 2
	case m.AgreementRate < 85:
		factors = append(factors, FactorModerateAgreement)
		score++
	}

	if latencyDelta(m) > 1000 {
		factors = append(factors, FactorSlower)
		score++
	}

	if m.Performance.ErrorRateB > m.Performance.ErrorRateA {
		factors = append(factors, FactorMoreErrors)
		score++
	}

	switch {
	case score >= 4:
		return models.RiskHigh, factors
	case score >= 2:
		return models.RiskMedium, factors
	}
	return models.RiskLow, factors
}

func recommend(m *models.ComparisonMetrics, acceptDelta, adjudicateDelta float64) []string {
	var recs []string

	switch {
	case acceptDelta > 15:
		recs = append(recs, RecommendGradualRollout)
	case acceptDelta > 5:
		recs = append(recs, RecommendMonitorLoss)
	case acceptDelta < -10:
		recs = append(recs, RecommendTooRestrictive)
	}

	switch {
	case adjudicateDelta > 10:
		recs = append(recs, RecommendStaffing)
	case adjudicateDelta < -10:
		recs = append(recs, RecommendValidateAuto)
	}

	if m.AgreementRate < 70 {
		recs = append(recs, RecommendReviewCases, RecommendSmallerTest)
	}

	if latencyDelta(m) > 500 {
		recs = append(recs, RecommendOptimize)
	}

	if len(recs) == 0 {
		recs = append(recs, RecommendProceed)
	}
	return append(recs, RecommendMonitor)
}

func latencyDelta(m *models.ComparisonMetrics) float64 {
	return m.Performance.AvgProcessingTimeB - m.Performance.AvgProcessingTimeA
}
