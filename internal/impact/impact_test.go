package impact

import (
	"testing"

	"github.com/jconnelly/underwriting-ai-agent-demos/internal/models"
	"github.com/stretchr/testify/assert"
)

func comparison(rateA, rateB models.DecisionRates, agreement float64) *models.ComparisonMetrics {
	return &models.ComparisonMetrics{
		VariantAID:     "standard",
		VariantBID:     "liberal",
		TotalTests:     6,
		AgreementRate:  agreement,
		DecisionRatesA: rateA,
		DecisionRatesB: rateB,
		Disagreements:  []models.Disagreement{},
	}
}

func TestCalculate_StandardVsLiberalScenario(t *testing.T) {
	rateA := models.DecisionRates{Accept: 50, Deny: 100.0 / 6, Adjudicate: 100.0 / 3}
	rateB := models.DecisionRates{Accept: 500.0 / 6, Deny: 0, Adjudicate: 100.0 / 6}

	low := NewCalculator(10000).Calculate(comparison(rateA, rateB, 100.0*4/6))
	assert.InDelta(t, 33.333333, low.AcceptRateChange, 1e-5)
	assert.Equal(t, 3333, low.AdditionalAcceptsMonthly)
	assert.Equal(t, -1666, low.AdditionalDeniesMonthly, "truncated toward zero")
	assert.Equal(t, -1666, low.AdditionalAdjudicationsMonthly)
	assert.Equal(t, models.RiskHigh, low.RiskLevel)
	assert.Equal(t, []string{FactorAcceptSurge, FactorLowAgreement}, low.RiskFactors)

	moderate := NewCalculator(10000).Calculate(comparison(rateA, rateB, 80))
	assert.Equal(t, models.RiskMedium, moderate.RiskLevel)
	assert.Equal(t, []string{FactorAcceptSurge, FactorModerateAgreement}, moderate.RiskFactors)
	assert.Equal(t, []string{RecommendGradualRollout, RecommendValidateAuto, RecommendMonitor}, moderate.Recommendations)
}

func TestCalculate_Projections(t *testing.T) {
	m := comparison(
		models.DecisionRates{Accept: 40, Deny: 40, Adjudicate: 20},
		models.DecisionRates{Accept: 46, Deny: 20, Adjudicate: 34},
		90,
	)
	got := NewCalculator(20000).Calculate(m)

	assert.Equal(t, 20000, got.EstimatedMonthlyApplications)
	assert.Equal(t, "standard", got.VariantAID)
	assert.Equal(t, "liberal", got.VariantBID)
	assert.InDelta(t, 6.0, got.AcceptRateChange, 1e-9)
	assert.InDelta(t, -20.0, got.DenyRateChange, 1e-9)
	assert.InDelta(t, 14.0, got.AdjudicateRateChange, 1e-9)
	assert.Equal(t, 1200, got.AdditionalAcceptsMonthly)
	assert.Equal(t, -4000, got.AdditionalDeniesMonthly)
	assert.Equal(t, 2800, got.AdditionalAdjudicationsMonthly)
	assert.InDelta(t, 0.03, got.EstimatedLossRatioChange, 1e-9)
	assert.InDelta(t, 126000.0, got.EstimatedProcessingCostChange, 1e-6)
	assert.InDelta(t, 0.6, got.EstimatedMarketShareImpact, 1e-9)

	assert.Equal(t, models.RiskLow, got.RiskLevel)
	assert.Equal(t, []string{FactorAcceptRise}, got.RiskFactors)
	assert.Equal(t, []string{RecommendMonitorLoss, RecommendStaffing, RecommendMonitor}, got.Recommendations)
}

func TestCalculate_SelfComparison(t *testing.T) {
	rates := models.DecisionRates{Accept: 50, Deny: 25, Adjudicate: 25}
	got := NewCalculator(0).Calculate(comparison(rates, rates, 100))

	assert.Equal(t, DefaultMonthlyApplications, got.EstimatedMonthlyApplications)
	assert.Zero(t, got.AcceptRateChange)
	assert.Zero(t, got.DenyRateChange)
	assert.Zero(t, got.AdjudicateRateChange)
	assert.Zero(t, got.AdditionalAcceptsMonthly)
	assert.Equal(t, models.RiskLow, got.RiskLevel)
	assert.NotNil(t, got.RiskFactors)
	assert.Empty(t, got.RiskFactors)
	assert.Equal(t, []string{RecommendProceed, RecommendMonitor}, got.Recommendations)
}

func TestCalculate_RiskPoints(t *testing.T) {
	rates := models.DecisionRates{Accept: 50, Deny: 25, Adjudicate: 25}

	tests := []struct {
		name    string
		mutate  func(m *models.ComparisonMetrics)
		level   models.RiskLevel
		factors []string
	}{
		{
			name:    "slower variant",
			mutate:  func(m *models.ComparisonMetrics) { m.Performance.AvgProcessingTimeB = 1500 },
			level:   models.RiskLow,
			factors: []string{FactorSlower},
		},
		{
			name: "slower with more errors",
			mutate: func(m *models.ComparisonMetrics) {
				m.Performance.AvgProcessingTimeB = 1001
				m.Performance.ErrorRateB = 10
			},
			level:   models.RiskMedium,
			factors: []string{FactorSlower, FactorMoreErrors},
		},
		{
			name: "everything at once",
			mutate: func(m *models.ComparisonMetrics) {
				m.DecisionRatesB.Accept = 65
				m.AgreementRate = 60
				m.Performance.AvgProcessingTimeB = 2000
				m.Performance.ErrorRateB = 5
			},
			level:   models.RiskHigh,
			factors: []string{FactorAcceptSurge, FactorLowAgreement, FactorSlower, FactorMoreErrors},
		},
		{
			name: "boundary values add nothing",
			mutate: func(m *models.ComparisonMetrics) {
				m.DecisionRatesB.Accept = 55
				m.AgreementRate = 85
				m.Performance.AvgProcessingTimeB = 1000
			},
			level:   models.RiskLow,
			factors: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := comparison(rates, rates, 100)
			tt.mutate(m)
			got := NewCalculator(10000).Calculate(m)
			assert.Equal(t, tt.level, got.RiskLevel)
			assert.Equal(t, tt.factors, got.RiskFactors)
		})
	}
}

func TestCalculate_Recommendations(t *testing.T) {
	rates := models.DecisionRates{Accept: 50, Deny: 25, Adjudicate: 25}

	restrictive := comparison(rates, models.DecisionRates{Accept: 30, Deny: 45, Adjudicate: 25}, 60)
	restrictive.Performance.AvgProcessingTimeB = 600
	got := NewCalculator(10000).Calculate(restrictive)
	assert.Equal(t, []string{
		RecommendTooRestrictive,
		RecommendReviewCases,
		RecommendSmallerTest,
		RecommendOptimize,
		RecommendMonitor,
	}, got.Recommendations)
	assert.Equal(t, models.RiskMedium, got.RiskLevel)
}
