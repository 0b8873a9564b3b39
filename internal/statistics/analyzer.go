// Package statistics tests whether two variants' results differ: decision
// distributions, per-decision rates and processing time, plus sample size
// planning and interval estimates.
package statistics

import (
	"errors"
	"fmt"
	"math"

	"github.com/jconnelly/underwriting-ai-agent-demos/internal/metrics"
	"github.com/jconnelly/underwriting-ai-agent-demos/internal/models"
)

const (
	// DefaultConfidenceLevel applies when none is configured.
	DefaultConfidenceLevel = 0.95
	// DefaultPower is the target power of PowerAnalysis.
	DefaultPower = 0.8

	// InsufficientData is the interpretation of a test that could not be computed.
	InsufficientData = "Insufficient data for analysis"
)

// Test names as they appear in reports.
const (
	ChiSquareTestName = "Chi-Square Test (Decision Distribution)"
	TTestName         = "Independent T-Test (Processing Time)"
)

// ProportionTestName names the two-proportion test for one decision.
func ProportionTestName(d models.Decision) string {
	return fmt.Sprintf("Two-Proportion Z-Test (%s)", d.Key())
}

// Analyzer runs significance tests at a fixed confidence level.
type Analyzer struct {
	confidence float64
	alpha      float64
}

// NewAnalyzer creates an analyzer. A level outside (0, 1) falls back to
// DefaultConfidenceLevel.
func NewAnalyzer(confidenceLevel float64) *Analyzer {
	if confidenceLevel <= 0 || confidenceLevel >= 1 {
		confidenceLevel = DefaultConfidenceLevel
	}
	return &Analyzer{confidence: confidenceLevel, alpha: 1 - confidenceLevel}
}

// ConfidenceLevel returns the configured confidence level.
func (a *Analyzer) ConfidenceLevel() float64 { return a.confidence }

// Alpha returns 1 - ConfidenceLevel.
func (a *Analyzer) Alpha() float64 { return a.alpha }

// RunAll runs the distribution test, one proportion test per decision and
// the processing time test, in that order.
func (a *Analyzer) RunAll(resultsA, resultsB []*models.EvaluationResult) []models.StatisticalTest {
	tests := make([]models.StatisticalTest, 0, 2+len(models.Decisions))
	tests = append(tests, a.ChiSquare(resultsA, resultsB))
	for _, d := range models.Decisions {
		tests = append(tests, a.ProportionZTest(resultsA, resultsB, d))
	}
	return append(tests, a.TTestProcessingTime(resultsA, resultsB))
}

// ChiSquare tests independence of variant and decision on the 2x3
// contingency table of decision counts. Decisions neither variant produced
// are left out of the table; Yates' correction applies when one degree of
// freedom remains. Effect size is Cramér's V.
func (a *Analyzer) ChiSquare(resultsA, resultsB []*models.EvaluationResult) models.StatisticalTest {
	countsA, countsB := metrics.Counts(resultsA), metrics.Counts(resultsB)
	rowA, rowB := float64(len(resultsA)), float64(len(resultsB))
	if rowA == 0 || rowB == 0 {
		return a.insufficient(ChiSquareTestName)
	}

	var cols [][2]float64
	for _, d := range models.Decisions {
		if countsA[d]+countsB[d] > 0 {
			cols = append(cols, [2]float64{float64(countsA[d]), float64(countsB[d])})
		}
	}

	n := rowA + rowB
	var stat, p float64 = 0, 1
	if len(cols) >= 2 {
		dof := len(cols) - 1
		rows := [2]float64{rowA, rowB}
		for _, col := range cols {
			colTotal := col[0] + col[1]
			for i, observed := range col {
				expected := rows[i] * colTotal / n
				if dof == 1 {
					observed = yates(observed, expected)
				}
				diff := observed - expected
				stat += diff * diff / expected
			}
		}
		p = ChiSquareSF(stat, dof)
	}

	cramersV := math.Sqrt(stat / n)
	significant := p < a.alpha
	return models.StatisticalTest{
		TestName:        ChiSquareTestName,
		Statistic:       stat,
		PValue:          p,
		IsSignificant:   significant,
		ConfidenceLevel: a.confidence,
		EffectSize:      cramersV,
		Interpretation: fmt.Sprintf(
			"The difference in decision distributions is %s (p=%.4f) with a %s effect size (Cramér's V=%.3f).",
			significance(significant), p, cramersBand(cramersV), cramersV),
	}
}

// yates moves observed half a count toward expected, never past it.
func yates(observed, expected float64) float64 {
	diff := expected - observed
	step := math.Min(0.5, math.Abs(diff))
	if diff < 0 {
		return observed - step
	}
	return observed + step
}

// ProportionZTest compares the share of decision d between the variants
// with a pooled two-proportion z-test. Effect size is |Cohen's h|.
func (a *Analyzer) ProportionZTest(resultsA, resultsB []*models.EvaluationResult, d models.Decision) models.StatisticalTest {
	name := ProportionTestName(d)
	nA, nB := len(resultsA), len(resultsB)
	if nA == 0 || nB == 0 {
		return a.insufficient(name)
	}

	countA, countB := metrics.Counts(resultsA)[d], metrics.Counts(resultsB)[d]
	pA := float64(countA) / float64(nA)
	pB := float64(countB) / float64(nB)
	pool := float64(countA+countB) / float64(nA+nB)
	se := math.Sqrt(pool * (1 - pool) * (1/float64(nA) + 1/float64(nB)))

	z, p := 0.0, 1.0
	if se > 0 {
		z = (pA - pB) / se
		p = 2 * (1 - NormalCDF(math.Abs(z)))
	}

	h := math.Abs(CohensH(pA, pB))
	significant := p < a.alpha
	direction := "lower"
	if pB > pA {
		direction = "higher"
	}
	return models.StatisticalTest{
		TestName:        name,
		Statistic:       z,
		PValue:          p,
		IsSignificant:   significant,
		ConfidenceLevel: a.confidence,
		EffectSize:      h,
		Interpretation: fmt.Sprintf(
			"Variant B has a %s %s %s rate (%.1f%% vs %.1f%%, p=%.4f) with a %s effect size.",
			significance(significant), direction, d.Key(), pB*100, pA*100, p, cohenBand(h)),
	}
}

// TTestProcessingTime compares mean processing time with a pooled-variance
// two-sample t-test. Failed evaluations are excluded. Effect size is
// |Cohen's d|.
func (a *Analyzer) TTestProcessingTime(resultsA, resultsB []*models.EvaluationResult) models.StatisticalTest {
	timesA := metrics.ProcessingTimes(resultsA, true)
	timesB := metrics.ProcessingTimes(resultsB, true)
	nA, nB := len(timesA), len(timesB)
	if nA < 2 || nB < 2 {
		return a.insufficient(TTestName)
	}

	meanA, meanB := metrics.Mean(timesA), metrics.Mean(timesB)
	pooledVar := (float64(nA-1)*metrics.SampleVariance(timesA) + float64(nB-1)*metrics.SampleVariance(timesB)) /
		float64(nA+nB-2)
	pooledSD := math.Sqrt(pooledVar)
	se := pooledSD * math.Sqrt(1/float64(nA)+1/float64(nB))

	t, p := 0.0, 1.0
	if se > 0 {
		t = (meanA - meanB) / se
		p = StudentTTwoTailed(t, nA+nB-2)
	}

	var d float64
	if pooledSD > 0 {
		d = math.Abs(meanA-meanB) / pooledSD
	}
	significant := p < a.alpha
	direction := "faster"
	if meanB > meanA {
		direction = "slower"
	}
	return models.StatisticalTest{
		TestName:        TTestName,
		Statistic:       t,
		PValue:          p,
		IsSignificant:   significant,
		ConfidenceLevel: a.confidence,
		EffectSize:      d,
		Interpretation: fmt.Sprintf(
			"Variant B is %s %s (%.1fms vs %.1fms, p=%.4f) with a %s effect size.",
			significance(significant), direction, meanB, meanA, p, cohenBand(d)),
	}
}

// PowerAnalysis returns the per-group sample size needed to detect
// effectSize (Cohen's h) with a two-sided test at alpha with the given
// power. Zero alpha or power select the analyzer's alpha and DefaultPower.
func (a *Analyzer) PowerAnalysis(effectSize, alpha, power float64) (int, error) {
	if alpha == 0 {
		alpha = a.alpha
	}
	if power == 0 {
		power = DefaultPower
	}
	switch {
	case effectSize <= 0 || math.IsNaN(effectSize) || math.IsInf(effectSize, 0):
		return 0, fmt.Errorf("effect size must be positive, got %v", effectSize)
	case alpha <= 0 || alpha >= 1:
		return 0, fmt.Errorf("alpha must be in (0, 1), got %v", alpha)
	case power <= 0 || power >= 1:
		return 0, fmt.Errorf("power must be in (0, 1), got %v", power)
	}

	zAlpha := NormalQuantile(1 - alpha/2)
	zBeta := NormalQuantile(power)
	ratio := (zAlpha + zBeta) / effectSize
	return int(math.Ceil(2 * ratio * ratio)), nil
}

// WilsonInterval is the Wilson score interval for successes out of n at
// the analyzer's confidence level, clamped to [0, 1]. It is (0, 0) for n=0.
func (a *Analyzer) WilsonInterval(successes, n int) (float64, float64) {
	if n <= 0 {
		return 0, 0
	}
	p := float64(successes) / float64(n)
	z := NormalQuantile(1 - a.alpha/2)
	nf := float64(n)

	denominator := 1 + z*z/nf
	centre := (p + z*z/(2*nf)) / denominator
	margin := z * math.Sqrt((p*(1-p)+z*z/(4*nf))/nf) / denominator
	return math.Max(0, centre-margin), math.Min(1, centre+margin)
}

// ConfidenceIntervalProportion is the Wilson interval for the share of
// results with decision d.
func (a *Analyzer) ConfidenceIntervalProportion(rs []*models.EvaluationResult, d models.Decision) (float64, float64) {
	return a.WilsonInterval(metrics.Counts(rs)[d], len(rs))
}

// ErrInvalidProportion is returned by CohensHFromRates for rates outside [0, 1].
var ErrInvalidProportion = errors.New("proportion must be in [0, 1]")

// CohensH is 2*(asin(sqrt(pA)) - asin(sqrt(pB))).
func CohensH(pA, pB float64) float64 {
	return 2 * (math.Asin(math.Sqrt(pA)) - math.Asin(math.Sqrt(pB)))
}

// CohensHFromRates is |Cohen's h| for two rates given as fractions, used to
// turn an expected rate change into an effect size for PowerAnalysis.
func CohensHFromRates(pA, pB float64) (float64, error) {
	if pA < 0 || pA > 1 || pB < 0 || pB > 1 {
		return 0, fmt.Errorf("%w: %v, %v", ErrInvalidProportion, pA, pB)
	}
	return math.Abs(CohensH(pA, pB)), nil
}

func (a *Analyzer) insufficient(name string) models.StatisticalTest {
	return models.StatisticalTest{
		TestName:        name,
		PValue:          1,
		ConfidenceLevel: a.confidence,
		Interpretation:  InsufficientData,
	}
}

func significance(significant bool) string {
	if significant {
		return "statistically significant"
	}
	return "not statistically significant"
}

func cramersBand(v float64) string {
	switch {
	case v < 0.1:
		return "negligible"
	case v < 0.3:
		return "small"
	case v < 0.5:
		return "medium"
	}
	return "large"
}

func cohenBand(effect float64) string {
	switch {
	case effect >= 0.8:
		return "large"
	case effect >= 0.5:
		return "medium"
	case effect >= 0.2:
		return "small"
	}
	return "negligible"
}
