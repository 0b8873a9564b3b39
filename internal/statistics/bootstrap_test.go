package statistics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

var (
	latencyA = []float64{95, 102, 98, 110, 105, 99, 101, 97, 104, 100}
	latencyB = []float64{198, 205, 201, 210, 195, 199, 203, 207, 200, 202}
)

func TestBootstrapCI_Degenerate(t *testing.T) {
	empty := BootstrapCI(nil, 0.95, 1)
	assert.Equal(t, ConfidenceInterval{ConfidenceLevel: 0.95}, empty)

	single := BootstrapCI([]float64{120}, 0.95, 1)
	assert.Equal(t, 120.0, single.Lower)
	assert.Equal(t, 120.0, single.Upper)
	assert.Zero(t, single.NumBootstraps)
}

func TestBootstrapCI_ConstantTimes(t *testing.T) {
	ci := BootstrapCI([]float64{250, 250, 250, 250}, 0.95, 42)
	assert.InDelta(t, 250, ci.Lower, 1e-9)
	assert.InDelta(t, 250, ci.Upper, 1e-9)
}

func TestBootstrapCI_ProcessingTimes(t *testing.T) {
	ci := BootstrapCI(latencyA, 0.95, 42)

	assert.InDelta(t, 101.1, ci.Mean, 1e-9)
	assert.Less(t, ci.Lower, ci.Mean)
	assert.Greater(t, ci.Upper, ci.Mean)
	assert.GreaterOrEqual(t, ci.Lower, 95.0)
	assert.LessOrEqual(t, ci.Upper, 110.0)
	assert.Equal(t, DefaultBootstrapIterations, ci.NumBootstraps)
	assert.Equal(t, 0.95, ci.ConfidenceLevel)
}

func TestBootstrapCI_Deterministic(t *testing.T) {
	assert.Equal(t, BootstrapCI(latencyA, 0.95, 7), BootstrapCI(latencyA, 0.95, 7))
}

func TestBootstrapCI_WiderAtHigherConfidence(t *testing.T) {
	ci90 := BootstrapCI(latencyA, 0.90, 42)
	ci99 := BootstrapCI(latencyA, 0.99, 42)
	assert.Greater(t, ci99.Upper-ci99.Lower, ci90.Upper-ci90.Lower)
}

func TestBootstrapDiffCI(t *testing.T) {
	ci := BootstrapDiffCI(latencyA, latencyB, 0.95, 42)

	assert.InDelta(t, 100.9, ci.Mean, 1e-9)
	assert.Greater(t, ci.Lower, 90.0)
	assert.Less(t, ci.Upper, 112.0)
	assert.True(t, IsSignificant(ci))

	same := BootstrapDiffCI(latencyA, latencyA, 0.95, 42)
	assert.False(t, IsSignificant(same))
}

func TestBootstrapDiffCI_TooFewValues(t *testing.T) {
	ci := BootstrapDiffCI([]float64{100}, latencyB, 0.95, 42)
	assert.InDelta(t, 102, ci.Mean, 1e-9)
	assert.Equal(t, ci.Mean, ci.Lower)
	assert.Equal(t, ci.Mean, ci.Upper)
}

func TestIsSignificant(t *testing.T) {
	tests := []struct {
		ci   ConfidenceInterval
		want bool
	}{
		{ConfidenceInterval{Lower: 5, Upper: 20}, true},
		{ConfidenceInterval{Lower: -20, Upper: -5}, true},
		{ConfidenceInterval{Lower: -5, Upper: 5}, false},
		{ConfidenceInterval{Lower: 0, Upper: 5}, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsSignificant(tt.ci), "%+v", tt.ci)
	}
}

func TestBootstrapCI_BracketsObservedMean(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		values := rapid.SliceOfN(rapid.Float64Range(1, 5000), 2, 30).Draw(t, "values")
		seed := rapid.Int64Range(0, 1000).Draw(t, "seed")

		ci := BootstrapCI(values, 0.95, seed)
		if ci.Lower > ci.Upper {
			t.Fatalf("inverted interval %+v", ci)
		}
		lo, hi := values[0], values[0]
		for _, v := range values {
			lo, hi = min(lo, v), max(hi, v)
		}
		if ci.Lower < lo-1e-9 || ci.Upper > hi+1e-9 {
			t.Fatalf("interval %+v outside data range [%v, %v]", ci, lo, hi)
		}
	})
}
