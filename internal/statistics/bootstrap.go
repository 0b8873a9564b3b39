package statistics

import (
	"math"
	"math/rand"
	"sort"

	"github.com/jconnelly/underwriting-ai-agent-demos/internal/metrics"
)

// ConfidenceInterval is a percentile bootstrap interval around an observed
// mean or difference of means.
type ConfidenceInterval struct {
	Lower           float64 `json:"lower"`
	Upper           float64 `json:"upper"`
	Mean            float64 `json:"mean"`
	ConfidenceLevel float64 `json:"confidence_level"`
	NumBootstraps   int     `json:"num_bootstraps"`
}

// DefaultBootstrapIterations is the number of bootstrap resamples.
const DefaultBootstrapIterations = 10000

// BootstrapCI is the interval for the mean of values, such as one
// variant's processing times. A negative seed draws from a random source.
// Fewer than two values give a degenerate interval at the mean.
func BootstrapCI(values []float64, confidenceLevel float64, seed int64) ConfidenceInterval {
	n := len(values)
	m := metrics.Mean(values)
	if n < 2 {
		return degenerate(m, confidenceLevel)
	}

	rng := newRand(seed)
	sample := make([]float64, n)
	return percentile(m, confidenceLevel, func() float64 {
		resample(rng, values, sample)
		return metrics.Mean(sample)
	})
}

// BootstrapDiffCI computes a percentile bootstrap interval for
// mean(b) - mean(a), resampling each group independently. Either group
// having fewer than 2 values gives a degenerate interval at the observed
// difference.
func BootstrapDiffCI(a, b []float64, confidenceLevel float64, seed int64) ConfidenceInterval {
	diff := metrics.Mean(b) - metrics.Mean(a)
	if len(a) < 2 || len(b) < 2 {
		return degenerate(diff, confidenceLevel)
	}

	rng := newRand(seed)
	sampleA := make([]float64, len(a))
	sampleB := make([]float64, len(b))
	return percentile(diff, confidenceLevel, func() float64 {
		resample(rng, a, sampleA)
		resample(rng, b, sampleB)
		return metrics.Mean(sampleB) - metrics.Mean(sampleA)
	})
}

// IsSignificant reports whether the interval excludes zero.
func IsSignificant(ci ConfidenceInterval) bool {
	return ci.Lower > 0 || ci.Upper < 0
}

func newRand(seed int64) *rand.Rand {
	if seed >= 0 {
		return rand.New(rand.NewSource(seed))
	}
	return rand.New(rand.NewSource(rand.Int63()))
}

func resample(rng *rand.Rand, from, into []float64) {
	for j := range into {
		into[j] = from[rng.Intn(len(from))]
	}
}

func degenerate(m, confidenceLevel float64) ConfidenceInterval {
	return ConfidenceInterval{
		Lower:           m,
		Upper:           m,
		Mean:            m,
		ConfidenceLevel: confidenceLevel,
	}
}

// percentile draws DefaultBootstrapIterations statistics and reads the
// interval off their sorted order.
func percentile(observed, confidenceLevel float64, draw func() float64) ConfidenceInterval {
	iters := DefaultBootstrapIterations
	stats := make([]float64, iters)
	for i := range stats {
		stats[i] = draw()
	}
	sort.Float64s(stats)

	alpha := 1.0 - confidenceLevel
	loIdx := int(math.Floor(alpha / 2.0 * float64(iters)))
	hiIdx := int(math.Floor((1.0 - alpha/2.0) * float64(iters)))
	if hiIdx >= iters {
		hiIdx = iters - 1
	}

	return ConfidenceInterval{
		Lower:           stats[loIdx],
		Upper:           stats[hiIdx],
		Mean:            observed,
		ConfidenceLevel: confidenceLevel,
		NumBootstraps:   iters,
	}
}
