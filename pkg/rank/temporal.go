package rank

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/bastiangx/launchrank/pkg/store"
)

const (
	// inverse-gamma conjugate prior for the inter-visit interval variance.
	variancePriorShape = 2.0
	variancePriorScale = 2.0
	defaultVariance    = 1.0

	defaultRegularity = 0.5

	// trailing window for the local visit frequency.
	localFrequencyWindow = 30 * 24 * 3600

	// visits inside the session window get a flat boost, older ones decay
	// with a 7-day half-life.
	sessionVisitBoost = 2.0
	decayHalfLife     = 7 * 24 * 3600.0

	dwellBoostWeight = 0.3
	dwellBoostPivot  = 30.0
)

// intervals returns the successive differences of an ascending timestamp
// sequence.
func intervals(timestamps []float64) []float64 {
	if len(timestamps) < 2 {
		return nil
	}
	diffs := make([]float64, len(timestamps)-1)
	for i := 1; i < len(timestamps); i++ {
		diffs[i-1] = timestamps[i] - timestamps[i-1]
	}
	return diffs
}

// estimateVariance computes the posterior mean of the inter-visit interval
// variance under an inverse-gamma conjugate prior. Fewer than two intervals
// defer to the default of 1.0.
func estimateVariance(timestamps []float64) float64 {
	diffs := intervals(timestamps)
	if len(diffs) < 2 {
		return defaultVariance
	}
	n := float64(len(diffs))
	mean := stat.Mean(diffs, nil)
	var ss float64
	for _, d := range diffs {
		ss += (d - mean) * (d - mean)
	}
	shape := variancePriorShape + n/2
	rate := 1/variancePriorScale + 0.5*ss
	if shape > 1 {
		return rate / (shape - 1)
	}
	return stat.Variance(diffs, nil)
}

// regularity scores how rhythmically a page is revisited: the inverse
// coefficient of variation of its inter-visit intervals scaled by a
// normalized Shannon entropy factor. Insufficient data, a zero interval sum,
// or a non-finite result all default to 0.5.
func regularity(timestamps []float64) float64 {
	if len(timestamps) < 2 {
		return defaultRegularity
	}
	diffs := intervals(timestamps)
	mean := stat.Mean(diffs, nil)
	var sum float64
	for _, d := range diffs {
		sum += d
	}
	if sum == 0 || mean == 0 {
		return defaultRegularity
	}
	cv := stat.PopStdDev(diffs, nil) / mean

	dist := make([]float64, len(diffs))
	for i, d := range diffs {
		dist[i] = d / sum
	}
	entropy := stat.Entropy(dist)
	factor := 1.0
	if n := float64(len(timestamps)); n > 1 {
		factor = 1 + entropy/math.Log(n)
	}

	reg := (1 / (1 + cv)) * factor
	if math.IsNaN(reg) || math.IsInf(reg, 0) {
		return defaultRegularity
	}
	return reg
}

// localFrequency counts visits inside the trailing 30-day window ending at
// the reference timestamp.
func localFrequency(visits []store.Visit, now int64) float64 {
	count := 0
	for _, v := range visits {
		delta := now - v.Timestamp
		if delta >= 0 && delta <= localFrequencyWindow {
			count++
		}
	}
	return float64(count)
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// alphaT is the global adaptive recency weight: a monotonically decreasing
// function of the reference time with steepness k and midpoint mu.
func alphaT(t, k, mu float64) float64 {
	return 1 - sigmoid(k*(t-mu))
}

// visitWeight is the per-visit decay multiplier: exponential recency decay
// scaled by the page's variance estimate, an optional dwell-time boost, and
// either a flat session boost or a 7-day half-life falloff.
func visitWeight(now, visitTime int64, dwell, sigma2 float64, sessionTimeout int64) float64 {
	delta := float64(now - visitTime)

	session := sessionVisitBoost
	if delta > float64(sessionTimeout) {
		session = math.Exp(-math.Ln2 * delta / decayHalfLife)
	}

	decay := math.Exp(-delta / (2 * sigma2))

	boost := 1.0
	if dwell > 0 {
		boost = 1 + dwellBoostWeight*math.Atan(dwell/dwellBoostPivot)/(math.Pi/2)
	}
	return decay * boost * session
}
