package rank

import (
	"math"

	"github.com/bastiangx/launchrank/pkg/store"
)

const (
	// frequency ratio is floored before the log so ln(0) cannot occur.
	minFrequencyRatio = 0.1

	// strong text matches are floored instead of drowned out by weak
	// temporal signal.
	weakScoreThreshold = 0.001
	strongMatchGate    = 0.5
	strongMatchScale   = 0.1
)

// scorePage computes the composite relevance of one candidate. Pages without
// any recorded visit, or without text relevance, score 0 and are excluded.
// Callers hold at least a read lock.
func (e *Engine) scorePage(query, pageID string, meta store.PageMeta, now int64) float64 {
	entry, ok := e.visits.Get(pageID)
	if !ok || len(entry.Visits) == 0 {
		return 0
	}
	match := TextMatch(query, meta)
	if match <= 0 {
		return 0
	}

	sigma2, ok := e.variances[pageID]
	if !ok || sigma2 <= 0 {
		sigma2 = defaultVariance
	}

	freqTerm := 1 + math.Log(math.Max(localFrequency(entry.Visits, now)/e.globalMeanFreq, minFrequencyRatio))
	var decaySum float64
	for _, v := range entry.Visits {
		decaySum += visitWeight(now, v.Timestamp, v.Dwell, sigma2, e.opts.SessionTimeout) * freqTerm
	}

	adaptive := alphaT(float64(now), e.opts.K, e.opts.Mu) / e.opts.Beta
	weightedSum := adaptive * decaySum

	reg := regularity(entry.Timestamps())
	personal := clamp01(entry.PersonalScore)

	score := match * weightedSum * reg * (0.5 + personal)
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return match
	}
	if score < weakScoreThreshold && match > strongMatchGate {
		return match * strongMatchScale
	}
	return score
}
