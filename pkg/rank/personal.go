package rank

import (
	"time"

	"github.com/bastiangx/launchrank/pkg/store"
)

// clamp01 keeps personalization scores inside [0,1] and maps NaN to the
// neutral score.
func clamp01(x float64) float64 {
	if x != x {
		return store.NeutralPersonalScore
	}
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// RecordClick moves the page's personalization score toward 1 and records a
// synthetic visit at click time. now <= 0 means current time.
func (e *Engine) RecordClick(pageID string, now int64) {
	if now <= 0 {
		now = time.Now().Unix()
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	entry := e.visits.GetOrCreate(pageID)
	old := clamp01(entry.PersonalScore)
	entry.PersonalScore = clamp01(old + e.opts.LearningRate*(1-old))
	entry.LastReinforcement = now
	entry.Append(store.Visit{Timestamp: now})

	e.recomputeStats()
	e.results.invalidate()
}

// RecordImpression moves a shown-but-unclicked page's personalization score
// toward 0: a mild negative signal.
func (e *Engine) RecordImpression(pageID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry := e.visits.GetOrCreate(pageID)
	old := clamp01(entry.PersonalScore)
	entry.PersonalScore = clamp01(old + e.opts.LearningRate*(0-old))
	entry.LastReinforcement = time.Now().Unix()

	e.results.invalidate()
}
