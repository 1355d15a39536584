package rank

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/bastiangx/launchrank/pkg/store"
)

// Defaults for the engine options and the rank call itself.
const (
	DefaultMaxResults     = 5
	DefaultBloomCapacity  = 10000
	DefaultBloomFPRate    = 0.01
	DefaultBeta           = 1.0
	DefaultK              = 0.5
	DefaultMu             = 30.0
	DefaultLearningRate   = 0.1
	DefaultSessionTimeout = 1800
	DefaultCacheSize      = 128
)

// Options configures an Engine. Zero values fall back to the defaults above.
type Options struct {
	// UseBloom enables the approximate-membership pre-check.
	UseBloom      bool
	BloomCapacity int
	BloomFPRate   float64

	// Beta divides the adaptive recency weight.
	Beta float64
	// K and Mu are the steepness and midpoint of the adaptive sigmoid.
	K  float64
	Mu float64

	// LearningRate drives the click/impression reinforcement update.
	LearningRate float64

	// SessionTimeout is the window in seconds during which a past visit
	// still counts as part of the current browsing session.
	SessionTimeout int64

	// CacheSize bounds the memoized result cache. Negative disables it.
	CacheSize int
}

// DefaultOptions returns the engine defaults.
func DefaultOptions() Options {
	return Options{
		BloomCapacity:  DefaultBloomCapacity,
		BloomFPRate:    DefaultBloomFPRate,
		Beta:           DefaultBeta,
		K:              DefaultK,
		Mu:             DefaultMu,
		LearningRate:   DefaultLearningRate,
		SessionTimeout: DefaultSessionTimeout,
		CacheSize:      DefaultCacheSize,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.BloomCapacity <= 0 {
		o.BloomCapacity = def.BloomCapacity
	}
	if o.BloomFPRate <= 0 || o.BloomFPRate >= 1 {
		o.BloomFPRate = def.BloomFPRate
	}
	if o.Beta == 0 {
		o.Beta = def.Beta
	}
	if o.K == 0 {
		o.K = def.K
	}
	if o.Mu == 0 {
		o.Mu = def.Mu
	}
	if o.LearningRate <= 0 || o.LearningRate > 1 {
		o.LearningRate = def.LearningRate
	}
	if o.SessionTimeout <= 0 {
		o.SessionTimeout = def.SessionTimeout
	}
	if o.CacheSize == 0 {
		o.CacheSize = def.CacheSize
	}
	return o
}

// Engine orchestrates candidate generation, scoring and index lifecycle over
// caller-supplied stores. One engine serves one user.
type Engine struct {
	mu     sync.RWMutex
	userID string
	pages  store.PageRegistry
	visits store.VisitsStore
	opts   Options

	// pageIDs fixes a stable ordering for the registry; the trie stores
	// indices into it. Rebuilt together with the indices.
	pageIDs []string
	index   *PrefixIndex
	filter  *Filter

	// derived state, recomputed on construction and on every visit.
	variances      map[string]float64
	globalMeanFreq float64

	results *resultCache
}

var _ Ranker = (*Engine)(nil)

// New builds an engine over the given stores. The userID is opaque and only
// used for logging; multi-tenancy is caller-enforced.
func New(pages store.PageRegistry, visits store.VisitsStore, userID string, opts Options) *Engine {
	e := &Engine{
		userID: userID,
		pages:  pages,
		visits: visits,
		opts:   opts.withDefaults(),
	}
	e.results = newResultCache(e.opts.CacheSize)
	e.rebuildIndex()
	e.recomputeStats()
	log.Debugf("Engine ready for user %q: %d pages, %d visit entries", userID, pages.Len(), visits.Len())
	return e
}

// rebuildIndex replaces the trie and Bloom filter with fresh ones built from
// the current registry. Callers hold the write lock (or are in New).
func (e *Engine) rebuildIndex() {
	e.pageIDs = e.pages.IDs()
	e.index = NewPrefixIndex()

	if e.opts.UseBloom {
		e.filter = NewFilter(e.opts.BloomCapacity, e.opts.BloomFPRate)
	} else {
		e.filter = nil
	}

	for i, id := range e.pageIDs {
		meta, ok := e.pages.Get(id)
		if !ok {
			continue
		}
		e.index.Insert(meta.Title, i)
		if e.filter != nil {
			e.filter.AddTitle(meta.Title)
		}
	}
}

// recomputeStats refreshes the per-page variance estimates and the global
// mean visit frequency. Callers hold the write lock (or are in New).
func (e *Engine) recomputeStats() {
	e.variances = make(map[string]float64, e.visits.Len())
	total := 0
	visited := 0
	for _, id := range e.visits.IDs() {
		entry, ok := e.visits.Get(id)
		if !ok || len(entry.Visits) == 0 {
			continue
		}
		e.variances[id] = estimateVariance(entry.Timestamps())
		total += len(entry.Visits)
		visited++
	}
	if visited > 0 {
		e.globalMeanFreq = float64(total) / float64(visited)
	} else {
		e.globalMeanFreq = 1.0
	}
}

// RankPages returns up to maxResults page IDs ordered by descending
// composite score. Empty or whitespace-only queries return nothing.
func (e *Engine) RankPages(query string, maxResults int, now int64) []string {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	if now <= 0 {
		now = time.Now().Unix()
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	if ids, ok := e.results.get(query, maxResults, now); ok {
		return ids
	}

	lower := strings.ToLower(query)
	if e.filter != nil && !e.filter.MightContain(lower) {
		// hint only: false negatives must never exclude candidates
		log.Debugf("Bloom filter miss for %q, falling through to full matching", lower)
	}

	// candidates in discovery order: trie matches first, then the fuzzy
	// fallback scan when the trie alone cannot fill the request
	seen := make(map[int]struct{})
	var candidates []int
	for _, idx := range e.index.PrefixMatches(lower) {
		if _, ok := seen[idx]; ok {
			continue
		}
		seen[idx] = struct{}{}
		candidates = append(candidates, idx)
	}
	if len(candidates) < maxResults {
		for i, id := range e.pageIDs {
			if _, ok := seen[i]; ok {
				continue
			}
			meta, ok := e.pages.Get(id)
			if !ok {
				continue
			}
			if TextMatch(query, meta) > 0 {
				seen[i] = struct{}{}
				candidates = append(candidates, i)
			}
		}
	}

	type scored struct {
		id    string
		score float64
	}
	ranked := make([]scored, 0, len(candidates))
	for _, idx := range candidates {
		if idx < 0 || idx >= len(e.pageIDs) {
			continue
		}
		id := e.pageIDs[idx]
		meta, ok := e.pages.Get(id)
		if !ok {
			continue
		}
		score := e.scorePage(query, id, meta, now)
		if score <= 0 {
			continue
		}
		ranked = append(ranked, scored{id: id, score: score})
	}

	// stable: equal scores keep candidate discovery order
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if len(ranked) > maxResults {
		ranked = ranked[:maxResults]
	}
	ids := make([]string, len(ranked))
	for i, r := range ranked {
		ids[i] = r.id
	}
	e.results.put(query, maxResults, now, ids)
	return ids
}

// RecordVisit appends a visit for a page, creating its entry on first use,
// and refreshes the derived statistics. now semantics follow the caller:
// visitTime <= 0 means current time.
func (e *Engine) RecordVisit(pageID string, visitTime int64, dwell float64) {
	if visitTime <= 0 {
		visitTime = time.Now().Unix()
	}
	if dwell < 0 {
		dwell = 0
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	entry := e.visits.GetOrCreate(pageID)
	entry.Append(store.Visit{Timestamp: visitTime, Dwell: dwell})

	e.recomputeStats()
	e.results.invalidate()
}

// UpdatePage replaces a page's metadata wholesale and rebuilds the trie and
// Bloom filter. The rebuild is atomic with respect to concurrent RankPages
// calls: readers never observe a partially rebuilt index.
func (e *Engine) UpdatePage(pageID string, meta store.PageMeta) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.pages.Put(pageID, meta)
	e.rebuildIndex()
	e.results.invalidate()
}

// Stats returns counters about the current engine state.
func (e *Engine) Stats() map[string]int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	stats := map[string]int{
		"pages":         e.pages.Len(),
		"visitEntries":  e.visits.Len(),
		"rankablePages": len(e.variances),
	}
	if e.filter != nil {
		stats["bloomEnabled"] = 1
	} else {
		stats["bloomEnabled"] = 0
	}
	return stats
}
