/*
Package rank is the core in-memory ranking engine for quick-launch page
search.

Given a partial query it returns the user's own previously visited pages most
likely to be the intended destination, ordered by a composite score that
blends string-match quality, temporal recency and regularity of visiting
behavior, and a reinforcement-learned personalization signal.

# Candidate generation

A patricia trie over lowercased page titles answers prefix queries in
O(query length). When the trie yields fewer candidates than requested, a
linear fuzzy scan over the whole registry fills the gap using prefix-boosted
Jaro-Winkler similarity with a hard 0.7 cutoff. An optional Bloom filter
gives a cheap membership hint before the scan; a negative hint is logged but
never excludes anything (false positives are tolerated, false negatives do
not occur).

# Scoring

Each candidate's score is

	matchQuality * weightedSum * regularity * (0.5 + personalScore)

where weightedSum accumulates per-visit decay weights (exponential recency
decay scaled by the page's Bayesian variance estimate, a dwell-time boost,
and a session boost for visits inside the session window) times a
log-frequency term, all scaled by a sigmoid adaptive weight. Regularity is
the inverse coefficient of variation of inter-visit intervals times a
normalized Shannon entropy factor. Non-finite scores fall back to match
quality alone, and strong text matches are floored so weak temporal signal
cannot drown them out.

No operation here performs I/O or returns errors: every edge case degrades
to a defined default and a query simply yields fewer or zero results.

# Concurrency

RankPages is a pure read over current state and may run concurrently.
Mutations (RecordVisit, RecordClick, RecordImpression, UpdatePage) take an
exclusive lock; UpdatePage rebuilds the trie and Bloom filter wholesale, and
readers never observe a partially rebuilt index.
*/
package rank

import "github.com/bastiangx/launchrank/pkg/store"

// Ranker is the engine surface consumed by the UI/search layer.
type Ranker interface {
	// RankPages returns up to maxResults page IDs ordered by descending
	// relevance to query at reference time now (epoch seconds).
	// maxResults <= 0 means the default limit, now <= 0 means current time.
	RankPages(query string, maxResults int, now int64) []string

	// RecordVisit appends a visit for a page. Dwell is seconds, 0 when unknown.
	RecordVisit(pageID string, visitTime int64, dwell float64)

	// RecordClick reinforces a page toward 1 after the user picked it from
	// results, and records a synthetic visit at click time.
	RecordClick(pageID string, now int64)

	// RecordImpression nudges a shown-but-unclicked page toward 0.
	RecordImpression(pageID string)

	// UpdatePage replaces a page's metadata wholesale and rebuilds indices.
	UpdatePage(pageID string, meta store.PageMeta)

	// Stats returns counters about the current engine state.
	Stats() map[string]int
}
