package rank

import (
	"math"
	"strings"

	"github.com/xrash/smetrics"

	"github.com/bastiangx/launchrank/pkg/store"
)

const (
	// prefix matches always score at least prefixBase, with up to
	// prefixLengthWeight extra for tighter-length matches.
	prefixBase         = 0.8
	prefixLengthWeight = 0.2

	// fuzzy similarities below the cutoff get no partial credit.
	similarityCutoff = 0.7

	jaroWinklerBoostThreshold = 0.7
	jaroWinklerPrefixSize     = 4
)

// Similarity scores how well query matches text, case-insensitively.
// Exact-prefix matches score in [0.8, 1.0] favoring similar lengths; anything
// else falls through to Jaro-Winkler with a hard cutoff at 0.7.
func Similarity(query, text string) float64 {
	q := strings.ToLower(query)
	t := strings.ToLower(text)
	if q == "" || t == "" {
		return 0
	}
	if strings.HasPrefix(t, q) {
		return prefixBase + prefixLengthWeight*math.Min(1, float64(len(q))/float64(len(t)))
	}
	jw := smetrics.JaroWinkler(q, t, jaroWinklerBoostThreshold, jaroWinklerPrefixSize)
	if jw < similarityCutoff {
		return 0
	}
	return jw
}

// TextMatch is the match quality of a page against a query: the better of
// its title and URL similarity.
func TextMatch(query string, meta store.PageMeta) float64 {
	return math.Max(Similarity(query, meta.Title), Similarity(query, meta.URL))
}
