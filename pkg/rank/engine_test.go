package rank

import (
	"fmt"
	"testing"

	"github.com/bastiangx/launchrank/pkg/store"
)

func newTestEngine(t *testing.T, opts Options) *Engine {
	t.Helper()
	return New(store.NewMemoryRegistry(nil), store.NewMemoryVisits(nil), "test-user", opts)
}

// fixture: one well-visited page matching the query, one that only matches
// weakly and falls below the fuzzy cutoff
func newFixtureEngine(t *testing.T, opts Options) *Engine {
	t.Helper()
	pages := store.NewMemoryRegistry(map[string]store.PageMeta{
		"p1": {Title: "GitHub Pull Requests", URL: "github.com/pr"},
		"p2": {Title: "Google Docs", URL: "docs.google.com"},
	})
	visits := store.NewMemoryVisits(map[string]*store.VisitEntry{
		"p1": {
			Visits: []store.Visit{
				{Timestamp: 1000, Dwell: 30},
				{Timestamp: 1_086_400, Dwell: 45},
			},
			PersonalScore: 0.5,
		},
		"p2": {
			Visits:        []store.Visit{{Timestamp: 500_000, Dwell: 10}},
			PersonalScore: 0.5,
		},
	})
	return New(pages, visits, "test-user", opts)
}

func TestRankPagesEmptyQuery(t *testing.T) {
	engine := newFixtureEngine(t, Options{})

	for _, query := range []string{"", "   ", "\t\n"} {
		if got := engine.RankPages(query, 5, 1_100_000); len(got) != 0 {
			t.Errorf("RankPages(%q) = %v, want empty", query, got)
		}
	}
}

func TestRankPagesPrefixOverFuzzy(t *testing.T) {
	engine := newFixtureEngine(t, Options{})

	got := engine.RankPages("git", 5, 1_100_000)
	if len(got) != 1 || got[0] != "p1" {
		t.Errorf("RankPages('git') = %v, want [p1]", got)
	}
}

// a page the user never opened must not rank, no matter how well it matches
func TestRankPagesRequiresVisits(t *testing.T) {
	engine := newTestEngine(t, Options{})
	engine.UpdatePage("docs", store.PageMeta{Title: "API Documentation", URL: "internal/docs"})

	if got := engine.RankPages("api doc", 5, 1_100_000); len(got) != 0 {
		t.Errorf("RankPages on an unvisited page = %v, want empty", got)
	}

	// impressions alone create an entry but no visits, still unrankable
	engine.RecordImpression("docs")
	if got := engine.RankPages("api doc", 5, 1_100_000); len(got) != 0 {
		t.Errorf("RankPages after impression only = %v, want empty", got)
	}

	engine.RecordVisit("docs", 1_099_000, 10)
	got := engine.RankPages("api doc", 5, 1_100_000)
	if len(got) != 1 || got[0] != "docs" {
		t.Errorf("RankPages after first visit = %v, want [docs]", got)
	}
}

func TestRankPagesOrderedByVisitHistory(t *testing.T) {
	// push the sigmoid midpoint far out so the adaptive weight stays near 1
	// and the temporal terms actually separate the candidates
	engine := newTestEngine(t, Options{Mu: 2_000_000})
	now := int64(1_100_000)

	engine.UpdatePage("hot", store.PageMeta{Title: "git daily standup notes"})
	engine.UpdatePage("cold", store.PageMeta{Title: "git release checklist"})

	for _, ts := range []int64{now - 300, now - 200, now - 100, now - 50} {
		engine.RecordVisit("hot", ts, 30)
	}
	engine.RecordVisit("cold", now-2_000_000, 0)

	got := engine.RankPages("git", 5, now)
	if len(got) != 2 || got[0] != "hot" || got[1] != "cold" {
		t.Errorf("RankPages('git') = %v, want [hot cold]", got)
	}
}

func TestRankPagesTruncation(t *testing.T) {
	engine := newTestEngine(t, Options{Mu: 2_000_000})
	now := int64(1_100_000)

	for i := 0; i < 8; i++ {
		id := fmt.Sprintf("p%d", i)
		engine.UpdatePage(id, store.PageMeta{Title: fmt.Sprintf("git topic %d", i)})
		engine.RecordVisit(id, now-int64(100*(i+1)), 0)
	}

	if got := engine.RankPages("git", 3, now); len(got) != 3 {
		t.Errorf("RankPages with limit 3 returned %d results", len(got))
	}
	if got := engine.RankPages("git", 20, now); len(got) != 8 {
		t.Errorf("RankPages with limit 20 returned %d results, want all 8", len(got))
	}
}

// a duplicate metadata update must not change the ranking
func TestUpdatePageIdempotent(t *testing.T) {
	engine := newFixtureEngine(t, Options{Mu: 2_000_000})
	now := int64(1_100_000)

	before := engine.RankPages("git", 5, now)
	engine.UpdatePage("p1", store.PageMeta{Title: "GitHub Pull Requests", URL: "github.com/pr"})
	after := engine.RankPages("git", 5, now)

	if len(before) != len(after) {
		t.Fatalf("result length changed after idempotent update: %v vs %v", before, after)
	}
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("ordering changed after idempotent update: %v vs %v", before, after)
			break
		}
	}
}

func TestUpdatePageRetitles(t *testing.T) {
	engine := newFixtureEngine(t, Options{Mu: 2_000_000})
	now := int64(1_100_000)

	engine.UpdatePage("p1", store.PageMeta{Title: "Jira Backlog", URL: "jira.internal"})

	if got := engine.RankPages("git", 5, now); len(got) != 0 {
		t.Errorf("RankPages('git') after retitle = %v, want empty", got)
	}
	got := engine.RankPages("jira", 5, now)
	if len(got) != 1 || got[0] != "p1" {
		t.Errorf("RankPages('jira') after retitle = %v, want [p1]", got)
	}
}

// results are memoized per (query, limit, now); any write must invalidate
func TestRankPagesCacheInvalidation(t *testing.T) {
	engine := newTestEngine(t, Options{Mu: 2_000_000})
	now := int64(1_100_000)

	engine.UpdatePage("a", store.PageMeta{Title: "git log viewer"})
	engine.RecordVisit("a", now-500, 0)

	first := engine.RankPages("git", 5, now)
	if len(first) != 1 {
		t.Fatalf("warmup rank = %v, want one result", first)
	}

	engine.UpdatePage("b", store.PageMeta{Title: "git blame explorer"})
	engine.RecordVisit("b", now-100, 0)

	second := engine.RankPages("git", 5, now)
	if len(second) != 2 {
		t.Errorf("rank after new page = %v, cache was not invalidated", second)
	}
}

func TestRankPagesBloomEnabled(t *testing.T) {
	// the filter is a pre-check hint; output must be identical with it on
	plain := newFixtureEngine(t, Options{Mu: 2_000_000})
	bloomed := newFixtureEngine(t, Options{Mu: 2_000_000, UseBloom: true})
	now := int64(1_100_000)

	for _, query := range []string{"git", "google", "docs", "zzz"} {
		a := plain.RankPages(query, 5, now)
		b := bloomed.RankPages(query, 5, now)
		if len(a) != len(b) {
			t.Errorf("query %q: bloom changed results: %v vs %v", query, a, b)
			continue
		}
		for i := range a {
			if a[i] != b[i] {
				t.Errorf("query %q: bloom changed ordering: %v vs %v", query, a, b)
				break
			}
		}
	}
}

func TestStats(t *testing.T) {
	engine := newFixtureEngine(t, Options{})
	stats := engine.Stats()

	if stats["pages"] != 2 {
		t.Errorf("stats[pages] = %d, want 2", stats["pages"])
	}
	if stats["visitEntries"] != 2 {
		t.Errorf("stats[visitEntries] = %d, want 2", stats["visitEntries"])
	}
	if stats["rankablePages"] != 2 {
		t.Errorf("stats[rankablePages] = %d, want 2", stats["rankablePages"])
	}
	if stats["bloomEnabled"] != 0 {
		t.Errorf("stats[bloomEnabled] = %d, want 0", stats["bloomEnabled"])
	}
}

func BenchmarkRankPages(b *testing.B) {
	pages := store.NewMemoryRegistry(nil)
	visits := store.NewMemoryVisits(nil)
	engine := New(pages, visits, "bench-user", Options{Mu: 2_000_000, UseBloom: true})
	now := int64(1_100_000)

	for i := 0; i < 500; i++ {
		id := fmt.Sprintf("p%d", i)
		engine.UpdatePage(id, store.PageMeta{Title: fmt.Sprintf("project %d dashboard", i)})
		engine.RecordVisit(id, now-int64(i*60), float64(i%40))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		engine.RankPages("project 1", 10, now+int64(i)) // vary now to defeat the cache
	}
}
