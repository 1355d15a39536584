package rank

import (
	"sort"
	"testing"
)

func sortedMatches(x *PrefixIndex, prefix string) []int {
	out := x.PrefixMatches(prefix)
	sort.Ints(out)
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestPrefixIndexMatches(t *testing.T) {
	index := NewPrefixIndex()
	index.Insert("apple", 0)
	index.Insert("app", 1)
	index.Insert("banana", 2)

	testCases := []struct {
		prefix      string
		want        []int
		description string
	}{
		{"ap", []int{0, 1}, "Shared prefix hits both"},
		{"app", []int{0, 1}, "Exact title is also a prefix"},
		{"appl", []int{0}, "Longer prefix narrows to one"},
		{"apple", []int{0}, "Full title"},
		{"banana", []int{2}, "Disjoint branch"},
		{"bananas", nil, "Prefix longer than any title"},
		{"cherry", nil, "Unknown prefix"},
		{"", nil, "Empty prefix"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			got := sortedMatches(index, tc.prefix)
			if !equalInts(got, tc.want) {
				t.Errorf("PrefixMatches(%q) = %v, want %v", tc.prefix, got, tc.want)
			}
		})
	}
}

func TestPrefixIndexCaseInsensitive(t *testing.T) {
	index := NewPrefixIndex()
	index.Insert("GitHub Pull Requests", 0)

	for _, prefix := range []string{"github", "GITHUB", "GitHub Pull"} {
		if got := index.PrefixMatches(prefix); len(got) != 1 || got[0] != 0 {
			t.Errorf("PrefixMatches(%q) = %v, want [0]", prefix, got)
		}
	}
}

// two pages sharing one title must both come back
func TestPrefixIndexDuplicateTitles(t *testing.T) {
	index := NewPrefixIndex()
	index.Insert("settings", 3)
	index.Insert("settings", 7)

	got := sortedMatches(index, "sett")
	if !equalInts(got, []int{3, 7}) {
		t.Errorf("PrefixMatches('sett') = %v, want [3 7]", got)
	}
}

func BenchmarkPrefixMatches(b *testing.B) {
	index := NewPrefixIndex()
	titles := []string{
		"github pull requests", "github issues", "gitlab boards",
		"google docs", "google drive", "gmail inbox",
		"grafana dashboards", "jira backlog", "slack general",
	}
	for i, title := range titles {
		index.Insert(title, i)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		index.PrefixMatches("gi")
	}
}
