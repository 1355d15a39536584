package rank

import (
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
)

// maxIndexedPrefix caps how many leading bytes of each title feed the filter;
// longer queries are truncated to the same length before testing.
const maxIndexedPrefix = 32

// Filter is an approximate-membership pre-check over indexed title prefixes.
// A positive answer may be wrong, a negative answer never is for anything
// previously added. Callers must treat a miss as a hint only and still fall
// back to a full scan; the filter's absence changes candidate-generation
// cost, never ranking output.
type Filter struct {
	bits *bloom.BloomFilter
}

// NewFilter sizes a filter for the expected number of prefix tokens and the
// target false-positive rate using the standard bit-array and hash-count
// estimates.
func NewFilter(capacity int, fpRate float64) *Filter {
	if capacity <= 0 {
		capacity = DefaultBloomCapacity
	}
	if fpRate <= 0 || fpRate >= 1 {
		fpRate = DefaultBloomFPRate
	}
	return &Filter{bits: bloom.NewWithEstimates(uint(capacity), fpRate)}
}

// Add records a single lowercased token.
func (f *Filter) Add(token string) {
	f.bits.AddString(strings.ToLower(token))
}

// AddTitle records every prefix of the lowercased title up to
// maxIndexedPrefix bytes.
func (f *Filter) AddTitle(title string) {
	lower := strings.ToLower(title)
	if len(lower) > maxIndexedPrefix {
		lower = lower[:maxIndexedPrefix]
	}
	for i := 1; i <= len(lower); i++ {
		f.bits.AddString(lower[:i])
	}
}

// MightContain reports whether token could be a prefix of any indexed title.
func (f *Filter) MightContain(token string) bool {
	lower := strings.ToLower(token)
	if len(lower) > maxIndexedPrefix {
		lower = lower[:maxIndexedPrefix]
	}
	return f.bits.TestString(lower)
}
