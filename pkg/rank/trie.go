package rank

import (
	"strings"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// PrefixIndex maps lowercased title prefixes to the page indices whose title
// starts with that prefix. It is rebuilt wholesale whenever the page set
// changes, never patched incrementally.
type PrefixIndex struct {
	trie *patricia.Trie
}

// NewPrefixIndex creates an empty index.
func NewPrefixIndex() *PrefixIndex {
	return &PrefixIndex{trie: patricia.NewTrie()}
}

// Insert records pageIndex under every prefix of the lowercased title.
func (x *PrefixIndex) Insert(title string, pageIndex int) {
	key := patricia.Prefix(strings.ToLower(title))
	if len(key) == 0 {
		return
	}
	if item := x.trie.Get(key); item != nil {
		if indices, ok := item.([]int); ok {
			x.trie.Set(key, append(indices, pageIndex))
			return
		}
		log.Errorf("Unknown item type in prefix index: %T for key %s", item, key)
	}
	x.trie.Insert(key, []int{pageIndex})
}

// PrefixMatches returns the indices of every page whose lowercased title has
// prefix as its own first characters. The result may contain duplicates;
// callers dedupe. Unknown prefixes return nil.
func (x *PrefixIndex) PrefixMatches(prefix string) []int {
	lower := strings.ToLower(prefix)
	if lower == "" {
		return nil
	}
	var out []int
	err := x.trie.VisitSubtree(patricia.Prefix(lower), func(p patricia.Prefix, item patricia.Item) error {
		indices, ok := item.([]int)
		if !ok {
			log.Errorf("Unknown item type in prefix index: %T for key %s", item, p)
			return nil
		}
		out = append(out, indices...)
		return nil
	})
	if err != nil {
		log.Errorf("Error visiting trie subtree: %v", err)
		return nil
	}
	return out
}
