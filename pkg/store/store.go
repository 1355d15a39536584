// Package store defines the page and visit registries the ranking engine
// reads and mutates. The engine owns all mutation; callers own persistence.
package store

import "sort"

// PageMeta is an immutable snapshot of a page. Updates replace the whole
// value, fields are never merged individually.
type PageMeta struct {
	Title    string   `msgpack:"title"`
	URL      string   `msgpack:"url"`
	Category string   `msgpack:"category,omitempty"`
	Tags     []string `msgpack:"tags,omitempty"`
}

// Visit is one recorded navigation to a page. Dwell is seconds spent on the
// page, 0 when unknown.
type Visit struct {
	Timestamp int64   `msgpack:"t"`
	Dwell     float64 `msgpack:"d,omitempty"`
}

// VisitEntry holds the visit history and personalization state for one page.
// Entries are created lazily on the first recorded visit or feedback event.
type VisitEntry struct {
	Visits            []Visit `msgpack:"v"`
	PersonalScore     float64 `msgpack:"p"`
	LastReinforcement int64   `msgpack:"r,omitempty"`
}

// Append inserts a visit keeping Visits ordered by timestamp ascending.
func (e *VisitEntry) Append(v Visit) {
	n := len(e.Visits)
	if n == 0 || e.Visits[n-1].Timestamp <= v.Timestamp {
		e.Visits = append(e.Visits, v)
		return
	}
	i := sort.Search(n, func(i int) bool { return e.Visits[i].Timestamp > v.Timestamp })
	e.Visits = append(e.Visits, Visit{})
	copy(e.Visits[i+1:], e.Visits[i:])
	e.Visits[i] = v
}

// Timestamps returns the visit timestamps as float64 seconds, in order.
func (e *VisitEntry) Timestamps() []float64 {
	ts := make([]float64, len(e.Visits))
	for i, v := range e.Visits {
		ts[i] = float64(v.Timestamp)
	}
	return ts
}

// PageRegistry maps page IDs to their metadata. Its keys define the universe
// of rankable pages. Implementations never delete pages.
type PageRegistry interface {
	Get(id string) (PageMeta, bool)
	Put(id string, meta PageMeta)
	// IDs returns every page ID in a stable, sorted order.
	IDs() []string
	Len() int
}

// VisitsStore maps page IDs to their visit entries.
type VisitsStore interface {
	Get(id string) (*VisitEntry, bool)
	// GetOrCreate returns the entry for id, creating one with a neutral
	// personalization score when missing.
	GetOrCreate(id string) *VisitEntry
	IDs() []string
	Len() int
}

// NeutralPersonalScore is the personalization score of a page that has
// received no click or impression feedback yet.
const NeutralPersonalScore = 0.5

// MemoryRegistry is the in-memory PageRegistry implementation.
type MemoryRegistry struct {
	pages map[string]PageMeta
}

// NewMemoryRegistry wraps an existing pageID -> metadata map. A nil seed
// starts empty. The map is owned by the registry afterwards.
func NewMemoryRegistry(seed map[string]PageMeta) *MemoryRegistry {
	if seed == nil {
		seed = make(map[string]PageMeta)
	}
	return &MemoryRegistry{pages: seed}
}

func (r *MemoryRegistry) Get(id string) (PageMeta, bool) {
	meta, ok := r.pages[id]
	return meta, ok
}

func (r *MemoryRegistry) Put(id string, meta PageMeta) {
	r.pages[id] = meta
}

func (r *MemoryRegistry) IDs() []string {
	ids := make([]string, 0, len(r.pages))
	for id := range r.pages {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (r *MemoryRegistry) Len() int { return len(r.pages) }

// MemoryVisits is the in-memory VisitsStore implementation.
type MemoryVisits struct {
	entries map[string]*VisitEntry
}

// NewMemoryVisits wraps an existing pageID -> entry map. A nil seed starts
// empty. The map is owned by the store afterwards.
func NewMemoryVisits(seed map[string]*VisitEntry) *MemoryVisits {
	if seed == nil {
		seed = make(map[string]*VisitEntry)
	}
	return &MemoryVisits{entries: seed}
}

func (s *MemoryVisits) Get(id string) (*VisitEntry, bool) {
	entry, ok := s.entries[id]
	return entry, ok
}

func (s *MemoryVisits) GetOrCreate(id string) *VisitEntry {
	if entry, ok := s.entries[id]; ok {
		return entry
	}
	entry := &VisitEntry{PersonalScore: NeutralPersonalScore}
	s.entries[id] = entry
	return entry
}

func (s *MemoryVisits) IDs() []string {
	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *MemoryVisits) Len() int { return len(s.entries) }
