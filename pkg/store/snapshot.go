package store

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// Snapshot is the msgpack document callers use to populate the stores at
// startup and persist them afterwards. The engine itself never touches disk.
type Snapshot struct {
	UserID string                 `msgpack:"user,omitempty"`
	Pages  map[string]PageMeta    `msgpack:"pages"`
	Visits map[string]*VisitEntry `msgpack:"visits"`
}

// LoadSnapshot reads and decodes a msgpack snapshot file.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot %s: %w", path, err)
	}
	var snap Snapshot
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decoding snapshot %s: %w", path, err)
	}
	log.Debugf("Loaded snapshot: %d pages, %d visit entries", len(snap.Pages), len(snap.Visits))
	return &snap, nil
}

// SaveSnapshot encodes and writes a snapshot file, replacing any existing one.
func SaveSnapshot(snap *Snapshot, path string) error {
	data, err := msgpack.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing snapshot %s: %w", path, err)
	}
	return nil
}

// Stores builds memory-backed registries from the snapshot contents.
func (s *Snapshot) Stores() (*MemoryRegistry, *MemoryVisits) {
	pages := s.Pages
	if pages == nil {
		pages = make(map[string]PageMeta)
	}
	visits := s.Visits
	if visits == nil {
		visits = make(map[string]*VisitEntry)
	}
	return NewMemoryRegistry(pages), NewMemoryVisits(visits)
}
