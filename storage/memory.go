package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/richinex/slidesmith/internal/dsa"
)

// InMemoryHistory implements HistoryStore on a radix tree keyed by id.
// Data is lost when process terminates.
type InMemoryHistory struct {
	mu      sync.RWMutex
	records *dsa.Trie[Record]
}

// NewInMemoryHistory creates a new in-memory history.
func NewInMemoryHistory() *InMemoryHistory {
	return &InMemoryHistory{
		records: dsa.NewTrie[Record](),
	}
}

// Save stores a record, replacing any record with the same id.
func (s *InMemoryHistory) Save(ctx context.Context, rec Record) (Record, error) {
	rec = stamp(rec)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records.Insert(rec.ID, rec)
	return rec, nil
}

// Get returns a record by id.
func (s *InMemoryHistory) Get(ctx context.Context, id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records.Search(id)
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

// List returns records newest first.
func (s *InMemoryHistory) List(ctx context.Context, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]Record, 0, s.records.Len())
	s.records.ForEach(func(_ string, rec Record) {
		records = append(records, rec)
	})
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// Resolve expands an id prefix.
func (s *InMemoryHistory) Resolve(ctx context.Context, prefix string) (string, error) {
	if prefix == "" {
		return "", ErrNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Keys come back sorted, so an exact match is always first.
	return pickMatch(prefix, s.records.StartsWith(prefix, 2))
}

// Verify InMemoryHistory implements HistoryStore
var _ HistoryStore = (*InMemoryHistory)(nil)
