package storage

import (
	"context"
	"sort"
	"sync"

	"guardrail-hq/sentinel/pkg/runlog"
)

// MemoryStorage implements runlog.Storage in memory. Entries are lost on
// exit; it serves tests and dry runs.
type MemoryStorage struct {
	mu      sync.RWMutex
	entries []*runlog.Entry
}

// NewMemoryStorage creates an empty in-memory backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Store implements runlog.Storage.
func (s *MemoryStorage) Store(ctx context.Context, entry *runlog.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *entry
	s.entries = append(s.entries, &cp)
	return nil
}

// Query implements runlog.Storage.
func (s *MemoryStorage) Query(ctx context.Context, q *runlog.Query) ([]*runlog.Entry, error) {
	s.mu.RLock()
	var matched []*runlog.Entry
	for _, e := range s.entries {
		if q.Matches(e) {
			cp := *e
			matched = append(matched, &cp)
		}
	}
	s.mu.RUnlock()

	return paginate(sortEntries(matched, q), q), nil
}

// Count implements runlog.Storage.
func (s *MemoryStorage) Count(ctx context.Context, q *runlog.Query) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, e := range s.entries {
		if q.Matches(e) {
			n++
		}
	}
	return n, nil
}

// Delete implements runlog.Storage.
func (s *MemoryStorage) Delete(ctx context.Context, q *runlog.Query) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.entries[:0]
	var deleted int64
	for _, e := range s.entries {
		if q.Matches(e) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	s.entries = kept
	return deleted, nil
}

// Ping implements runlog.Storage.
func (s *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}

// Close implements runlog.Storage.
func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	return nil
}

// Size returns the number of stored entries.
func (s *MemoryStorage) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// sortEntries orders entries by timestamp, keeping append order for equal
// timestamps. The default order is newest first.
func sortEntries(entries []*runlog.Entry, q *runlog.Query) []*runlog.Entry {
	asc := q != nil && q.SortOrder == "asc"
	sort.SliceStable(entries, func(i, j int) bool {
		if asc {
			return entries[i].Timestamp.Before(entries[j].Timestamp)
		}
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	return entries
}

func paginate(entries []*runlog.Entry, q *runlog.Query) []*runlog.Entry {
	if q == nil {
		return entries
	}
	if q.Offset >= len(entries) {
		return []*runlog.Entry{}
	}
	entries = entries[q.Offset:]
	if q.Limit > 0 && q.Limit < len(entries) {
		entries = entries[:q.Limit]
	}
	return entries
}
