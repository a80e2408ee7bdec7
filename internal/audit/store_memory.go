package audit

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store for tests and local development.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
	nextID  int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

func (s *MemoryStore) Append(_ context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry.ID = s.nextID
	s.nextID++
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	s.entries = append(s.entries, entry)
	return nil
}

func (s *MemoryStore) List(_ context.Context, f ListFilters) ([]Entry, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []Entry
	for _, e := range s.entries {
		if f.Action != "" && e.Action != f.Action {
			continue
		}
		if f.Username != "" && e.ActorUsername != f.Username {
			continue
		}
		if f.Status != "" && e.Status != f.Status {
			continue
		}
		if f.DateFrom != nil && e.CreatedAt.Before(*f.DateFrom) {
			continue
		}
		if f.DateTo != nil && e.CreatedAt.After(*f.DateTo) {
			continue
		}
		matched = append(matched, e)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	offset := (f.Page - 1) * f.Limit
	if offset >= total {
		return nil, total, nil
	}
	end := offset + f.Limit
	if f.Limit <= 0 || end > total {
		end = total
	}
	return append([]Entry(nil), matched[offset:end]...), total, nil
}

func (s *MemoryStore) DeleteOlderThan(_ context.Context, action Action, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.entries[:0]
	deleted := 0
	for _, e := range s.entries {
		if e.Action == action && e.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	s.entries = kept
	return deleted, nil
}

// All returns a copy of every stored entry, newest last. Test helper.
func (s *MemoryStore) All() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Entry(nil), s.entries...)
}
