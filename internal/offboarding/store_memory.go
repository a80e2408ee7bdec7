package offboarding

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store for tests and local development.
type MemoryStore struct {
	mu      sync.RWMutex
	records []Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Save(_ context.Context, record Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.OffboardedAt.IsZero() {
		record.OffboardedAt = time.Now().UTC()
	}
	record.RevokedSystems = append([]string(nil), record.RevokedSystems...)
	s.records = append(s.records, record)
	return record, nil
}

func (s *MemoryStore) History(_ context.Context, f HistoryFilters) ([]Record, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []Record
	for _, r := range s.records {
		if f.Registration != "" && r.Registration != f.Registration {
			continue
		}
		matched = append(matched, r)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].OffboardedAt.After(matched[j].OffboardedAt)
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
	return append([]Record(nil), matched[offset:end]...), total, nil
}

// All returns a copy of every stored record. Test helper.
func (s *MemoryStore) All() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Record(nil), s.records...)
}
