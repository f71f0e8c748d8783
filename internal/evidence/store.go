package evidence

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// Store is the persistence collaborator. Persist is best-effort from the
// caller's point of view; All returns the accumulated evidence.
type Store interface {
	Persist(ctx context.Context, rec Record) error
	All(ctx context.Context) ([]Record, error)
}

// Archiver receives completed records for long-term storage.
type Archiver interface {
	Archive(ctx context.Context, rec Record) error
}

// MemoryStore keeps the latest record per session in memory.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

func (m *MemoryStore) Persist(_ context.Context, rec Record) error {
	if rec.SessionID == "" {
		return errors.New("evidence: record without session id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.SessionID] = rec
	return nil
}

func (m *MemoryStore) All(_ context.Context) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Record, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, r)
	}
	sortRecords(out)
	return out, nil
}

func sortRecords(list []Record) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].StartedAt.Equal(list[j].StartedAt) {
			return list[i].SessionID < list[j].SessionID
		}
		return list[i].StartedAt.Before(list[j].StartedAt)
	})
}
