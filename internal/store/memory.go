package store

import (
	"context"
	"slices"
	"sync"
)

// InMemoryStore implements ResultStore for testing and for runs with
// history disabled.
type InMemoryStore struct {
	mu      sync.RWMutex
	records []Record // insertion order
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make([]Record, 0)}
}

// Save inserts rec or replaces the record with the same ID in place.
func (s *InMemoryStore) Save(ctx context.Context, rec Record) (string, error) {
	rec, err := prepare(rec)
	if err != nil {
		return "", err
	}
	rec.Payload = slices.Clone(rec.Payload)

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		if s.records[i].ID == rec.ID {
			s.records[i] = rec
			return rec.ID, nil
		}
	}
	s.records = append(s.records, rec)
	return rec.ID, nil
}

// Get returns a copy of the record with id, or nil if not found.
func (s *InMemoryStore) Get(ctx context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.records {
		if rec.ID == id {
			rec.Payload = slices.Clone(rec.Payload)
			return &rec, nil
		}
	}
	return nil, nil
}

// List returns records newest first.
func (s *InMemoryStore) List(ctx context.Context, filter Filter) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Record, 0, len(s.records))
	for i := len(s.records) - 1; i >= 0; i-- {
		rec := s.records[i]
		if filter.Kind != "" && rec.Kind != filter.Kind {
			continue
		}
		rec.Payload = slices.Clone(rec.Payload)
		out = append(out, rec)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

// Delete removes the record with id.
func (s *InMemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = slices.DeleteFunc(s.records, func(r Record) bool { return r.ID == id })
	return nil
}

// Close is a no-op.
func (s *InMemoryStore) Close() error {
	return nil
}
