package attempts

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store for tests and single-node embedding.
type MemoryStore struct {
	mu      sync.Mutex
	records []Record
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Insert appends the record and returns its id.
func (s *MemoryStore) Insert(_ context.Context, record Record) (string, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, record)
	return record.ID, nil
}

// All returns a copy of every stored record in insertion order.
func (s *MemoryStore) All() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}
