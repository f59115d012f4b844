package session

import (
	"context"

	"github.com/google/uuid"
)

// MemoryStore is an in-process SessionStore for tests. Like the production
// store it is scoped to a single request unit, so it carries no lock.
type MemoryStore struct {
	id     string
	values map[string]string
	// Regenerations records each RegenerateID call's destroyOld flag so
	// tests can assert fixation handling.
	Regenerations []bool
}

// NewMemoryStore creates an empty MemoryStore with a fresh identifier.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		id:     uuid.NewString(),
		values: make(map[string]string),
	}
}

// ID returns the current session identifier.
func (s *MemoryStore) ID() string {
	return s.id
}

// Get describes the get operation and its observable behavior.
func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	return s.values[key], nil
}

// Set describes the set operation and its observable behavior.
func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.values[key] = value
	return nil
}

// Delete describes the delete operation and its observable behavior.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	delete(s.values, key)
	return nil
}

// Clear describes the clear operation and its observable behavior.
func (s *MemoryStore) Clear(_ context.Context) error {
	s.values = make(map[string]string)
	return nil
}

// RegenerateID switches to a fresh identifier; the data always migrates
// with it, so destroyOld only affects external copies (none here).
func (s *MemoryStore) RegenerateID(_ context.Context, destroyOld bool) error {
	s.id = uuid.NewString()
	s.Regenerations = append(s.Regenerations, destroyOld)
	return nil
}

// Len reports the number of stored keys.
func (s *MemoryStore) Len() int {
	return len(s.values)
}
