package remember

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store for tests and single-node embedding.
// Unlike [RedisStore] it has no TTL machinery, so PurgeExpired does the
// expiry comparison itself.
type MemoryStore struct {
	mu     sync.Mutex
	tokens map[string]Token
	now    func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tokens: make(map[string]Token),
		now:    time.Now,
	}
}

// Save describes the save operation and its observable behavior.
func (s *MemoryStore) Save(_ context.Context, token Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens[token.Selector] = token
	return nil
}

// FindBySelector describes the findbyselector operation and its observable behavior.
func (s *MemoryStore) FindBySelector(_ context.Context, selector string) (*Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, ok := s.tokens[selector]
	if !ok {
		return nil, nil
	}
	return &token, nil
}

// DeleteBySelector describes the deletebyselector operation and its observable behavior.
func (s *MemoryStore) DeleteBySelector(_ context.Context, selector string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tokens, selector)
	return nil
}

// DeleteAllForUser describes the deleteallforuser operation and its observable behavior.
func (s *MemoryStore) DeleteAllForUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for selector, token := range s.tokens {
		if token.UserID == userID {
			delete(s.tokens, selector)
		}
	}
	return nil
}

// PurgeExpired describes the purgeexpired operation and its observable behavior.
func (s *MemoryStore) PurgeExpired(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	purged := 0
	for selector, token := range s.tokens {
		if token.Expired(now) {
			delete(s.tokens, selector)
			purged++
		}
	}
	return purged, nil
}

// Len reports the number of stored tokens.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.tokens)
}
