package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore binds one session (one Redis hash) to one request-processing
// unit. It is not safe for concurrent use by multiple requests; each request
// gets its own instance over a shared client, matching the engine's
// per-request Guard scoping.
type RedisStore struct {
	client   *redis.Client
	prefix   string
	lifetime time.Duration
	id       string
}

// NewRedisStore creates a store bound to a fresh session identifier.
// lifetime of zero disables key expiry.
func NewRedisStore(client *redis.Client, prefix string, lifetime time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "guard"
	}
	return &RedisStore{
		client:   client,
		prefix:   prefix,
		lifetime: lifetime,
		id:       uuid.NewString(),
	}
}

// NewRedisStoreWithID creates a store resuming an existing session
// identifier, typically read from the caller's session cookie.
func NewRedisStoreWithID(client *redis.Client, prefix string, lifetime time.Duration, id string) *RedisStore {
	s := NewRedisStore(client, prefix, lifetime)
	if id != "" {
		s.id = id
	}
	return s
}

// ID returns the current session identifier.
func (s *RedisStore) ID() string {
	return s.id
}

func (s *RedisStore) key(id string) string {
	return s.prefix + ":session:" + id
}

// Get returns ("", nil) when the key is absent.
func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.HGet(ctx, s.key(s.id), key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("session: redis get: %w", err)
	}
	return value, nil
}

// Set describes the set operation and its observable behavior.
func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, s.key(s.id), key, value)
	if s.lifetime > 0 {
		pipe.Expire(ctx, s.key(s.id), s.lifetime)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("session: redis set: %w", err)
	}
	return nil
}

// Delete describes the delete operation and its observable behavior.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.HDel(ctx, s.key(s.id), key).Err(); err != nil {
		return fmt.Errorf("session: redis delete: %w", err)
	}
	return nil
}

// Clear removes every key of the current session. The session itself stays
// usable for subsequent writes under the same identifier.
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key(s.id)).Err(); err != nil {
		return fmt.Errorf("session: redis clear: %w", err)
	}
	return nil
}

// RegenerateID switches to a fresh identifier, copying the current data to
// it. destroyOld removes the old identifier's data; when false the old data
// is left to expire on its own, mirroring PHP-style regeneration.
func (s *RedisStore) RegenerateID(ctx context.Context, destroyOld bool) error {
	newID := uuid.NewString()

	copied, err := s.client.Copy(ctx, s.key(s.id), s.key(newID), 0, true).Result()
	if err != nil {
		return fmt.Errorf("session: redis regenerate: %w", err)
	}
	if copied > 0 && s.lifetime > 0 {
		if err := s.client.Expire(ctx, s.key(newID), s.lifetime).Err(); err != nil {
			return fmt.Errorf("session: redis regenerate: %w", err)
		}
	}
	if destroyOld {
		if err := s.client.Del(ctx, s.key(s.id)).Err(); err != nil {
			return fmt.Errorf("session: redis regenerate: %w", err)
		}
	}

	s.id = newID
	return nil
}
