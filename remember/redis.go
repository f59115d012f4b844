package remember

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists tokens as one hash per selector with a matching key
// TTL, plus a per-user selector set so DeleteAllForUser needs no scan of
// the token keyspace. Redis expires token keys on its own; PurgeExpired
// reconciles the per-user sets against keys the TTL already removed.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a RedisStore using the given key prefix.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "guard"
	}
	return &RedisStore{
		client: client,
		prefix: prefix,
	}
}

func (s *RedisStore) tokenKey(selector string) string {
	return s.prefix + ":remember:" + selector
}

func (s *RedisStore) userKey(userID string) string {
	return s.prefix + ":remember:user:" + userID
}

// Save describes the save operation and its observable behavior.
func (s *RedisStore) Save(ctx context.Context, token Token) error {
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, s.tokenKey(token.Selector), map[string]interface{}{
		"user_id":        token.UserID,
		"validator_hash": token.ValidatorHash,
		"expires_at":     token.ExpiresAt.Unix(),
	})
	pipe.ExpireAt(ctx, s.tokenKey(token.Selector), token.ExpiresAt)
	pipe.SAdd(ctx, s.userKey(token.UserID), token.Selector)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("remember: redis save: %w", err)
	}
	return nil
}

// FindBySelector describes the findbyselector operation and its observable behavior.
func (s *RedisStore) FindBySelector(ctx context.Context, selector string) (*Token, error) {
	fields, err := s.client.HGetAll(ctx, s.tokenKey(selector)).Result()
	if err != nil {
		return nil, fmt.Errorf("remember: redis lookup: %w", err)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	expiresAt, err := strconv.ParseInt(fields["expires_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("remember: corrupt expiry for selector %q", selector)
	}

	return &Token{
		UserID:        fields["user_id"],
		Selector:      selector,
		ValidatorHash: fields["validator_hash"],
		ExpiresAt:     time.Unix(expiresAt, 0),
	}, nil
}

// DeleteBySelector describes the deletebyselector operation and its observable behavior.
func (s *RedisStore) DeleteBySelector(ctx context.Context, selector string) error {
	userID, err := s.client.HGet(ctx, s.tokenKey(selector), "user_id").Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("remember: redis delete: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.tokenKey(selector))
	if userID != "" {
		pipe.SRem(ctx, s.userKey(userID), selector)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("remember: redis delete: %w", err)
	}
	return nil
}

// DeleteAllForUser describes the deleteallforuser operation and its observable behavior.
func (s *RedisStore) DeleteAllForUser(ctx context.Context, userID string) error {
	selectors, err := s.client.SMembers(ctx, s.userKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("remember: redis revoke: %w", err)
	}

	pipe := s.client.TxPipeline()
	for _, selector := range selectors {
		pipe.Del(ctx, s.tokenKey(selector))
	}
	pipe.Del(ctx, s.userKey(userID))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("remember: redis revoke: %w", err)
	}
	return nil
}

// PurgeExpired removes per-user index entries whose token keys the Redis
// TTL has already reclaimed. Safe to run concurrently; a selector observed
// by two sweeps is only counted by the one that removes it.
func (s *RedisStore) PurgeExpired(ctx context.Context) (int, error) {
	var (
		purged int
		cursor uint64
	)

	for {
		keys, next, err := s.client.Scan(ctx, cursor, s.prefix+":remember:user:*", 64).Result()
		if err != nil {
			return purged, fmt.Errorf("remember: redis purge scan: %w", err)
		}

		for _, userKey := range keys {
			selectors, err := s.client.SMembers(ctx, userKey).Result()
			if err != nil {
				return purged, fmt.Errorf("remember: redis purge members: %w", err)
			}
			for _, selector := range selectors {
				exists, err := s.client.Exists(ctx, s.tokenKey(selector)).Result()
				if err != nil {
					return purged, fmt.Errorf("remember: redis purge exists: %w", err)
				}
				if exists == 0 {
					removed, err := s.client.SRem(ctx, userKey, selector).Result()
					if err != nil {
						return purged, fmt.Errorf("remember: redis purge remove: %w", err)
					}
					purged += int(removed)
				}
			}
		}

		cursor = next
		if cursor == 0 {
			return purged, nil
		}
	}
}
