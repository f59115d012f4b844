package attempts

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore appends attempt records to a Redis list as JSON rows, newest
// first. Retention is left to an external purge job.
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

func (s *RedisStore) key() string {
	return s.prefix + ":attempts"
}

// Insert appends the record and returns its id, assigning one when the
// caller left it empty.
func (s *RedisStore) Insert(ctx context.Context, record Record) (string, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}

	data, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("attempts: encode record: %w", err)
	}
	if err := s.client.LPush(ctx, s.key(), data).Err(); err != nil {
		return "", fmt.Errorf("attempts: insert record: %w", err)
	}

	return record.ID, nil
}

// Recent returns up to n of the most recently inserted records, newest
// first. Rows that fail to decode are skipped.
func (s *RedisStore) Recent(ctx context.Context, n int64) ([]Record, error) {
	if n <= 0 {
		return nil, nil
	}

	rows, err := s.client.LRange(ctx, s.key(), 0, n-1).Result()
	if err != nil {
		return nil, fmt.Errorf("attempts: read records: %w", err)
	}

	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		var record Record
		if err := json.Unmarshal([]byte(row), &record); err != nil {
			continue
		}
		records = append(records, record)
	}

	return records, nil
}
