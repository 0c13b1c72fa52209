package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "tutor:session:"

// RedisKey returns the list key holding a session's turns.
func RedisKey(id string) string {
	return redisKeyPrefix + id
}

// RedisStore keeps each session as a Redis list of JSON-encoded turns.
// Every write refreshes the key's TTL, so idle sessions expire on their own.
type RedisStore struct {
	client   *redis.Client
	ttl      time.Duration
	maxTurns int
}

// NewRedisStore wraps an existing client. ttl <= 0 disables expiry and
// maxTurns <= 0 disables trimming.
func NewRedisStore(client *redis.Client, ttl time.Duration, maxTurns int) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, maxTurns: maxTurns}
}

func (s *RedisStore) Append(ctx context.Context, id string, turn Turn) error {
	val, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("encoding turn: %w", err)
	}

	key := RedisKey(id)
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, val)
	if s.maxTurns > 0 {
		pipe.LTrim(ctx, key, int64(-s.maxTurns), -1)
	}
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis append: %w", err)
	}
	return nil
}

func (s *RedisStore) Recent(ctx context.Context, id string, n int) ([]Turn, error) {
	start := int64(0)
	if n > 0 {
		start = int64(-n)
	}
	vals, err := s.client.LRange(ctx, RedisKey(id), start, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis range: %w", err)
	}

	turns := make([]Turn, 0, len(vals))
	for _, v := range vals {
		var t Turn
		if err := json.Unmarshal([]byte(v), &t); err != nil {
			return nil, fmt.Errorf("decoding turn: %w", err)
		}
		turns = append(turns, t)
	}
	return turns, nil
}

func (s *RedisStore) Len(ctx context.Context, id string) (int, error) {
	n, err := s.client.LLen(ctx, RedisKey(id)).Result()
	if err != nil {
		return 0, fmt.Errorf("redis len: %w", err)
	}
	return int(n), nil
}

func (s *RedisStore) Clear(ctx context.Context, id string) error {
	// DEL on a missing key returns 0, not an error
	if err := s.client.Del(ctx, RedisKey(id)).Err(); err != nil {
		return fmt.Errorf("redis clear: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
