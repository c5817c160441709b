package idempotency

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Key layout: idem:pos:checkout:{key} -> order id (or in-progress marker).
const keyPrefix = "idem:pos:checkout:%s"

const inProgress = "__in_progress__"

// RedisAPI is the subset of the go-redis client the store uses.
// Narrowed for mocking in tests.
type RedisAPI interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Store guards checkout against client double-submits using an
// Idempotency-Key header. A key is claimed before the checkout
// transaction starts, recorded with the order id on success, and
// released on failure so the client may retry.
type Store struct {
	client RedisAPI
	ttl    time.Duration
	logger zerolog.Logger
}

// NewStore creates an idempotency store with the given key TTL.
func NewStore(client RedisAPI, ttl time.Duration, logger zerolog.Logger) *Store {
	return &Store{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "idempotency").Logger(),
	}
}

// Claim attempts to claim a key. It returns false when the key was
// already claimed by an earlier request.
func (s *Store) Claim(ctx context.Context, key string) (bool, error) {
	ok, err := s.client.SetNX(ctx, fmt.Sprintf(keyPrefix, key), inProgress, s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim idempotency key: %w", err)
	}
	if !ok {
		s.logger.Warn().Str("key", key).Msg("duplicate checkout request")
	}
	return ok, nil
}

// Complete records the order id produced under a claimed key.
func (s *Store) Complete(ctx context.Context, key, orderID string) error {
	if err := s.client.Set(ctx, fmt.Sprintf(keyPrefix, key), orderID, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to complete idempotency key: %w", err)
	}
	return nil
}

// Release frees a claimed key after a failed checkout so the client may
// retry with the same key.
func (s *Store) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, fmt.Sprintf(keyPrefix, key)).Err(); err != nil {
		return fmt.Errorf("failed to release idempotency key: %w", err)
	}
	return nil
}
