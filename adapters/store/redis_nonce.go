package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/compass-app/gatekeeper/core"
	"github.com/compass-app/gatekeeper/ports"
)

// RedisNonceStore is a Redis implementation of the NonceStore interface.
// Take uses GETDEL so a challenge nonce can be read exactly once.
type RedisNonceStore struct {
	client *redis.Client
	prefix string
}

// NewRedisNonceStore creates a new Redis nonce store.
func NewRedisNonceStore(client *redis.Client) ports.NonceStore {
	return &RedisNonceStore{
		client: client,
		prefix: "gatekeeper:nonce:",
	}
}

// Put stores a nonce under the challenge id with the given TTL.
func (s *RedisNonceStore) Put(ctx context.Context, id, nonce string, ttl time.Duration) error {
	key := s.prefix + id

	if err := s.client.Set(ctx, key, nonce, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store nonce: %w", err)
	}

	return nil
}

// Take atomically returns and deletes the nonce for id.
func (s *RedisNonceStore) Take(ctx context.Context, id string) (string, error) {
	key := s.prefix + id

	nonce, err := s.client.GetDel(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", core.ErrNonceNotFound
		}
		return "", fmt.Errorf("failed to take nonce: %w", err)
	}

	return nonce, nil
}
