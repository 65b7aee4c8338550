package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hirehub/portal-core/internal/core/ports"
)

// SessionRecords stores serialized session records as plain Redis strings
// with a TTL. Values are opaque to this layer.
type SessionRecords struct {
	client redis.Cmdable
}

// NewSessionRecords wraps the given Redis client.
func NewSessionRecords(client redis.Cmdable) *SessionRecords {
	return &SessionRecords{client: client}
}

// Get returns the raw record at key or ports.ErrRecordNotFound.
func (s *SessionRecords) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	b, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ports.ErrRecordNotFound
		}
		return nil, fmt.Errorf("session get: %w", err)
	}
	return b, nil
}

// Put overwrites the record at key. A non-positive ttl stores it without
// expiry.
func (s *SessionRecords) Put(ctx context.Context, key string, record []byte, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if ttl < 0 {
		ttl = 0
	}
	if err := s.client.Set(ctx, key, record, ttl).Err(); err != nil {
		return fmt.Errorf("session put: %w", err)
	}
	return nil
}

// Delete removes the record at key. Deleting a missing key is not an error.
func (s *SessionRecords) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("session delete: %w", err)
	}
	return nil
}
