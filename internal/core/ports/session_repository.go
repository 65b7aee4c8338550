package ports

import (
	"context"
	"errors"
	"time"
)

// ErrRecordNotFound is returned by SessionRecordRepository.Get when no
// record is stored under the key.
var ErrRecordNotFound = errors.New("session record not found")

// SessionRecordRepository persists the raw session record of one client
// session. The bytes are opaque to the repository.
type SessionRecordRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, record []byte, ttl time.Duration) error
	// Delete removes the record. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
