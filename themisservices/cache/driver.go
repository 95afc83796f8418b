package cache

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("cache entry not found")

// Driver stores raw bytes with an expiry. A ttl of zero or less means the
// entry never expires.
type Driver interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// DeletePrefix drops every key that starts with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
}
