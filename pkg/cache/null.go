package cache

import (
	"context"
	"time"
)

// Null is a no-op cache that never stores anything.
// Used when caching is disabled.
type Null struct{}

// Get always returns a cache miss.
func (Null) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set does nothing.
func (Null) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return nil
}

// Delete does nothing.
func (Null) Delete(ctx context.Context, key string) error {
	return nil
}

// Close does nothing.
func (Null) Close() error {
	return nil
}

// Ensure all backends implement Cache.
var (
	_ Cache = Null{}
	_ Cache = (*FileCache)(nil)
	_ Cache = (*RedisCache)(nil)
)
