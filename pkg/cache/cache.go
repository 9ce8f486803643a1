// Package cache provides response caching for registry fetches.
//
// Keys are arbitrary strings (typically URLs) and values are raw response
// bytes. Three backends are provided: a filesystem cache for local use, a
// Redis cache for shared deployments, and a null cache that disables
// caching entirely.
package cache

import (
	"context"
	"time"
)

// Default TTLs per payload class. Index documents change on every release
// while download stats refresh daily, so they age out at different rates.
const (
	TTLMetadata  = 6 * time.Hour
	TTLPage      = 12 * time.Hour
	TTLDownloads = 24 * time.Hour
)

// Cache stores fetched payloads keyed by URL.
type Cache interface {
	// Get returns the cached payload and whether the key was present and
	// fresh. Expired entries report a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a payload with the given TTL. A non-positive TTL means
	// the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
