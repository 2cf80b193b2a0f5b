// Package cache provides pluggable byte caches for HTTP response
// reuse. Backends exist for local files (CLI usage), redis (shared
// deployments), and a null cache that disables caching entirely.
//
// Hash lookups during resolution deliberately bypass caching so each
// run sees the index as it is; only name-casing lookups go through a
// real backend.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values under string keys with a TTL.
type Cache interface {
	// Get returns the cached value and whether it was present and fresh.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}
