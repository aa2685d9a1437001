// Package cache stores catalog responses so repeated invocations do not
// hit the remote catalog for metadata that rarely changes.
//
// Three backends implement [Cache]:
//   - [FileCache]: one JSON envelope per key under the user cache directory
//   - [RedisCache]: a shared Redis instance, for build machines that run
//     many packs against the same catalog
//   - [NullCache]: stores nothing (--no-cache)
//
// Keys are built with [HTTPKey] so that different catalogs never collide.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry TTL.
//
// Implementations must be safe for concurrent use: the resolver fetches
// project metadata from many goroutines at once.
type Cache interface {
	// Get returns the stored bytes and true on a hit. A missing or expired
	// entry is a miss, not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// HTTPKey builds the cache key for a catalog response.
// The namespace identifies the catalog (e.g. "curseforge:").
func HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}
