// Package cache stores rendered template previews.
//
// Rendering a record to SVG is cheap, but a preview server answers the same
// request many times. Entries are keyed by [Key], which hashes everything the
// output depends on, so a changed record never hits a stale entry:
//
//	key := cache.Key("svg", rec.Digest, margin)
//	if data, ok, _ := c.Get(ctx, key); ok {
//	    return data
//	}
//
// [FileCache] backs the CLI, [RedisCache] a shared deployment, and
// [NullCache] disables caching.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with optional expiry.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}
