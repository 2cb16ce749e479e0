// Package cache stores rendered artifacts and estimated curve models.
//
// Three backends implement [Cache]:
//   - [NullCache] never stores anything (caching disabled)
//   - [FileCache] keeps entries as files for CLI use
//   - [RedisCache] shares entries between preview servers
//
// Keys come from a [Keyer]. [DefaultKeyer] hashes every option that
// changes the cached bytes into the key, so two requests share an entry
// only when they would produce identical output. [ScopedKeyer] prefixes
// keys for callers that need separate namespaces.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the entry for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default entry lifetimes.
const (
	// TTLModel applies to estimated curve models.
	TTLModel = 24 * time.Hour

	// TTLArtifact applies to rendered SVG, PNG, PDF and JSON output.
	TTLArtifact = 7 * 24 * time.Hour
)
