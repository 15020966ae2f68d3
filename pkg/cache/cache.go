// Package cache stores rendered story graphs so unchanged stories are not
// drawn twice.
//
// Entries are addressed by content: [ArtifactKey] hashes the DOT source
// together with the output format and scale, so a key never needs to be
// invalidated. Entries may still carry a TTL to bound disk use.
//
// [FileCache] keeps entries under the user cache directory and is what the
// CLI uses. [NullCache] is the --no-cache implementation.
package cache

import (
	"context"
	"time"
)

// DefaultTTL is how long rendered artifacts are kept.
const DefaultTTL = 7 * 24 * time.Hour

// Cache is a byte store with expiring entries.
type Cache interface {
	// Get returns the entry for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. ttl <= 0 keeps the entry forever.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}

// ArtifactOpts are the render settings that change the output bytes.
type ArtifactOpts struct {
	Format string  `json:"format"`
	Scale  float64 `json:"scale,omitempty"`
}

// ArtifactKey returns the key of the artifact rendered from dot with opts.
func ArtifactKey(dot string, opts ArtifactOpts) string {
	return hashKey("artifact", Hash([]byte(dot)), opts)
}
