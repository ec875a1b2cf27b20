// Package cache stores derived artifacts of modelgraph projects.
//
// Project summaries and exported renderings are pure functions of the
// persisted document bytes, so entries are keyed by a content hash and never
// need invalidation: saving a project changes its hash and the old entries
// simply expire.
//
// # Backends
//
//   - [FileCache]: one file per entry under the user cache directory (CLI)
//   - [RedisCache]: shared cache for the API server
//   - [NullCache]: caching disabled
//
// # Keys
//
// A [Keyer] turns document hashes into cache keys. [NewScopedKeyer] prefixes
// every key, which lets several servers share one Redis database.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the entry for key. A miss is reported as (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Clear removes every entry.
	Clear(ctx context.Context) error
	// Close releases the backend.
	Close() error
}

// Entry lifetimes.
const (
	TTLSummary  = 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// ArtifactKeyOpts identifies one exported rendering of a diagram.
type ArtifactKeyOpts struct {
	Diagram  string `json:"diagram"`
	Format   string `json:"format"`
	Detailed bool   `json:"detailed,omitempty"`
	Views    bool   `json:"views,omitempty"`
}

// Keyer builds cache keys from document hashes.
type Keyer interface {
	// SummaryKey is the key of a project summary.
	SummaryKey(docHash string) string
	// ArtifactKey is the key of an exported rendering.
	ArtifactKey(docHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer produces unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// SummaryKey implements [Keyer].
func (DefaultKeyer) SummaryKey(docHash string) string {
	return "summary:" + docHash
}

// ArtifactKey implements [Keyer].
func (DefaultKeyer) ArtifactKey(docHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", docHash, opts)
}
