// Package cache stores rendered artifacts so repeated inspections of an
// unchanged atlas skip the expensive rendering step.
//
// The CLI uses a [FileCache] under the user cache directory for placement
// tree SVGs; Graphviz start-up dominates the cost of small diagrams. Keys are
// built by a [Keyer] from a content hash of the input, so an atlas that changed
// since the last render never hits a stale entry.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with optional expiry.
type Cache interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}

// Keyer builds cache keys.
type Keyer interface {
	// TreeKey is the key for a rendered placement tree.
	TreeKey(dotHash string, opts TreeKeyOpts) string
}

// TreeKeyOpts holds the render settings that change a tree artifact.
type TreeKeyOpts struct {
	Format    string `json:"format"`
	Detailed  bool   `json:"detailed"`
	HideEmpty bool   `json:"hide_empty"`
}

// DefaultKeyer builds keys of the form kind:sha256(parts).
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

func (DefaultKeyer) TreeKey(dotHash string, opts TreeKeyOpts) string {
	return hashKey("tree", dotHash, opts)
}

// NewNullCache returns a cache that never stores anything. It backs --no-cache.
func NewNullCache() Cache {
	return nullCache{}
}

type nullCache struct{}

func (nullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (nullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (nullCache) Delete(context.Context, string) error                     { return nil }
func (nullCache) Close() error                                             { return nil }
