// Package cache provides byte-level caching for pipeline results and
// HTTP responses.
//
// The Cache interface abstracts over storage backends:
//   - FileCache: directory-backed storage for CLI usage
//   - RedisCache: shared storage for multi-instance API deployments
//   - NullCache: no-op backend for tests or disabled caching
//
// Keys are generated through the Keyer interface so that CLI and API
// produce identical keys for identical work. Use ScopedKeyer to prefix
// keys when multiple tenants share one backend.
package cache

import (
	"context"
	"time"
)

// TTLs for the different cached value classes. Converted documents and
// generated diagrams are deterministic for a given input, so they keep
// long TTLs; HTTP responses track upstream churn.
const (
	// TTLHTTP is the time-to-live for cached HTTP responses.
	TTLHTTP = 24 * time.Hour

	// TTLDocument is the time-to-live for converted output documents.
	TTLDocument = 7 * 24 * time.Hour

	// TTLGeneration is the time-to-live for model-generated diagrams.
	// Generation is the most expensive stage, so these live longest.
	TTLGeneration = 30 * 24 * time.Hour
)

// Cache is the interface for cache storage backends.
// Implementations must treat a missing key as (nil, false, nil), not an error.
type Cache interface {
	// Get retrieves a value. The second return value reports a hit.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A TTL of 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer generates cache keys for the different value classes.
type Keyer interface {
	// HTTPKey generates a key for an HTTP response within a namespace
	// (e.g. "github").
	HTTPKey(namespace, key string) string

	// DocumentKey generates a key for a converted output document,
	// derived from the content hash of the source diagram.
	DocumentKey(contentHash string) string

	// GenerationKey generates a key for a model-generated diagram,
	// derived from the source content hash and the model name.
	GenerationKey(contentHash, model string) string
}

// DefaultKeyer is the standard key generator.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard key generator.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// HTTPKey generates a key for HTTP response caching.
func (k *DefaultKeyer) HTTPKey(namespace, key string) string {
	return hashKey("http", namespace, key)
}

// DocumentKey generates a key for converted document caching.
func (k *DefaultKeyer) DocumentKey(contentHash string) string {
	return hashKey("doc", contentHash)
}

// GenerationKey generates a key for generated diagram caching.
func (k *DefaultKeyer) GenerationKey(contentHash, model string) string {
	return hashKey("gen", contentHash, model)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
