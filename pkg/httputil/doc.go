// Package httputil provides HTTP utilities for external API clients.
//
// # Overview
//
// This package provides infrastructure shared by every client that talks
// to a remote API (GitHub search, raw content downloads):
//
//   - [Cache]: File-based response caching with TTL
//   - [Retry] and [RetryWithBackoff]: Automatic retry for transient failures
//
// # Caching
//
// [Cache] stores JSON-encoded responses in the filesystem
// (~/.cache/archmap/ by default) with a configurable TTL. Repeated
// dataset builds and searches hit the cache instead of the network.
//
// Usage:
//
//	cache, err := httputil.NewCache("", 24*time.Hour)
//	var repos searchResult
//	if ok, _ := cache.Get("github:search:terraform", &repos); !ok {
//	    repos = fetchFromAPI()
//	    cache.Set("github:search:terraform", repos)
//	}
//
// Cache keys should be namespaced by service to avoid collisions; use
// [Cache.Namespace] to derive a scoped view.
//
// # Retry
//
// [RetryWithBackoff] retries an operation when it fails with a
// [RetryableError]:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses
//
// It uses exponential backoff to avoid hammering a struggling server:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    return client.Get(ctx, url, &out)
//	})
//
// # Configuration
//
// Default settings are suitable for most use cases:
//
//   - Cache directory: ~/.cache/archmap/
//   - Max retries: 3
//   - Base backoff: 1 second
//
// The cache can be cleared via `archmap cache clear` or by deleting
// the cache directory.
package httputil
