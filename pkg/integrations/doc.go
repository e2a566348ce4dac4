// Package integrations provides shared HTTP client infrastructure for
// external APIs.
//
// # Overview
//
// The [Client] type bundles the pieces every API client needs: an HTTP
// client with a sane timeout, response caching via [httputil.Cache], and
// retry with exponential backoff for transient failures. Higher-level
// clients (like the GitHub client in pkg/source/github) embed it and add
// API-specific methods on top.
//
// # Client Pattern
//
//	cache, err := integrations.NewCache(24 * time.Hour)
//	client := integrations.NewClient(cache, headers)
//
//	var out apiResponse
//	err = client.Cached(ctx, "github:search:terraform", false, &out, func() error {
//	    return client.Get(ctx, url, &out)
//	})
//
// Clients built on this package get:
//   - HTTP requests with retry on 5xx and network errors
//   - Response caching (file-based, configurable TTL)
//   - Consistent [ErrNotFound] and [ErrNetwork] sentinels
//
// [httputil.Cache]: github.com/autoclouddeploy/archmap/pkg/httputil.Cache
package integrations
