package genai

import (
	"context"

	"github.com/autoclouddeploy/archmap/pkg/cache"
	"github.com/autoclouddeploy/archmap/pkg/observability"
)

// CachedGenerator wraps a Generator with prompt-keyed result caching.
// Generation is the most expensive pipeline stage, and for a fixed model the
// output is worth reusing across dataset runs, so hits skip the model call
// entirely. Keys combine the prompt content hash with the model name.
type CachedGenerator struct {
	inner Generator
	cache cache.Cache
	keyer cache.Keyer
}

// NewCachedGenerator wraps gen with the given cache backend.
// A nil store disables caching; a nil keyer uses the default.
func NewCachedGenerator(gen Generator, store cache.Cache, keyer cache.Keyer) *CachedGenerator {
	if store == nil {
		store = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &CachedGenerator{inner: gen, cache: store, keyer: keyer}
}

// Generate returns a cached response for the prompt when available,
// otherwise calls the wrapped generator and stores the result.
func (g *CachedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	key := g.keyer.GenerationKey(cache.Hash([]byte(prompt)), g.inner.Model())

	if data, hit, err := g.cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "generation")
		return string(data), nil
	}
	observability.Cache().OnCacheMiss(ctx, "generation")

	resp, err := g.inner.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	if g.cache.Set(ctx, key, []byte(resp), cache.TTLGeneration) == nil {
		observability.Cache().OnCacheSet(ctx, "generation", len(resp))
	}
	return resp, nil
}

// Model returns the wrapped generator's model identifier.
func (g *CachedGenerator) Model() string { return g.inner.Model() }

// Close releases the wrapped generator's resources.
// The cache backend is shared and stays open.
func (g *CachedGenerator) Close() error { return g.inner.Close() }

var _ Generator = (*CachedGenerator)(nil)
