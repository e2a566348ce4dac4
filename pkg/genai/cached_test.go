package genai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autoclouddeploy/archmap/pkg/cache"
)

func TestCachedGeneratorHit(t *testing.T) {
	store, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)

	inner := &fakeGenerator{responses: []string{"first", "second"}}
	gen := NewCachedGenerator(inner, store, nil)

	resp, err := gen.Generate(context.Background(), "describe vpc")
	require.NoError(t, err)
	assert.Equal(t, "first", resp)

	// Same prompt hits the cache; the inner generator is not called again.
	resp, err = gen.Generate(context.Background(), "describe vpc")
	require.NoError(t, err)
	assert.Equal(t, "first", resp)
	assert.Equal(t, 1, inner.calls)

	// A different prompt misses.
	resp, err = gen.Generate(context.Background(), "describe eks")
	require.NoError(t, err)
	assert.Equal(t, "second", resp)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedGeneratorErrorNotCached(t *testing.T) {
	store, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)

	inner := &fakeGenerator{
		responses: []string{"", "recovered"},
		errs:      []error{context.DeadlineExceeded, nil},
	}
	gen := NewCachedGenerator(inner, store, nil)

	_, err = gen.Generate(context.Background(), "flaky prompt")
	require.Error(t, err)

	resp, err := gen.Generate(context.Background(), "flaky prompt")
	require.NoError(t, err)
	assert.Equal(t, "recovered", resp)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedGeneratorNilStore(t *testing.T) {
	inner := &fakeGenerator{responses: []string{"a", "b"}}
	gen := NewCachedGenerator(inner, nil, nil)

	resp, err := gen.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "a", resp)

	// NullCache never hits.
	resp, err = gen.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "b", resp)
}

func TestCachedGeneratorDelegates(t *testing.T) {
	inner := &fakeGenerator{}
	gen := NewCachedGenerator(inner, nil, nil)
	assert.Equal(t, "fake-model", gen.Model())
	assert.NoError(t, gen.Close())
}
