package aap_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/fivetwenty-io/aap-client/pkg/aap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_SetAndGet(t *testing.T) {
	t.Parallel()

	cache := aap.NewMemoryCache(10)
	ctx := context.Background()

	entry := &aap.CacheEntry{
		Data:      []byte("test data"),
		ExpiresAt: time.Now().Add(1 * time.Hour),
	}

	// Set entry
	err := cache.Set(ctx, "key1", entry)
	require.NoError(t, err)

	// Get entry
	retrieved, err := cache.Get(ctx, "key1")
	require.NoError(t, err)
	assert.Equal(t, entry.Data, retrieved.Data)
	assert.True(t, cache.Has(ctx, "key1"))
}

func TestMemoryCache_GetNonExistent(t *testing.T) {
	t.Parallel()

	cache := aap.NewMemoryCache(10)

	_, err := cache.Get(context.Background(), "missing")
	require.ErrorIs(t, err, aap.ErrCacheKeyNotFound)
}

func TestMemoryCache_Expired(t *testing.T) {
	t.Parallel()

	cache := aap.NewMemoryCache(10)
	ctx := context.Background()

	err := cache.Set(ctx, "old", &aap.CacheEntry{Data: []byte("x"), ExpiresAt: time.Now().Add(-time.Second)})
	require.NoError(t, err)

	_, err = cache.Get(ctx, "old")
	require.ErrorIs(t, err, aap.ErrCacheExpired)
	assert.Equal(t, 0, cache.Len())
	assert.False(t, cache.Has(ctx, "old"))
}

func TestMemoryCache_NoExpiry(t *testing.T) {
	t.Parallel()

	cache := aap.NewMemoryCache(10)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "forever", aap.NewEntry([]byte("x"), 0)))
	assert.True(t, cache.Has(ctx, "forever"))
}

func TestMemoryCache_EvictsOldest(t *testing.T) {
	t.Parallel()

	cache := aap.NewMemoryCache(2)
	ctx := context.Background()

	for _, key := range []string{"a", "b", "c"} {
		require.NoError(t, cache.Set(ctx, key, aap.NewEntry([]byte(key), time.Hour)))
	}

	assert.Equal(t, 2, cache.Len())
	assert.False(t, cache.Has(ctx, "a"))
	assert.True(t, cache.Has(ctx, "b"))
	assert.True(t, cache.Has(ctx, "c"))

	// overwriting does not evict
	require.NoError(t, cache.Set(ctx, "b", aap.NewEntry([]byte("b2"), time.Hour)))
	assert.Equal(t, 2, cache.Len())
}

func TestMemoryCache_DeleteAndClear(t *testing.T) {
	t.Parallel()

	cache := aap.NewMemoryCache(10)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "a", aap.NewEntry([]byte("a"), time.Hour)))
	require.NoError(t, cache.Set(ctx, "b", aap.NewEntry([]byte("b"), time.Hour)))

	require.NoError(t, cache.Delete(ctx, "a"))
	require.NoError(t, cache.Delete(ctx, "missing"))
	assert.Equal(t, 1, cache.Len())

	require.NoError(t, cache.Clear(ctx))
	assert.Equal(t, 0, cache.Len())
}

func TestMemoryCache_Concurrent(t *testing.T) {
	t.Parallel()

	cache := aap.NewMemoryCache(50)
	ctx := context.Background()

	var wg sync.WaitGroup

	for i := range 20 {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			key := fmt.Sprintf("key-%d", i)
			_ = cache.Set(ctx, key, aap.NewEntry([]byte(key), time.Hour))
			_, _ = cache.Get(ctx, key)
		}(i)
	}

	wg.Wait()
	assert.Equal(t, 20, cache.Len())
}
