package cache_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/promptkit/pkg/cache"
)

func TestLRUCache(t *testing.T) {
	t.Parallel()

	t.Run("evicts least recently used", func(t *testing.T) {
		t.Parallel()
		c := cache.NewLRUCache[string, int](2, 0)
		c.Put("a", 1)
		c.Put("b", 2)

		_, ok := c.Get("a")
		require.True(t, ok)

		c.Put("c", 3)
		_, ok = c.Get("b")
		assert.False(t, ok, "b was the least recently used entry")

		v, ok := c.Get("a")
		assert.True(t, ok)
		assert.Equal(t, 1, v)
		assert.Equal(t, 2, c.Len())
	})

	t.Run("update keeps single entry", func(t *testing.T) {
		t.Parallel()
		c := cache.NewLRUCache[string, string](2, 0)
		c.Put("price_a", "x")
		c.Put("price_a", "y")
		v, _ := c.Get("price_a")
		assert.Equal(t, "y", v)
		assert.Equal(t, 1, c.Len())
		assert.True(t, c.Remove("price_a"))
		assert.False(t, c.Remove("price_a"))
	})

	t.Run("entries expire", func(t *testing.T) {
		t.Parallel()
		c := cache.NewLRUCache[string, bool](4, 20*time.Millisecond)
		c.Put("k", true)
		_, ok := c.Get("k")
		require.True(t, ok)

		assert.Eventually(t, func() bool {
			_, ok := c.Get("k")
			return !ok
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("panics on invalid capacity", func(t *testing.T) {
		t.Parallel()
		assert.Panics(t, func() { cache.NewLRUCache[int, int](0, 0) })
	})

	t.Run("concurrent access", func(t *testing.T) {
		t.Parallel()
		c := cache.NewLRUCache[int, int](16, 0)
		var wg sync.WaitGroup
		for i := range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := range 200 {
					c.Put(i*1000+j, j)
					c.Get(j)
				}
			}()
		}
		wg.Wait()
		assert.LessOrEqual(t, c.Len(), 16)
	})
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := cache.NewMemoryStore(time.Minute, time.Minute)

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, cache.ErrCacheMiss)

	buf := []byte("value")
	require.NoError(t, s.Set(ctx, "k", buf, 0))
	buf[0] = 'X'

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "value", string(got))

	require.NoError(t, s.Delete(ctx, "k"))
	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
}

func TestJSONHelpers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := cache.NewMemoryStore(time.Minute, time.Minute)

	type usage struct {
		Current int `json:"current"`
		Limit   int `json:"limit"`
	}

	require.NoError(t, cache.SetJSON(ctx, s, "usage:u1", usage{Current: 3, Limit: 10}, time.Minute))

	var got usage
	require.NoError(t, cache.GetJSON(ctx, s, "usage:u1", &got))
	assert.Equal(t, usage{Current: 3, Limit: 10}, got)

	require.NoError(t, s.Set(ctx, "broken", []byte("{"), time.Minute))
	err := cache.GetJSON(ctx, s, "broken", &got)
	assert.ErrorIs(t, err, cache.ErrBackend)

	err = cache.GetJSON(ctx, s, fmt.Sprintf("absent:%d", 1), &got)
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
}
