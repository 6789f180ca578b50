package ratelimiter_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/promptkit/pkg/ratelimiter"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newBucket(t *testing.T, c *clock, cfg ratelimiter.Config) *ratelimiter.Bucket {
	t.Helper()
	store := ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0), ratelimiter.WithClock(c.Now))
	b, err := ratelimiter.NewBucket(store, cfg)
	require.NoError(t, err)
	return b
}

func TestNewBucket_InvalidConfig(t *testing.T) {
	t.Parallel()

	for _, cfg := range []ratelimiter.Config{
		{Capacity: 0, RefillRate: 1, RefillInterval: time.Second},
		{Capacity: 1, RefillRate: 0, RefillInterval: time.Second},
		{Capacity: 1, RefillRate: 1},
	} {
		_, err := ratelimiter.NewBucket(ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0)), cfg)
		assert.ErrorIs(t, err, ratelimiter.ErrInvalidConfig)
	}
}

func TestBucket(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("drains then refills", func(t *testing.T) {
		t.Parallel()
		c := &clock{now: time.Unix(1_700_000_000, 0)}
		b := newBucket(t, c, ratelimiter.Config{Capacity: 3, RefillRate: 1, RefillInterval: time.Second})

		for want := 2; want >= 0; want-- {
			res, err := b.Allow(ctx, "ip")
			require.NoError(t, err)
			assert.True(t, res.Allowed())
			assert.Equal(t, want, res.Remaining)
			assert.Equal(t, 3, res.Limit)
		}

		res, err := b.Allow(ctx, "ip")
		require.NoError(t, err)
		assert.False(t, res.Allowed())

		c.Advance(time.Second)
		res, err = b.Allow(ctx, "ip")
		require.NoError(t, err)
		assert.True(t, res.Allowed())
		assert.Equal(t, 0, res.Remaining)
	})

	t.Run("refill is capped at capacity", func(t *testing.T) {
		t.Parallel()
		c := &clock{now: time.Unix(1_700_000_000, 0)}
		b := newBucket(t, c, ratelimiter.Config{Capacity: 2, RefillRate: 1, RefillInterval: time.Second})

		_, err := b.AllowN(ctx, "k", 2)
		require.NoError(t, err)

		c.Advance(time.Hour)
		res, err := b.Status(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, 2, res.Remaining)
	})

	t.Run("keys are isolated and reset", func(t *testing.T) {
		t.Parallel()
		c := &clock{now: time.Unix(1_700_000_000, 0)}
		b := newBucket(t, c, ratelimiter.Config{Capacity: 1, RefillRate: 1, RefillInterval: time.Minute})

		res, _ := b.Allow(ctx, "a")
		assert.True(t, res.Allowed())
		res, _ = b.Allow(ctx, "a")
		assert.False(t, res.Allowed())
		res, _ = b.Allow(ctx, "b")
		assert.True(t, res.Allowed())

		require.NoError(t, b.Reset(ctx, "a"))
		res, _ = b.Allow(ctx, "a")
		assert.True(t, res.Allowed())
	})

	t.Run("invalid token count", func(t *testing.T) {
		t.Parallel()
		c := &clock{now: time.Now()}
		b := newBucket(t, c, ratelimiter.Config{Capacity: 1, RefillRate: 1, RefillInterval: time.Minute})
		_, err := b.AllowN(ctx, "a", 0)
		assert.ErrorIs(t, err, ratelimiter.ErrInvalidTokenCount)
	})
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	c := &clock{now: time.Now()}
	b := newBucket(t, c, ratelimiter.Config{Capacity: 1, RefillRate: 1, RefillInterval: time.Minute})

	var denied int
	mw := ratelimiter.Middleware(b, func(r *http.Request) string { return r.Header.Get("X-Key") },
		ratelimiter.WithDenyHandler(func(w http.ResponseWriter, _ *http.Request, res *ratelimiter.Result, err error) {
			denied++
			w.WriteHeader(http.StatusTooManyRequests)
		}),
	)
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }))

	do := func(key string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/optimize", nil)
		if key != "" {
			r.Header.Set("X-Key", key)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		return rec
	}

	rec := do("1.2.3.4")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = do("1.2.3.4")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, 1, denied)

	rec = do("")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

type failingStore struct{}

func (failingStore) ConsumeTokens(context.Context, string, int, ratelimiter.Config) (int, time.Time, error) {
	return 0, time.Time{}, ratelimiter.ErrStoreUnavailable
}

func (failingStore) Reset(context.Context, string) error { return errors.New("nope") }

func TestMiddleware_StoreFailure(t *testing.T) {
	t.Parallel()

	b, err := ratelimiter.NewBucket(failingStore{}, ratelimiter.Config{Capacity: 1, RefillRate: 1, RefillInterval: time.Second})
	require.NoError(t, err)

	h := ratelimiter.Middleware(b, func(*http.Request) string { return "k" })(http.NotFoundHandler())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
