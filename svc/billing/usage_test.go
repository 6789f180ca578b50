package billing_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/promptkit/pkg/cache"
	"github.com/dmitrymomot/promptkit/svc/billing"
	"github.com/dmitrymomot/promptkit/svc/usage"
)

func subscribed(t *testing.T, priceID string, periodStart time.Time, opts ...billing.ServiceOption) *billing.Service {
	t.Helper()
	proc := newFakeProcessor(t)
	proc.subscriptions["cus_1"] = []billing.Subscription{{
		ID:                 "sub_1",
		CustomerID:         "cus_1",
		Status:             billing.StatusActive,
		PriceID:            priceID,
		Created:            periodStart,
		CurrentPeriodStart: periodStart,
		CurrentPeriodEnd:   periodStart.AddDate(1, 0, 0),
	}}
	store := billing.NewMemoryStore()
	_, err := store.LinkCustomer(context.Background(), "user-1", "cus_1")
	require.NoError(t, err)
	return newService(t, proc, store, opts...)
}

func TestService_YearlyPlanIsMeteredMonthly(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	meter := usage.NewMemoryMeter()
	periodStart := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for range 10 {
		_, err := meter.Increment(ctx, "user-1", periodStart)
		require.NoError(t, err)
	}

	// fixedNow is 2025-03-15
	svc := subscribed(t, "price_personal_yearly", periodStart, billing.WithMeter(meter))

	ent, allowed, err := svc.Entitlement(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), ent.PeriodStart)
	assert.Equal(t, billing.Usage{Current: 0, Limit: 10}, ent.Usage)
	require.NotNil(t, ent.Subscription)
	assert.Equal(t, periodStart.Unix(), ent.Subscription.CurrentPeriodStart)
}

func TestService_ReserveUsage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	periodStart := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("concurrent reservations stop at the quota", func(t *testing.T) {
		t.Parallel()
		meter := usage.NewMemoryMeter()
		svc := subscribed(t, "price_personal_monthly", periodStart, billing.WithMeter(meter))

		ent, err := svc.GetSubscription(ctx, "user-1")
		require.NoError(t, err)
		for range 9 {
			_, err := svc.RecordUsage(ctx, "user-1", ent)
			require.NoError(t, err)
		}

		var (
			wg       sync.WaitGroup
			admitted atomic.Int32
		)
		for range 5 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				e, err := svc.GetSubscription(ctx, "user-1")
				if err != nil {
					return
				}
				if _, err := svc.ReserveUsage(ctx, "user-1", e); err == nil {
					admitted.Add(1)
				} else {
					assert.ErrorIs(t, err, billing.ErrQuotaExceeded)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), admitted.Load())
		ent, err = svc.GetSubscription(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, billing.Usage{Current: 10, Limit: 10}, ent.Usage)
	})

	t.Run("release gives the unit back", func(t *testing.T) {
		t.Parallel()
		svc := subscribed(t, "price_personal_monthly", periodStart, billing.WithMeter(usage.NewMemoryMeter()))

		ent, err := svc.GetSubscription(ctx, "user-1")
		require.NoError(t, err)
		n, err := svc.ReserveUsage(ctx, "user-1", ent)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		require.NoError(t, svc.ReleaseUsage(ctx, "user-1", ent))
		svc.InvalidateEntitlement(ctx, "user-1")
		ent, err = svc.GetSubscription(ctx, "user-1")
		require.NoError(t, err)
		assert.Zero(t, ent.Usage.Current)
	})

	t.Run("no subscription", func(t *testing.T) {
		t.Parallel()
		svc := newService(t, newFakeProcessor(t), billing.NewMemoryStore())

		ent, err := svc.GetSubscription(ctx, "user-1")
		require.NoError(t, err)
		_, err = svc.ReserveUsage(ctx, "user-1", ent)
		require.ErrorIs(t, err, billing.ErrQuotaExceeded)
	})
}

// countingCache records writes and never hits.
type countingCache struct {
	sets atomic.Int32
}

func (c *countingCache) Get(context.Context, string) ([]byte, error) { return nil, cache.ErrCacheMiss }

func (c *countingCache) Set(context.Context, string, []byte, time.Duration) error {
	c.sets.Add(1)
	return nil
}

func (c *countingCache) Delete(context.Context, string) error { return nil }

func TestService_ZeroEntitlementTTLDisablesCache(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	proc := newFakeProcessor(t)
	store := billing.NewMemoryStore()
	_, err := store.LinkCustomer(ctx, "user-1", "cus_1")
	require.NoError(t, err)

	c := &countingCache{}
	svc, err := billing.NewService(ctx, billing.Config{}, proc, store, billing.WithCache(c))
	require.NoError(t, err)

	for range 2 {
		_, err := svc.GetSubscription(ctx, "user-1")
		require.NoError(t, err)
	}
	assert.Zero(t, c.sets.Load())
	assert.Equal(t, 2, proc.Calls("ListActiveSubscriptions"))
}
