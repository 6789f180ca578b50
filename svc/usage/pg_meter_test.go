package usage_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/promptkit/svc/usage"
)

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func TestPGMeter(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	period := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("current of an unknown period is zero", func(t *testing.T) {
		t.Parallel()
		pool := newMockPool(t)
		pool.ExpectQuery(`SELECT count FROM usage_counters`).
			WithArgs("user-1", period).
			WillReturnRows(pgxmock.NewRows([]string{"count"}))

		n, err := usage.NewPGMeter(pool).Current(ctx, "user-1", period)
		require.NoError(t, err)
		assert.Zero(t, n)
		require.NoError(t, pool.ExpectationsWereMet())
	})

	t.Run("increment upserts", func(t *testing.T) {
		t.Parallel()
		pool := newMockPool(t)
		pool.ExpectQuery(`INSERT INTO usage_counters .* ON CONFLICT \(user_id, period_start\) DO UPDATE SET count = usage_counters.count \+ 1`).
			WithArgs("user-1", period).
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(4))

		n, err := usage.NewPGMeter(pool).Increment(ctx, "user-1", period)
		require.NoError(t, err)
		assert.Equal(t, 4, n)
		require.NoError(t, pool.ExpectationsWereMet())
	})

	t.Run("reserve below limit", func(t *testing.T) {
		t.Parallel()
		pool := newMockPool(t)
		pool.ExpectQuery(`WHERE usage_counters.count < \$3::int RETURNING count`).
			WithArgs("user-1", period, 10).
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(10))

		n, err := usage.NewPGMeter(pool).Reserve(ctx, "user-1", period, 10)
		require.NoError(t, err)
		assert.Equal(t, 10, n)
		require.NoError(t, pool.ExpectationsWereMet())
	})

	t.Run("reserve at limit", func(t *testing.T) {
		t.Parallel()
		pool := newMockPool(t)
		pool.ExpectQuery(`WHERE usage_counters.count < \$3::int RETURNING count`).
			WithArgs("user-1", period, 10).
			WillReturnRows(pgxmock.NewRows([]string{"count"}))

		_, err := usage.NewPGMeter(pool).Reserve(ctx, "user-1", period, 10)
		require.ErrorIs(t, err, usage.ErrLimitReached)
		require.NoError(t, pool.ExpectationsWereMet())
	})

	t.Run("release", func(t *testing.T) {
		t.Parallel()
		pool := newMockPool(t)
		pool.ExpectExec(`UPDATE usage_counters SET count = count - 1 .* AND count > 0`).
			WithArgs("user-1", period).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		require.NoError(t, usage.NewPGMeter(pool).Release(ctx, "user-1", period))
		require.NoError(t, pool.ExpectationsWereMet())
	})

	t.Run("store failure", func(t *testing.T) {
		t.Parallel()
		pool := newMockPool(t)
		pool.ExpectQuery(`INSERT INTO usage_counters`).
			WithArgs("user-1", period).
			WillReturnError(errors.New("connection reset"))

		_, err := usage.NewPGMeter(pool).Increment(ctx, "user-1", period)
		require.ErrorIs(t, err, usage.ErrStore)
	})

	t.Run("missing user", func(t *testing.T) {
		t.Parallel()
		m := usage.NewPGMeter(newMockPool(t))
		_, err := m.Reserve(ctx, "", period, 10)
		require.ErrorIs(t, err, usage.ErrMissingUserID)
	})
}
