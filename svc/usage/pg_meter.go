package usage

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/promptkit/pkg/pg"
)

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PGMeter stores counters in the usage_counters table.
type PGMeter struct {
	db querier
}

// NewPGMeter creates a meter on db, usually a *pgxpool.Pool.
func NewPGMeter(db querier) *PGMeter {
	if db == nil {
		panic("usage: nil database")
	}
	return &PGMeter{db: db}
}

func (m *PGMeter) Current(ctx context.Context, userID string, periodStart time.Time) (int, error) {
	if userID == "" {
		return 0, ErrMissingUserID
	}
	var n int
	err := m.db.QueryRow(ctx,
		`SELECT count FROM usage_counters WHERE user_id = $1 AND period_start = $2`,
		userID, periodStart.UTC(),
	).Scan(&n)
	if pg.IsNotFoundError(err) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Join(ErrStore, err)
	}
	return n, nil
}

func (m *PGMeter) Increment(ctx context.Context, userID string, periodStart time.Time) (int, error) {
	if userID == "" {
		return 0, ErrMissingUserID
	}
	var n int
	err := m.db.QueryRow(ctx, `
		INSERT INTO usage_counters (user_id, period_start, count)
		VALUES ($1, $2, 1)
		ON CONFLICT (user_id, period_start)
		DO UPDATE SET count = usage_counters.count + 1, updated_at = now()
		RETURNING count`,
		userID, periodStart.UTC(),
	).Scan(&n)
	if err != nil {
		return 0, errors.Join(ErrStore, err)
	}
	return n, nil
}

// Reserve claims one unit with a conditional upsert. A conflicting row is
// only updated while its count is below limit, so concurrent callers cannot
// overshoot.
func (m *PGMeter) Reserve(ctx context.Context, userID string, periodStart time.Time, limit int) (int, error) {
	if userID == "" {
		return 0, ErrMissingUserID
	}
	var n int
	err := m.db.QueryRow(ctx, `
		INSERT INTO usage_counters (user_id, period_start, count)
		SELECT $1, $2, 1 WHERE $3::int > 0
		ON CONFLICT (user_id, period_start)
		DO UPDATE SET count = usage_counters.count + 1, updated_at = now()
		WHERE usage_counters.count < $3::int
		RETURNING count`,
		userID, periodStart.UTC(), limit,
	).Scan(&n)
	if pg.IsNotFoundError(err) {
		return 0, ErrLimitReached
	}
	if err != nil {
		return 0, errors.Join(ErrStore, err)
	}
	return n, nil
}

func (m *PGMeter) Release(ctx context.Context, userID string, periodStart time.Time) error {
	if userID == "" {
		return ErrMissingUserID
	}
	_, err := m.db.Exec(ctx, `
		UPDATE usage_counters SET count = count - 1, updated_at = now()
		WHERE user_id = $1 AND period_start = $2 AND count > 0`,
		userID, periodStart.UTC(),
	)
	if err != nil {
		return errors.Join(ErrStore, err)
	}
	return nil
}
