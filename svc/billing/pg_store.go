package billing

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

type database interface {
	querier
	pg.TxBeginner
}

// PGStore is a Store on PostgreSQL. Tables are created by the billing
// migration in db/migrations.
type PGStore struct {
	db database
	pgQueries
}

// NewPGStore creates a store on db, usually a *pgxpool.Pool.
func NewPGStore(db database) *PGStore {
	if db == nil {
		panic("billing: nil database")
	}
	return &PGStore{db: db, pgQueries: pgQueries{q: db}}
}

func (s *PGStore) WithEvent(ctx context.Context, eventID, eventType string, fn func(tx Tx) error) (bool, error) {
	var duplicate bool
	err := pg.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`INSERT INTO webhook_events (event_id, type) VALUES ($1, $2) ON CONFLICT (event_id) DO NOTHING`,
			eventID, eventType,
		)
		if err != nil {
			return errors.Join(ErrStore, err)
		}
		if tag.RowsAffected() == 0 {
			duplicate = true
			return nil
		}
		return fn(pgQueries{q: tx})
	})
	if err != nil {
		return false, err
	}
	return duplicate, nil
}

type pgQueries struct {
	q querier
}

func (p pgQueries) CustomerID(ctx context.Context, userID string) (string, error) {
	var id string
	err := p.q.QueryRow(ctx, `SELECT customer_id FROM billing_customers WHERE user_id = $1`, userID).Scan(&id)
	if pg.IsNotFoundError(err) {
		return "", ErrCustomerNotFound
	}
	if err != nil {
		return "", errors.Join(ErrStore, err)
	}
	return id, nil
}

func (p pgQueries) UserID(ctx context.Context, customerID string) (string, error) {
	var id string
	err := p.q.QueryRow(ctx, `SELECT user_id FROM billing_customers WHERE customer_id = $1`, customerID).Scan(&id)
	if pg.IsNotFoundError(err) {
		return "", ErrCustomerNotFound
	}
	if err != nil {
		return "", errors.Join(ErrStore, err)
	}
	return id, nil
}

// LinkCustomer never raises a unique violation, so it is safe inside a
// webhook transaction. A conflict on either key is resolved by re-reading
// the user's mapping.
func (p pgQueries) LinkCustomer(ctx context.Context, userID, customerID string) (string, error) {
	_, err := p.q.Exec(ctx,
		`INSERT INTO billing_customers (user_id, customer_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		userID, customerID,
	)
	if err != nil {
		return "", errors.Join(ErrStore, err)
	}
	id, err := p.CustomerID(ctx, userID)
	if errors.Is(err, ErrCustomerNotFound) {
		// the customer belongs to someone else
		return "", ErrCustomerConflict
	}
	return id, err
}

func (p pgQueries) Subscription(ctx context.Context, id string) (Subscription, error) {
	var (
		sub         Subscription
		status      string
		periodStart *time.Time
		periodEnd   *time.Time
	)
	err := p.q.QueryRow(ctx, `
		SELECT id, customer_id, user_id, status, price_id, created_at,
		       current_period_start, current_period_end, cancel_at_period_end,
		       last_payment_status, last_event_at, updated_at
		FROM billing_subscriptions WHERE id = $1`, id,
	).Scan(
		&sub.ID, &sub.CustomerID, &sub.UserID, &status, &sub.PriceID, &sub.Created,
		&periodStart, &periodEnd, &sub.CancelAtPeriodEnd,
		&sub.LastPaymentStatus, &sub.LastEventAt, &sub.UpdatedAt,
	)
	if pg.IsNotFoundError(err) {
		return Subscription{}, ErrSubscriptionNotFound
	}
	if err != nil {
		return Subscription{}, errors.Join(ErrStore, err)
	}
	sub.Status = Status(status)
	if periodStart != nil {
		sub.CurrentPeriodStart = periodStart.UTC()
	}
	if periodEnd != nil {
		sub.CurrentPeriodEnd = periodEnd.UTC()
	}
	return sub, nil
}

func (p pgQueries) SaveSubscription(ctx context.Context, sub Subscription) error {
	created := sub.Created
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err := p.q.Exec(ctx, `
		INSERT INTO billing_subscriptions (
			id, customer_id, user_id, status, price_id, created_at,
			current_period_start, current_period_end, cancel_at_period_end,
			last_payment_status, last_event_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			customer_id = EXCLUDED.customer_id,
			user_id = EXCLUDED.user_id,
			status = EXCLUDED.status,
			price_id = EXCLUDED.price_id,
			current_period_start = EXCLUDED.current_period_start,
			current_period_end = EXCLUDED.current_period_end,
			cancel_at_period_end = EXCLUDED.cancel_at_period_end,
			last_payment_status = EXCLUDED.last_payment_status,
			last_event_at = EXCLUDED.last_event_at,
			updated_at = EXCLUDED.updated_at`,
		sub.ID, sub.CustomerID, sub.UserID, string(sub.Status), sub.PriceID, created,
		nullableTime(sub.CurrentPeriodStart), nullableTime(sub.CurrentPeriodEnd), sub.CancelAtPeriodEnd,
		sub.LastPaymentStatus, sub.LastEventAt, sub.UpdatedAt,
	)
	if err != nil {
		return errors.Join(ErrStore, err)
	}
	return nil
}

func (p pgQueries) RecordPayment(ctx context.Context, subscriptionID, status string, at time.Time) error {
	_, err := p.q.Exec(ctx,
		`UPDATE billing_subscriptions SET last_payment_status = $2, updated_at = $3 WHERE id = $1`,
		subscriptionID, status, at,
	)
	if err != nil {
		return errors.Join(ErrStore, err)
	}
	return nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
