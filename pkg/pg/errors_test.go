package pg_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/promptkit/pkg/pg"
)

func TestErrorClassification(t *testing.T) {
	t.Parallel()

	wrapped := func(code string) error {
		return fmt.Errorf("query: %w", &pgconn.PgError{Code: code})
	}

	tests := []struct {
		name      string
		err       error
		notFound  bool
		duplicate bool
		fk        bool
		undefined bool
	}{
		{name: "nil"},
		{name: "no rows", err: fmt.Errorf("select: %w", pgx.ErrNoRows), notFound: true},
		{name: "unique violation", err: wrapped(pg.CodeUniqueViolation), duplicate: true},
		{name: "foreign key", err: wrapped(pg.CodeForeignKeyViolation), fk: true},
		{name: "undefined table", err: wrapped(pg.CodeUndefinedTable), undefined: true},
		{name: "plain error", err: errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.notFound, pg.IsNotFoundError(tt.err))
			assert.Equal(t, tt.duplicate, pg.IsDuplicateKeyError(tt.err))
			assert.Equal(t, tt.fk, pg.IsForeignKeyViolationError(tt.err))
			assert.Equal(t, tt.undefined, pg.IsUndefinedTableError(tt.err))
		})
	}
}

func TestConnectRequiresConnectionString(t *testing.T) {
	t.Parallel()

	_, err := pg.Connect(context.Background(), pg.Config{})
	assert.ErrorIs(t, err, pg.ErrEmptyConnectionString)
}

func TestConnectRejectsMalformedURL(t *testing.T) {
	t.Parallel()

	_, err := pg.Connect(context.Background(), pg.Config{ConnectionString: "postgres://%zz"})
	assert.ErrorIs(t, err, pg.ErrFailedToParseDBConfig)
}

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthcheck(t *testing.T) {
	t.Parallel()

	ok := pg.Healthcheck(pingFunc(func(context.Context) error { return nil }))
	assert.NoError(t, ok(context.Background()))

	down := pg.Healthcheck(pingFunc(func(context.Context) error { return errors.New("refused") }))
	assert.ErrorIs(t, down(context.Background()), pg.ErrHealthcheckFailed)
}
