package favorites_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/promptkit/svc/favorites"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		signal favorites.Signal
		want   favorites.Kind
	}{
		{"http 404", favorites.Signal{Status: http.StatusNotFound}, favorites.KindSchemaNotProvisioned},
		{"single row code", favorites.Signal{Code: "PGRST116"}, favorites.KindSchemaNotProvisioned},
		{"undefined table code", favorites.Signal{Code: "42P01"}, favorites.KindSchemaNotProvisioned},
		{"relation message", favorites.Signal{Message: `relation "favorites" does not exist`}, favorites.KindSchemaNotProvisioned},
		{"table message", favorites.Signal{Message: "Table missing"}, favorites.KindSchemaNotProvisioned},
		{"not found message", favorites.Signal{Message: "resource not found"}, favorites.KindSchemaNotProvisioned},
		{"empty error", favorites.Signal{Empty: true}, favorites.KindSchemaNotProvisioned},
		{"no rows", favorites.Signal{NoRows: true}, favorites.KindNotFound},
		{"not-null violation", favorites.Signal{Code: "23502", Message: `null value in column "title" of relation "favorites" violates not-null constraint`}, favorites.KindStore},
		{"check violation", favorites.Signal{Code: "23514", Message: `new row for relation "favorites" violates check constraint "favorites_strategy_check"`}, favorites.KindStore},
		{"unique violation", favorites.Signal{Code: "23505", Message: "duplicate key value"}, favorites.KindStore},
		{"server error", favorites.Signal{Status: http.StatusInternalServerError, Message: "connection refused"}, favorites.KindStore},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, favorites.Classify(tt.signal), tt.want.String())
		})
	}
}

func TestSignalOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, favorites.Signal{NoRows: true}, favorites.SignalOf(fmt.Errorf("scan: %w", pgx.ErrNoRows)))

	pgErr := &pgconn.PgError{Code: "42P01", Message: `relation "favorites" does not exist`}
	assert.Equal(t, favorites.Signal{Code: "42P01", Message: pgErr.Message}, favorites.SignalOf(pgErr))

	assert.Equal(t, favorites.Signal{Empty: true}, favorites.SignalOf(errors.New("")))
	assert.Equal(t, favorites.Signal{Message: "timeout"}, favorites.SignalOf(errors.New("timeout")))
}
