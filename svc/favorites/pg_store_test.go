package favorites_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/promptkit/svc/favorites"
)

var favoriteColumns = []string{
	"id", "user_id", "title", "original_prompt", "optimized_prompt", "strategy",
	"scores", "analysis", "alternatives", "created_at", "updated_at",
}

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func favoriteRow(rows *pgxmock.Rows, f favorites.Favorite) *pgxmock.Rows {
	return rows.AddRow(
		f.ID, f.UserID, f.Title, f.OriginalPrompt, f.OptimizedPrompt, f.Strategy,
		[]byte(f.Scores), []byte(f.Analysis), []byte(f.Alternatives), f.CreatedAt, f.UpdatedAt,
	)
}

func storedFavorite(title string, created time.Time) favorites.Favorite {
	return favorites.Favorite{
		ID:              uuid.New(),
		UserID:          "user-1",
		Title:           title,
		OriginalPrompt:  "write about go",
		OptimizedPrompt: "Write a 500-word post about Go " + title,
		Strategy:        "clarity",
		Scores:          []byte(`{"clarity":9}`),
		Analysis:        []byte(`{}`),
		Alternatives:    []byte(`[]`),
		CreatedAt:       created,
		UpdatedAt:       created,
	}
}

func TestPGStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

	t.Run("insert returns the stored row", func(t *testing.T) {
		t.Parallel()
		pool := newMockPool(t)
		f := storedFavorite("one", now)

		pool.ExpectQuery(`INSERT INTO favorites`).
			WithArgs(f.ID, f.UserID, f.Title, f.OriginalPrompt, f.OptimizedPrompt, f.Strategy,
				[]byte(f.Scores), []byte(f.Analysis), []byte(f.Alternatives), f.CreatedAt, f.UpdatedAt).
			WillReturnRows(favoriteRow(pgxmock.NewRows(favoriteColumns), f))

		got, err := favorites.NewPGStore(pool).Insert(ctx, f)
		require.NoError(t, err)
		assert.Equal(t, f, got)
		require.NoError(t, pool.ExpectationsWereMet())
	})

	t.Run("constraint violation is a store error", func(t *testing.T) {
		t.Parallel()
		pool := newMockPool(t)
		f := storedFavorite("one", now)

		pool.ExpectQuery(`INSERT INTO favorites`).
			WithArgs(anyArgs(len(favoriteColumns))...).
			WillReturnError(&pgconn.PgError{
				Code:    "23502",
				Message: `null value in column "title" of relation "favorites" violates not-null constraint`,
			})

		_, err := favorites.NewPGStore(pool).Insert(ctx, f)
		require.ErrorIs(t, err, favorites.ErrStore)
		assert.NotErrorIs(t, err, favorites.ErrSchemaNotProvisioned)
	})

	t.Run("list keeps the query order", func(t *testing.T) {
		t.Parallel()
		pool := newMockPool(t)
		newer := storedFavorite("newer", now)
		older := storedFavorite("older", now.Add(-time.Hour))

		rows := pgxmock.NewRows(favoriteColumns)
		favoriteRow(rows, newer)
		favoriteRow(rows, older)
		pool.ExpectQuery(`FROM favorites WHERE user_id = \$1 ORDER BY created_at DESC`).
			WithArgs("user-1").
			WillReturnRows(rows)

		got, err := favorites.NewPGStore(pool).ListByUser(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, []favorites.Favorite{newer, older}, got)
		require.NoError(t, pool.ExpectationsWereMet())
	})

	t.Run("list without rows is empty, not nil", func(t *testing.T) {
		t.Parallel()
		pool := newMockPool(t)
		pool.ExpectQuery(`FROM favorites WHERE user_id`).
			WithArgs("user-1").
			WillReturnRows(pgxmock.NewRows(favoriteColumns))

		got, err := favorites.NewPGStore(pool).ListByUser(ctx, "user-1")
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("delete of a foreign row is not found", func(t *testing.T) {
		t.Parallel()
		pool := newMockPool(t)
		id := uuid.New()
		pool.ExpectExec(`DELETE FROM favorites WHERE id = \$1 AND user_id = \$2`).
			WithArgs(id, "user-2").
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		err := favorites.NewPGStore(pool).Delete(ctx, id, "user-2")
		require.ErrorIs(t, err, favorites.ErrNotFound)
	})

	t.Run("update title of a missing row is not found", func(t *testing.T) {
		t.Parallel()
		pool := newMockPool(t)
		id := uuid.New()
		pool.ExpectQuery(`UPDATE favorites SET title`).
			WithArgs(id, "user-1", "renamed", now).
			WillReturnRows(pgxmock.NewRows(favoriteColumns))

		_, err := favorites.NewPGStore(pool).UpdateTitle(ctx, id, "user-1", "renamed", now)
		require.ErrorIs(t, err, favorites.ErrNotFound)
	})

	t.Run("delete by content counts rows", func(t *testing.T) {
		t.Parallel()
		pool := newMockPool(t)
		pool.ExpectExec(`DELETE FROM favorites WHERE user_id = \$1 AND md5\(optimized_prompt\)`).
			WithArgs("user-1", "prompt").
			WillReturnResult(pgxmock.NewResult("DELETE", 2))

		n, err := favorites.NewPGStore(pool).DeleteByContent(ctx, "user-1", "prompt")
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})

	t.Run("ping without table", func(t *testing.T) {
		t.Parallel()
		pool := newMockPool(t)
		pool.ExpectExec(`SELECT 1 FROM favorites`).
			WithArgs().
			WillReturnError(&pgconn.PgError{Code: "42P01", Message: `relation "favorites" does not exist`})

		err := favorites.NewPGStore(pool).Ping(ctx)
		require.ErrorIs(t, err, favorites.ErrSchemaNotProvisioned)
	})
}

func anyArgs(n int) []any {
	args := make([]any, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}
