package favorites

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const columns = `id, user_id, title, original_prompt, optimized_prompt, strategy,
	scores, analysis, alternatives, created_at, updated_at`

// PGStore keeps favorites in the favorites table.
type PGStore struct {
	db querier
}

// NewPGStore creates a store on db, usually a *pgxpool.Pool.
func NewPGStore(db querier) *PGStore {
	if db == nil {
		panic("favorites: nil database")
	}
	return &PGStore{db: db}
}

func (s *PGStore) Insert(ctx context.Context, f Favorite) (Favorite, error) {
	row := s.db.QueryRow(ctx, `
		INSERT INTO favorites (`+columns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+columns,
		f.ID, f.UserID, f.Title, f.OriginalPrompt, f.OptimizedPrompt, f.Strategy,
		[]byte(f.Scores), []byte(f.Analysis), []byte(f.Alternatives), f.CreatedAt, f.UpdatedAt,
	)
	out, err := scanFavorite(row)
	return out, wrap(err)
}

func (s *PGStore) ListByUser(ctx context.Context, userID string) ([]Favorite, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+columns+` FROM favorites WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, wrap(err)
	}
	defer rows.Close()

	out := make([]Favorite, 0)
	for rows.Next() {
		f, err := scanFavorite(rows)
		if err != nil {
			return nil, wrap(err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(err)
	}
	return out, nil
}

func (s *PGStore) Delete(ctx context.Context, id uuid.UUID, userID string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM favorites WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) UpdateTitle(ctx context.Context, id uuid.UUID, userID, title string, at time.Time) (Favorite, error) {
	row := s.db.QueryRow(ctx, `
		UPDATE favorites SET title = $3, updated_at = $4
		WHERE id = $1 AND user_id = $2
		RETURNING `+columns,
		id, userID, title, at,
	)
	f, err := scanFavorite(row)
	return f, wrap(err)
}

func (s *PGStore) FindByContent(ctx context.Context, userID, optimizedPrompt string) (Favorite, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+columns+` FROM favorites
		WHERE user_id = $1 AND md5(optimized_prompt) = md5($2) AND optimized_prompt = $2
		LIMIT 1`,
		userID, optimizedPrompt,
	)
	f, err := scanFavorite(row)
	return f, wrap(err)
}

func (s *PGStore) DeleteByContent(ctx context.Context, userID, optimizedPrompt string) (int64, error) {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM favorites WHERE user_id = $1 AND md5(optimized_prompt) = md5($2) AND optimized_prompt = $2`,
		userID, optimizedPrompt,
	)
	if err != nil {
		return 0, wrap(err)
	}
	return tag.RowsAffected(), nil
}

func (s *PGStore) Ping(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `SELECT 1 FROM favorites LIMIT 1`)
	return wrap(err)
}

func scanFavorite(row pgx.Row) (Favorite, error) {
	var (
		f                              Favorite
		scores, analysis, alternatives []byte
	)
	err := row.Scan(
		&f.ID, &f.UserID, &f.Title, &f.OriginalPrompt, &f.OptimizedPrompt, &f.Strategy,
		&scores, &analysis, &alternatives, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return Favorite{}, err
	}
	f.Scores = scores
	f.Analysis = analysis
	f.Alternatives = alternatives
	return f, nil
}
