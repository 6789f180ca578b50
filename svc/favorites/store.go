package favorites

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store persists favorites. Methods taking a user id only see that user's
// rows; a row owned by someone else is reported as ErrNotFound.
type Store interface {
	Insert(ctx context.Context, f Favorite) (Favorite, error)
	// ListByUser returns the user's favorites, newest first.
	ListByUser(ctx context.Context, userID string) ([]Favorite, error)
	Delete(ctx context.Context, id uuid.UUID, userID string) error
	UpdateTitle(ctx context.Context, id uuid.UUID, userID, title string, at time.Time) (Favorite, error)
	FindByContent(ctx context.Context, userID, optimizedPrompt string) (Favorite, error)
	// DeleteByContent removes every favorite of the user with that optimized
	// prompt and returns how many were removed.
	DeleteByContent(ctx context.Context, userID, optimizedPrompt string) (int64, error)
	// Ping checks that the backing schema is usable.
	Ping(ctx context.Context) error
}
