package favorites

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/promptkit/pkg/logger"
	"github.com/dmitrymomot/promptkit/pkg/sanitizer"
	"github.com/dmitrymomot/promptkit/pkg/validator"
)

// Service validates favorites input and talks to a Store.
type Service struct {
	store Store
	log   *slog.Logger
	now   func() time.Time
}

// ServiceOption configures a Service instance.
type ServiceOption func(*Service)

func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a Service. A nil store makes the feature unavailable:
// reads report nothing and writes fail with ErrSchemaNotProvisioned.
func NewService(store Store, opts ...ServiceOption) *Service {
	s := &Service{
		store: store,
		log:   slog.Default(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("favorites"))
	return s
}

// IsAvailable reports whether favorites can be stored right now.
func (s *Service) IsAvailable(ctx context.Context) bool {
	if s.store == nil {
		return false
	}
	if err := s.store.Ping(ctx); err != nil {
		s.log.WarnContext(ctx, "favorites store unavailable", logger.Error(err))
		return false
	}
	return true
}

// Add saves a favorite for userID.
func (s *Service) Add(ctx context.Context, userID string, in NewFavorite) (Favorite, error) {
	in.Title = sanitizer.Title(in.Title)
	if err := validateNew(userID, in); err != nil {
		return Favorite{}, err
	}
	if s.store == nil {
		return Favorite{}, ErrSchemaNotProvisioned
	}

	now := s.now().UTC()
	f := Favorite{
		ID:              uuid.New(),
		UserID:          userID,
		Title:           in.Title,
		OriginalPrompt:  in.OriginalPrompt,
		OptimizedPrompt: in.OptimizedPrompt,
		Strategy:        in.Strategy,
		Scores:          orDefault(in.Scores, "{}"),
		Analysis:        orDefault(in.Analysis, "{}"),
		Alternatives:    orDefault(in.Alternatives, "[]"),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	out, err := s.store.Insert(ctx, f)
	if err != nil {
		s.logFailure(ctx, "add", userID, err)
		return Favorite{}, err
	}
	return out, nil
}

// List returns userID's favorites, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]Favorite, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: userId", ErrMissingField)
	}
	if s.store == nil {
		return []Favorite{}, ErrSchemaNotProvisioned
	}
	out, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		s.logFailure(ctx, "list", userID, err)
		return []Favorite{}, err
	}
	return out, nil
}

// Delete removes one favorite of userID.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	fid, err := s.parseID(userID, id)
	if err != nil {
		return err
	}
	if s.store == nil {
		return ErrSchemaNotProvisioned
	}
	if err := s.store.Delete(ctx, fid, userID); err != nil {
		s.logFailure(ctx, "delete", userID, err)
		return err
	}
	return nil
}

// UpdateTitle renames one favorite of userID.
func (s *Service) UpdateTitle(ctx context.Context, userID, id, title string) (Favorite, error) {
	fid, err := s.parseID(userID, id)
	if err != nil {
		return Favorite{}, err
	}
	title = sanitizer.Title(title)
	if title == "" {
		return Favorite{}, fmt.Errorf("%w: title", ErrMissingField)
	}
	if s.store == nil {
		return Favorite{}, ErrSchemaNotProvisioned
	}
	f, err := s.store.UpdateTitle(ctx, fid, userID, title, s.now().UTC())
	if err != nil {
		s.logFailure(ctx, "update_title", userID, err)
		return Favorite{}, err
	}
	return f, nil
}

// RemoveByContent removes the favorites of userID whose optimized prompt
// equals optimizedPrompt. Removing nothing is not an error.
func (s *Service) RemoveByContent(ctx context.Context, userID, optimizedPrompt string) error {
	if userID == "" {
		return fmt.Errorf("%w: userId", ErrMissingField)
	}
	if optimizedPrompt == "" {
		return fmt.Errorf("%w: optimizedPrompt", ErrMissingField)
	}
	if s.store == nil {
		return ErrSchemaNotProvisioned
	}
	if _, err := s.store.DeleteByContent(ctx, userID, optimizedPrompt); err != nil {
		s.logFailure(ctx, "remove_by_content", userID, err)
		return err
	}
	return nil
}

// IsFavorited reports whether userID saved optimizedPrompt. Any failure
// answers false.
func (s *Service) IsFavorited(ctx context.Context, userID, optimizedPrompt string) bool {
	if s.store == nil || userID == "" || optimizedPrompt == "" {
		return false
	}
	_, err := s.store.FindByContent(ctx, userID, optimizedPrompt)
	if err != nil && !errors.Is(err, ErrNotFound) {
		s.logFailure(ctx, "is_favorited", userID, err)
	}
	return err == nil
}

func (s *Service) parseID(userID, id string) (uuid.UUID, error) {
	if userID == "" {
		return uuid.Nil, fmt.Errorf("%w: userId", ErrMissingField)
	}
	if id == "" {
		return uuid.Nil, fmt.Errorf("%w: id", ErrMissingField)
	}
	fid, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, errors.Join(ErrInvalidID, err)
	}
	return fid, nil
}

func (s *Service) logFailure(ctx context.Context, op, userID string, err error) {
	level := slog.LevelError
	switch {
	case errors.Is(err, ErrNotFound):
		return
	case errors.Is(err, ErrSchemaNotProvisioned):
		level = slog.LevelWarn
	}
	s.log.Log(ctx, level, "favorites operation failed",
		slog.String("op", op), logger.UserID(userID), logger.Error(err))
}

func validateNew(userID string, in NewFavorite) error {
	err := validator.Apply(
		validator.Required("userId", userID),
		validator.Required("title", in.Title),
		validator.Required("originalPrompt", in.OriginalPrompt),
		validator.Required("optimizedPrompt", in.OptimizedPrompt),
		validator.Required("strategy", in.Strategy),
	)
	if verrs := validator.Extract(err); verrs != nil {
		return fmt.Errorf("%w: %s", ErrMissingField, strings.Join(verrs.Fields(), ", "))
	}
	return err
}
