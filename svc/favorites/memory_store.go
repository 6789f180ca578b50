package favorites

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu   sync.RWMutex
	rows map[uuid.UUID]Favorite
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[uuid.UUID]Favorite)}
}

func (s *MemoryStore) Insert(_ context.Context, f Favorite) (Favorite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[f.ID] = f
	return f, nil
}

func (s *MemoryStore) ListByUser(_ context.Context, userID string) ([]Favorite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Favorite, 0)
	for _, f := range s.rows {
		if f.UserID == userID {
			out = append(out, f)
		}
	}
	slices.SortFunc(out, func(a, b Favorite) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) Delete(_ context.Context, id uuid.UUID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.rows[id]
	if !ok || f.UserID != userID {
		return ErrNotFound
	}
	delete(s.rows, id)
	return nil
}

func (s *MemoryStore) UpdateTitle(_ context.Context, id uuid.UUID, userID, title string, at time.Time) (Favorite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.rows[id]
	if !ok || f.UserID != userID {
		return Favorite{}, ErrNotFound
	}
	f.Title = title
	f.UpdatedAt = at
	s.rows[id] = f
	return f, nil
}

func (s *MemoryStore) FindByContent(_ context.Context, userID, optimizedPrompt string) (Favorite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range s.rows {
		if f.UserID == userID && f.OptimizedPrompt == optimizedPrompt {
			return f, nil
		}
	}
	return Favorite{}, ErrNotFound
}

func (s *MemoryStore) DeleteByContent(_ context.Context, userID, optimizedPrompt string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, f := range s.rows {
		if f.UserID == userID && f.OptimizedPrompt == optimizedPrompt {
			delete(s.rows, id)
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) Ping(context.Context) error {
	return nil
}
