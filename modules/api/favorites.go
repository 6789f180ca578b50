package api

import (
	"net/http"

	"github.com/dmitrymomot/promptkit/handler"
	"github.com/dmitrymomot/promptkit/svc/favorites"
	"github.com/dmitrymomot/promptkit/svc/identity"
)

// Favorites routes sit behind identity.Require, so the identity is always
// present.

func (s *server) listFavorites(ctx handler.Context, _ struct{}) handler.Response {
	id, _ := identity.FromContext(ctx)
	list, err := s.favorites.List(ctx, id.UserID)
	if err != nil {
		return handler.Fail(err)
	}
	return handler.JSON(list)
}

func (s *server) addFavorite(ctx handler.Context, req favorites.NewFavorite) handler.Response {
	id, _ := identity.FromContext(ctx)
	f, err := s.favorites.Add(ctx, id.UserID, req)
	if err != nil {
		return handler.Fail(err)
	}
	return handler.JSONWithStatus(http.StatusCreated, f)
}

type renameRequest struct {
	ID    string `path:"id"`
	Title string `json:"title"`
}

func (s *server) renameFavorite(ctx handler.Context, req renameRequest) handler.Response {
	id, _ := identity.FromContext(ctx)
	if _, err := s.favorites.UpdateTitle(ctx, id.UserID, req.ID, req.Title); err != nil {
		return handler.Fail(err)
	}
	return handler.JSON(map[string]bool{"updated": true})
}

type favoriteIDRequest struct {
	ID string `path:"id"`
}

func (s *server) deleteFavorite(ctx handler.Context, req favoriteIDRequest) handler.Response {
	id, _ := identity.FromContext(ctx)
	if err := s.favorites.Delete(ctx, id.UserID, req.ID); err != nil {
		return handler.Fail(err)
	}
	return handler.JSON(map[string]bool{"deleted": true})
}

type contentQuery struct {
	OptimizedPrompt string `query:"optimizedPrompt"`
}

func (s *server) removeFavoriteByContent(ctx handler.Context, req contentQuery) handler.Response {
	id, _ := identity.FromContext(ctx)
	if err := s.favorites.RemoveByContent(ctx, id.UserID, req.OptimizedPrompt); err != nil {
		return handler.Fail(err)
	}
	return handler.JSON(map[string]bool{"deleted": true})
}

func (s *server) favoriteStatus(ctx handler.Context, req contentQuery) handler.Response {
	id, _ := identity.FromContext(ctx)
	return handler.JSON(map[string]bool{
		"available": s.favorites.IsAvailable(ctx),
		"favorited": s.favorites.IsFavorited(ctx, id.UserID, req.OptimizedPrompt),
	})
}
