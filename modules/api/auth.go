package api

import (
	"cmp"

	"github.com/dmitrymomot/promptkit/handler"
	"github.com/dmitrymomot/promptkit/svc/identity"
)

type credentialsRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RedirectTo string `json:"redirectTo"`
}

// confirmationRedirect is where email confirmation links land.
func (s *server) confirmationRedirect(ctx handler.Context, requested string) string {
	return cmp.Or(requested, OriginFromRequest(ctx.Request(), s.cfg.BaseURL)+"/")
}

func (s *server) signUp(ctx handler.Context, req credentialsRequest) handler.Response {
	res, err := s.identity.SignUp(ctx, req.Email, req.Password, s.confirmationRedirect(ctx, req.RedirectTo))
	if err != nil {
		return handler.Fail(err)
	}
	return handler.JSON(res)
}

func (s *server) signIn(ctx handler.Context, req credentialsRequest) handler.Response {
	session, err := s.identity.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return handler.Fail(err)
	}
	return handler.JSON(session)
}

func (s *server) resendVerification(ctx handler.Context, req credentialsRequest) handler.Response {
	if err := s.identity.ResendVerification(ctx, req.Email, s.confirmationRedirect(ctx, req.RedirectTo)); err != nil {
		return handler.Fail(err)
	}
	return handler.JSON(map[string]bool{"sent": true})
}

func (s *server) signOut(ctx handler.Context, _ struct{}) handler.Response {
	if err := s.identity.SignOut(ctx); err != nil {
		return handler.Fail(err)
	}
	return handler.JSON(map[string]bool{"signedOut": true})
}

func (s *server) session(ctx handler.Context, _ struct{}) handler.Response {
	u, err := s.identity.CurrentUser(ctx)
	if err != nil {
		return handler.Fail(err)
	}
	return handler.JSON(map[string]identity.Identity{
		"user": {UserID: u.ID, Email: u.Email},
	})
}
