package identity

import (
	"net/http"
	"strings"
)

// DenyHandler writes the response for a request that failed authentication.
type DenyHandler func(w http.ResponseWriter, r *http.Request, err error)

// MiddlewareOption configures Middleware.
type MiddlewareOption func(*middlewareConfig)

type middlewareConfig struct {
	deny DenyHandler
}

// WithDenyHandler replaces the plain-text 401 response.
func WithDenyHandler(h DenyHandler) MiddlewareOption {
	return func(c *middlewareConfig) {
		if h != nil {
			c.deny = h
		}
	}
}

func defaultDeny(w http.ResponseWriter, _ *http.Request, _ error) {
	http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
}

// Middleware verifies the bearer token and stores the identity in the request
// context. An invalid token is always rejected. A missing token is rejected
// only when required is set. With a nil verifier no token can be verified,
// so every request is anonymous.
func Middleware(v *Verifier, required bool, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := &middlewareConfig{deny: defaultDeny}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" || v == nil {
				if required {
					cfg.deny(w, r, ErrMissingToken)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			id, err := v.Verify(token)
			if err != nil {
				cfg.deny(w, r, err)
				return
			}

			ctx := WithToken(WithIdentity(r.Context(), id), token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the token of an "Authorization: Bearer <token>"
// header, or returns an empty string.
func BearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Require rejects requests that reach it without an identity in the
// context. It is meant to sit behind an optional Middleware.
func Require(opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := &middlewareConfig{deny: defaultDeny}
	for _, opt := range opts {
		opt(cfg)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := FromContext(r.Context()); !ok {
				cfg.deny(w, r, ErrMissingToken)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
