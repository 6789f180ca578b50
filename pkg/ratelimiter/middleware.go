package ratelimiter

import (
	"net/http"
	"strconv"
)

// KeyFunc derives the bucket key for a request.
type KeyFunc func(r *http.Request) string

// DenyHandler writes the response for a rejected or failed check.
// result is nil when the store failed.
type DenyHandler func(w http.ResponseWriter, r *http.Request, result *Result, err error)

// MiddlewareOption configures Middleware.
type MiddlewareOption func(*middlewareConfig)

type middlewareConfig struct {
	deny DenyHandler
}

// WithDenyHandler replaces the plain-text 429/500 responses.
func WithDenyHandler(h DenyHandler) MiddlewareOption {
	return func(c *middlewareConfig) {
		if h != nil {
			c.deny = h
		}
	}
}

func defaultDeny(w http.ResponseWriter, _ *http.Request, result *Result, err error) {
	if err != nil || result == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
}

// Middleware rejects requests whose bucket is empty and sets the
// X-RateLimit-* headers on every response. Requests with an empty key pass.
func Middleware(b *Bucket, keyFunc KeyFunc, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := &middlewareConfig{deny: defaultDeny}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFunc(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			result, err := b.Allow(r.Context(), key)
			if err != nil {
				cfg.deny(w, r, nil, err)
				return
			}

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(max(0, result.Remaining)))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

			if !result.Allowed() {
				if secs := int(result.RetryAfter().Seconds()); secs > 0 {
					h.Set("Retry-After", strconv.Itoa(secs))
				}
				cfg.deny(w, r, result, nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
