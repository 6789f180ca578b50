package identity

import (
	"context"
	"log/slog"
)

// Identity is a verified user.
type Identity struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
}

type (
	identityKey struct{}
	tokenKey    struct{}
)

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext returns the identity stored by Middleware.
func FromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok && id.UserID != ""
}

// WithToken returns a copy of ctx carrying the raw access token.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext returns the access token the identity was verified from.
func TokenFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// LoggerExtractor adds "user_id" to log records emitted with an
// authenticated request context.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id, ok := FromContext(ctx); ok {
			return slog.String("user_id", id.UserID), true
		}
		return slog.Attr{}, false
	}
}
