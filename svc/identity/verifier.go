package identity

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates access tokens signed with the backend's JWT secret.
type Verifier struct {
	secret   []byte
	audience string
	now      func() time.Time
}

// VerifierOption configures a Verifier.
type VerifierOption func(*Verifier)

// WithVerifierClock replaces time.Now for expiry checks.
func WithVerifierClock(now func() time.Time) VerifierOption {
	return func(v *Verifier) {
		if now != nil {
			v.now = now
		}
	}
}

// NewVerifier returns ErrNotConfigured when cfg has no JWT secret.
func NewVerifier(cfg Config, opts ...VerifierOption) (*Verifier, error) {
	if cfg.JWTSecret == "" {
		return nil, ErrNotConfigured
	}
	audience := cfg.Audience
	if audience == "" {
		audience = defaultAudience
	}
	v := &Verifier{
		secret:   []byte(cfg.JWTSecret),
		audience: audience,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

type accessClaims struct {
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Verify parses token and returns the identity it was issued for.
func (v *Verifier) Verify(token string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrMissingToken
	}

	var claims accessClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(v.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return Identity{}, errors.Join(ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return Identity{}, errors.Join(ErrInvalidToken, errors.New("token has no subject"))
	}
	return Identity{UserID: claims.Subject, Email: claims.Email}, nil
}
