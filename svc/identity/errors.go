package identity

import "errors"

var (
	ErrNotConfigured      = errors.New("identity: auth backend not configured")
	ErrMissingToken       = errors.New("identity: missing bearer token")
	ErrInvalidToken       = errors.New("identity: invalid token")
	ErrMissingCredentials = errors.New("identity: email and password are required")
	ErrMissingEmail       = errors.New("identity: email is required")
	ErrUpstream           = errors.New("identity: auth backend rejected the request")
	ErrUnavailable        = errors.New("identity: auth backend unavailable")
)

// UpstreamError carries the message returned by the auth backend for a 4xx
// response. It matches ErrUpstream.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return "identity: " + e.Message
}

func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}
