package handler

import (
	"errors"
	"net/http"
)

// ErrNilResponse is reported when a handler returns no Response.
var ErrNilResponse = errors.New("handler returned nil response")

// HTTPError is an error already resolved to a status, a machine-readable tag
// and a human message.
type HTTPError struct {
	Status  int
	Tag     string
	Message string
}

func (e HTTPError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Tag
}

// NewHTTPError creates an HTTPError.
func NewHTTPError(status int, tag, message string) HTTPError {
	return HTTPError{Status: status, Tag: tag, Message: message}
}

var (
	ErrBadRequest       = HTTPError{Status: http.StatusBadRequest, Tag: "bad_request", Message: "Bad request"}
	ErrUnauthorized     = HTTPError{Status: http.StatusUnauthorized, Tag: "unauthorized", Message: "Authentication required"}
	ErrNotFound         = HTTPError{Status: http.StatusNotFound, Tag: "not_found", Message: "Not found"}
	ErrMethodNotAllowed = HTTPError{Status: http.StatusMethodNotAllowed, Tag: "method_not_allowed", Message: "Method not allowed"}
	ErrTooManyRequests  = HTTPError{Status: http.StatusTooManyRequests, Tag: "rate_limited", Message: "Too many requests"}
	ErrInternal         = HTTPError{Status: http.StatusInternalServerError, Tag: "internal_error", Message: "Internal server error"}
	ErrUnavailable      = HTTPError{Status: http.StatusServiceUnavailable, Tag: "service_unavailable", Message: "Service unavailable"}
)
