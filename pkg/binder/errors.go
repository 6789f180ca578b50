package binder

import "errors"

var (
	ErrNotApplicable        = errors.New("binder: not applicable to request")
	ErrUnsupportedMediaType = errors.New("unsupported media type, expected application/json")
	ErrInvalidJSON          = errors.New("invalid JSON request body")
	ErrBodyTooLarge         = errors.New("request body too large")
	ErrInvalidQuery         = errors.New("invalid query parameters")
	ErrInvalidPath          = errors.New("invalid path parameters")
	ErrInvalidHeader        = errors.New("invalid request headers")
	ErrInvalidTarget        = errors.New("binder: target must be a non-nil pointer to struct")
)
