package validator

import "errors"

var (
	ErrFieldRequired = errors.New("field is required")
	ErrInvalidLength = errors.New("invalid length")
	ErrInvalidValue  = errors.New("invalid value")
)
