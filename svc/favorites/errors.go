package favorites

import "errors"

var (
	ErrMissingField         = errors.New("favorites: missing required field")
	ErrInvalidID            = errors.New("favorites: invalid favorite id")
	ErrNotFound             = errors.New("favorites: favorite not found")
	ErrSchemaNotProvisioned = errors.New("favorites: favorites table does not exist")
	ErrStore                = errors.New("favorites: store failure")
)
