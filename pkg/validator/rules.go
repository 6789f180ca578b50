package validator

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"
)

// Required fails for strings that are empty after trimming whitespace.
func Required(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return strings.TrimSpace(value) != ""
		},
		Error: ValidationError{Field: field, Message: "field is required", Err: ErrFieldRequired},
	}
}

// MaxRunes fails when value has more than limit characters.
func MaxRunes(field, value string, limit int) Rule {
	return Rule{
		Check: func() bool {
			return utf8.RuneCountInString(value) <= limit
		},
		Error: ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must be at most %d characters long", limit),
			Err:     ErrInvalidLength,
		},
	}
}

// InList fails when value is not one of allowed.
func InList[T comparable](field string, value T, allowed []T) Rule {
	return Rule{
		Check: func() bool {
			return slices.Contains(allowed, value)
		},
		Error: ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must be one of: %v", allowed),
			Err:     ErrInvalidValue,
		},
	}
}
