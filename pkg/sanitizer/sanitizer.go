// Package sanitizer normalizes user input before it is validated or stored.
package sanitizer

import (
	"strings"
	"unicode"
)

// Apply runs transforms over value in order.
func Apply[T any](value T, transforms ...func(T) T) T {
	for _, transform := range transforms {
		value = transform(value)
	}
	return value
}

// Compose joins transforms into a single transform.
func Compose[T any](transforms ...func(T) T) func(T) T {
	return func(value T) T {
		return Apply(value, transforms...)
	}
}

// Trim removes leading and trailing whitespace.
func Trim(s string) string {
	return strings.TrimSpace(s)
}

// SingleLine replaces line breaks and tabs with spaces and collapses runs of
// whitespace.
func SingleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// StripControl drops control characters other than newline and tab.
func StripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, s)
}

// Title normalizes a short user-supplied label.
var Title = Compose(StripControl, SingleLine)
