package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports an identifier that does not resolve to an entity.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput reports a value rejected before any mutation.
	ErrInvalidInput = errors.New("invalid input")
)

// Invalidf wraps ErrInvalidInput with a message suitable for the caller.
func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// NotFoundf wraps ErrNotFound naming the missing entity.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
}
