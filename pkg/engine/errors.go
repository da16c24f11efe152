package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned when a non-operator attempts a mutation
	ErrUnauthorized = errors.New("unauthorized")

	// ErrValidation is returned when an operation's preconditions do not hold
	ErrValidation = errors.New("validation failed")
)

func validationErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
