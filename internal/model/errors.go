package model

import (
	"errors"
	"strings"
)

var (
	// ErrIndexUnavailable is returned when no standard library index exists for a runtime version.
	ErrIndexUnavailable = errors.New("standard library index unavailable")
	// ErrValidation is matched by every ValidationError.
	ErrValidation = errors.New("invalid input")
)

// ValidationError collects every problem found with the user's input.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return ErrValidation.Error() + ": " + strings.Join(e.Problems, "; ")
}

// Is makes errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
