package services

import (
	"errors"
)

var (
	// ErrNotFound covers missing rows and rows owned by another user.
	ErrNotFound = errors.New("not found")
	// ErrConflict is a uniqueness race that could not be resolved by
	// retrying on the update path.
	ErrConflict = errors.New("conflict")
)

// ValidationError is returned for bad input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func invalid(msg string) error { return &ValidationError{Msg: msg} }
