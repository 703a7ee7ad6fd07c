package storage

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned when an entity is missing its identity.
	ErrInvalidInput = errors.New("invalid input")
)
