package repository

import "errors"

var (
	// ErrNotFound is returned when a requested run doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrStorage is returned when a dataset cannot be persisted
	ErrStorage = errors.New("storage failure")

	// ErrInvalidInput is returned when a row cannot be encoded for storage
	ErrInvalidInput = errors.New("invalid input")
)
