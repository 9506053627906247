package store

import "errors"

var (
	// ErrRealmNotFound is returned when an operation names a realm that was never seeded
	ErrRealmNotFound = errors.New("realm not found")

	// ErrInvalidUser is returned when a write is attempted for a user that was never persisted
	ErrInvalidUser = errors.New("user has no id")
)
