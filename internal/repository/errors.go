package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrStaleWrite is returned when an optimistic update loses against a
	// concurrent writer (the stored updated_at no longer matches the token
	// the caller read).
	ErrStaleWrite = errors.New("stale write: ride was modified concurrently")
)
