package service

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrNotOwner is returned when a caller tries to modify a record that
	// belongs to a different user.
	ErrNotOwner = errors.New("record does not belong to user")
)
