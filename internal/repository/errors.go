package repository

import "errors"

// ErrNotFound is returned by lookups targeting an id that does not exist,
// and by conditional updates that matched no row.
var ErrNotFound = errors.New("record not found")
