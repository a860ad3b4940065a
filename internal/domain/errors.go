package domain

import "errors"

var (
	// ErrNotFound is returned when a procedure's target row or a required
	// ancestor does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a rename or move would collide with an
	// existing sibling.
	ErrConflict = errors.New("name already in use")
	ErrInvalid  = errors.New("invalid argument")
)
