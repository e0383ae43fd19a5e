package repository

import "errors"

var (
	// ErrNotFound indicates an entity was not located (or is not visible to the caller).
	ErrNotFound = errors.New("repository: not found")
	// ErrConflict indicates a uniqueness violation.
	ErrConflict = errors.New("repository: conflict")
	// ErrInvalidArgument indicates the store rejected a value.
	ErrInvalidArgument = errors.New("repository: invalid argument")
	// ErrCapacity indicates an office already holds as many workers as its capacity.
	ErrCapacity = errors.New("repository: office at capacity")
)
