package task

import "errors"

var (
	// ErrInvalidInput is returned for an empty name or a non-positive id.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound is returned when no record has the requested id.
	ErrNotFound = errors.New("task not found")
	// ErrOutOfMemory is returned when the store cannot grow to hold another record.
	ErrOutOfMemory = errors.New("task store capacity exhausted")
)
