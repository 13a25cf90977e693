package activity

import "errors"

var (
	// ErrActivityNotFound indicates no store holds the requested activity.
	ErrActivityNotFound = errors.New("activity not found")
	// ErrInvalidInput indicates invalid input for activity operations.
	ErrInvalidInput = errors.New("invalid activity input")
)
