package discovery

import "errors"

var (
	// ErrInvalidPage indicates a negative page index.
	ErrInvalidPage = errors.New("invalid page index")
	// ErrInvalidScope indicates an unknown feed scope.
	ErrInvalidScope = errors.New("invalid discovery scope")
)
