package reconcile

import "errors"

// ErrInvalidActivity indicates an import entry missing a required field.
var ErrInvalidActivity = errors.New("invalid activity")
