package retention

import "errors"

// ErrWorkerClosed is returned by Flush after Close.
var ErrWorkerClosed = errors.New("retention worker closed")
