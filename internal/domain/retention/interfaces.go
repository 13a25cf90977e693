package retention

import "context"

// Counter reports the live log size.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// Rotator moves the oldest live entries into the archive until keep remain,
// atomically across both stores.
type Rotator interface {
	Rotate(ctx context.Context, keep int) (int, error)
}
