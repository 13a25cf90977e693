package discovery

import (
	"context"
	"time"

	"github.com/rpggio/folio/internal/domain/activity"
)

// Source is a time-ordered activity store the feed reads from.
type Source interface {
	Count(ctx context.Context) (int, error)
	AllByTime(ctx context.Context) ([]activity.Activity, error)
	Newest(ctx context.Context) (*activity.Activity, error)
}

// PageCache stores rendered feed documents.
type PageCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
