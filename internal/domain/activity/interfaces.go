package activity

import "context"

// Store is the primary, size-bounded activity collection.
type Store interface {
	Put(ctx context.Context, a *Activity) error
	Get(ctx context.Context, id string) (*Activity, error)
	Count(ctx context.Context) (int, error)
	AllByTime(ctx context.Context) ([]Activity, error)
	AllByObject(ctx context.Context, objectID string) ([]Activity, error)
	AllByType(ctx context.Context, t Type) ([]Activity, error)
	Since(ctx context.Context, endTime string) ([]Activity, error)
	Recent(ctx context.Context, limit int) ([]Activity, error)
	Clear(ctx context.Context) error
}

// ArchiveStore holds activities rotated out of the primary store.
type ArchiveStore interface {
	Get(ctx context.Context, id string) (*Activity, error)
	Count(ctx context.Context) (int, error)
	AllByTime(ctx context.Context) ([]Activity, error)
	AllByObject(ctx context.Context, objectID string) ([]Activity, error)
	Clear(ctx context.Context) error
}

// History reads the primary store and the archive as one consistent
// snapshot, so a concurrent rotation never duplicates or drops an activity.
type History interface {
	AllByTime(ctx context.Context) ([]Activity, error)
	AllByObject(ctx context.Context, objectID string) ([]Activity, error)
	Split(ctx context.Context) (StoreSplit, error)
}

// MetadataStore persists small installation-scoped values such as the actor.
type MetadataStore interface {
	GetMeta(ctx context.Context, key string) (string, error)
	PutMeta(ctx context.Context, key, value string) error
}

// RetentionTrigger schedules a retention check without waiting for it.
type RetentionTrigger interface {
	Trigger()
}
