package reconcile

import (
	"context"

	"github.com/rpggio/folio/internal/domain/activity"
)

// Store is the live log the importer writes into. ImportIfUnknown must skip
// an id held by the live log or the archive, deciding both in one atomic
// step.
type Store interface {
	ImportIfUnknown(ctx context.Context, a *activity.Activity) (bool, error)
}
