package discovery_test

import (
	"context"
	"testing"

	"github.com/rpggio/folio/internal/domain/activity"
	"github.com/rpggio/folio/internal/domain/discovery"
	"github.com/rpggio/folio/internal/sqlite"
	"github.com/stretchr/testify/require"
)

// rotatingHistory archives the whole live log right before each read, the
// way the retention worker can at any moment.
type rotatingHistory struct {
	*sqlite.HistoryRepository
	rotator *sqlite.Rotator
}

func (h rotatingHistory) rotate(ctx context.Context) error {
	_, err := h.rotator.Rotate(ctx, 0)
	return err
}

func (h rotatingHistory) Count(ctx context.Context) (int, error) {
	if err := h.rotate(ctx); err != nil {
		return 0, err
	}
	return h.HistoryRepository.Count(ctx)
}

func (h rotatingHistory) AllByTime(ctx context.Context) ([]activity.Activity, error) {
	if err := h.rotate(ctx); err != nil {
		return nil, err
	}
	return h.HistoryRepository.AllByTime(ctx)
}

func TestPage_RotationDuringReadKeepsItemsUnique(t *testing.T) {
	ctx := context.Background()
	db, err := sqlite.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	live := sqlite.NewActivityRepository(db)
	for _, a := range generate(3, 0) {
		require.NoError(t, live.Put(ctx, &a))
	}

	history := rotatingHistory{sqlite.NewHistoryRepository(db), sqlite.NewRotator(db)}
	svc := discovery.NewService(live, history)

	c, err := svc.Collection(ctx, baseURL)
	require.NoError(t, err)
	require.Equal(t, 3, c.TotalItems)

	p, err := svc.Page(ctx, baseURL, 0)
	require.NoError(t, err)
	require.Equal(t, []string{"urn:uuid:0000", "urn:uuid:0001", "urn:uuid:0002"}, itemIDs(p))

	count, err := sqlite.NewArchiveRepository(db).Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, count)
}
