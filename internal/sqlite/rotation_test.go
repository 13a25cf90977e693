package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/rpggio/folio/internal/domain/activity"
	"github.com/rpggio/folio/internal/repository"
	"github.com/stretchr/testify/require"
)

func seedActivities(t *testing.T, repo *ActivityRepository, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		require.NoError(t, repo.Put(context.Background(), newActivity(i, activity.TypeUpdate, "m1", time.Duration(i)*time.Second)))
	}
}

func TestRotator_MovesOldest(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	live := NewActivityRepository(db)
	archive := NewArchiveRepository(db)
	seedActivities(t, live, 11)

	moved, err := NewRotator(db).Rotate(ctx, 5)
	require.NoError(t, err)
	require.Equal(t, 6, moved)

	kept, err := live.AllByTime(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{
		"urn:uuid:00000007", "urn:uuid:00000008", "urn:uuid:00000009",
		"urn:uuid:00000010", "urn:uuid:00000011",
	}, ids(kept))

	archived, err := archive.AllByTime(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{
		"urn:uuid:00000001", "urn:uuid:00000002", "urn:uuid:00000003",
		"urn:uuid:00000004", "urn:uuid:00000005", "urn:uuid:00000006",
	}, ids(archived))

	got, err := archive.Get(ctx, "urn:uuid:00000001")
	require.NoError(t, err)
	require.Equal(t, "activity 1", got.Summary)

	_, err = live.Get(ctx, "urn:uuid:00000001")
	require.ErrorIs(t, err, repository.ErrNotFound)

	_, err = archive.Get(ctx, "urn:uuid:00000006")
	require.NoError(t, err)
	_, err = archive.Get(ctx, "urn:uuid:00000007")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRotator_NoopUnderKeep(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	live := NewActivityRepository(db)
	seedActivities(t, live, 3)

	moved, err := NewRotator(db).Rotate(ctx, 5)
	require.NoError(t, err)
	require.Zero(t, moved)

	count, err := NewArchiveRepository(db).Count(ctx)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestRotator_ConvergesOnArchivedID(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	live := NewActivityRepository(db)
	archive := NewArchiveRepository(db)
	seedActivities(t, live, 4)

	// Simulate a row that is already archived but was left in the live log.
	_, err := db.ExecContext(ctx, `
		INSERT INTO activities_archive (id, seq, type, end_time, object_id, object_type, doc, archived_at)
		SELECT id, seq, type, end_time, object_id, object_type, doc, 'x' FROM activities WHERE id = ?`,
		"urn:uuid:00000001")
	require.NoError(t, err)

	moved, err := NewRotator(db).Rotate(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, 2, moved)

	liveCount, err := live.Count(ctx)
	require.NoError(t, err)
	archiveCount, err := archive.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, liveCount)
	require.Equal(t, 2, archiveCount)
}

func TestRotator_RollsBackOnCancelledContext(t *testing.T) {
	db := NewTestDB(t)
	live := NewActivityRepository(db)
	seedActivities(t, live, 6)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRotator(db).Rotate(ctx, 2)
	require.Error(t, err)

	count, err := live.Count(context.Background())
	require.NoError(t, err)
	require.Equal(t, 6, count)
	archived, err := NewArchiveRepository(db).Count(context.Background())
	require.NoError(t, err)
	require.Zero(t, archived)
}

func TestRotator_PreservesUnion(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	live := NewActivityRepository(db)
	archive := NewArchiveRepository(db)
	seedActivities(t, live, 20)

	before, err := live.AllByTime(ctx)
	require.NoError(t, err)

	_, err = NewRotator(db).Rotate(ctx, 7)
	require.NoError(t, err)

	kept, err := live.AllByTime(ctx)
	require.NoError(t, err)
	archived, err := archive.AllByTime(ctx)
	require.NoError(t, err)

	require.Equal(t, ids(before), append(ids(archived), ids(kept)...))
}

func TestRotator_RejectsNegativeKeep(t *testing.T) {
	_, err := NewRotator(NewTestDB(t)).Rotate(context.Background(), -1)
	require.ErrorIs(t, err, repository.ErrInvalidInput)
}
