package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/rpggio/folio/internal/domain/activity"
	"github.com/stretchr/testify/require"
)

func TestHistoryRepository_SpansBothTables(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	live := NewActivityRepository(db)
	history := NewHistoryRepository(db)
	seedActivities(t, live, 5)
	require.NoError(t, live.Put(ctx, newActivity(6, activity.TypeCreate, "m2", 6*time.Second)))

	_, err := NewRotator(db).Rotate(ctx, 3)
	require.NoError(t, err)

	count, err := history.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 6, count)

	all, err := history.AllByTime(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{
		"urn:uuid:00000001", "urn:uuid:00000002", "urn:uuid:00000003",
		"urn:uuid:00000004", "urn:uuid:00000005", "urn:uuid:00000006",
	}, ids(all))
	require.Equal(t, "activity 1", all[0].Summary)

	byObject, err := history.AllByObject(ctx, "m2")
	require.NoError(t, err)
	require.Equal(t, []string{"urn:uuid:00000006"}, ids(byObject))

	newest, err := history.Newest(ctx)
	require.NoError(t, err)
	require.Equal(t, "urn:uuid:00000006", newest.ID)

	split, err := history.Split(ctx)
	require.NoError(t, err)
	require.Equal(t, activity.StoreSplit{
		Live:           3,
		Archived:       3,
		OldestArchived: activity.FormatTime(baseTime.Add(time.Second)),
		NewestArchived: activity.FormatTime(baseTime.Add(3 * time.Second)),
	}, split)
}

func TestHistoryRepository_TieAcrossTablesUsesSeq(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	live := NewActivityRepository(db)

	require.NoError(t, live.Put(ctx, newActivity(2, activity.TypeCreate, "m1", 0)))
	_, err := NewRotator(db).Rotate(ctx, 0)
	require.NoError(t, err)
	require.NoError(t, live.Put(ctx, newActivity(1, activity.TypeUpdate, "m1", 0)))

	all, err := NewHistoryRepository(db).AllByTime(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"urn:uuid:00000002", "urn:uuid:00000001"}, ids(all))
}

func TestHistoryRepository_Empty(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	history := NewHistoryRepository(db)

	all, err := history.AllByTime(ctx)
	require.NoError(t, err)
	require.NotNil(t, all)
	require.Empty(t, all)

	newest, err := history.Newest(ctx)
	require.NoError(t, err)
	require.Nil(t, newest)

	split, err := history.Split(ctx)
	require.NoError(t, err)
	require.Equal(t, activity.StoreSplit{}, split)
}

// Rotation holds the only connection for its whole transaction, and each
// history read is one statement, so a read issued while rotations run
// concurrently never sees a row twice or misses one.
func TestHistoryRepository_ConsistentDuringRotation(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	live := NewActivityRepository(db)
	history := NewHistoryRepository(db)
	seedActivities(t, live, 20)
	rotator := NewRotator(db)

	done := make(chan error, 1)
	go func() {
		for keep := 19; keep >= 0; keep-- {
			if _, err := rotator.Rotate(ctx, keep); err != nil {
				done <- err
				return
			}
		}
		done <- nil
	}()

	for i := 0; i < 20; i++ {
		all, err := history.AllByTime(ctx)
		require.NoError(t, err)
		require.Len(t, all, 20)
		seen := make(map[string]bool, len(all))
		for _, a := range all {
			require.False(t, seen[a.ID], a.ID)
			seen[a.ID] = true
		}

		count, err := history.Count(ctx)
		require.NoError(t, err)
		require.Equal(t, 20, count)
	}
	require.NoError(t, <-done)
}
