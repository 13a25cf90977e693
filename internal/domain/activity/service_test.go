package activity_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rpggio/folio/internal/domain/activity"
	"github.com/rpggio/folio/internal/repository"
	"github.com/rpggio/folio/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 1, 12, 30, 45, 123_000_000, time.UTC)

func newTestService(store *mocks.ActivityStore, archive *mocks.ArchiveStore, opts ...activity.Option) *activity.Service {
	base := []activity.Option{
		activity.WithClock(func() time.Time { return fixedNow }),
		activity.WithIDGenerator(func() string { return "urn:uuid:00000000-0000-4000-8000-000000000001" }),
	}
	return activity.NewService(store, archive, nil, nil, append(base, opts...)...)
}

func TestActivityService_RecordCreate(t *testing.T) {
	ctx := context.Background()
	store := &mocks.ActivityStore{}
	trigger := &mocks.RetentionTrigger{}
	actor := &activity.Actor{ID: "device-1-abcdefghi", Type: activity.ActorApplication}

	store.On("Put", ctx, mock.AnythingOfType("*activity.Activity")).Return(nil)
	trigger.On("Trigger").Return()

	svc := newTestService(store, nil, activity.WithActor(actor), activity.WithRetention(trigger))
	a, err := svc.RecordCreate(ctx, "https://example.org/manifest/1", "Manifest", "")
	require.NoError(t, err)

	require.Equal(t, activity.ContextURI, a.Context)
	require.Equal(t, "urn:uuid:00000000-0000-4000-8000-000000000001", a.ID)
	require.Equal(t, activity.TypeCreate, a.Type)
	require.Equal(t, "2024-03-01T12:30:45.123Z", a.EndTime)
	require.Equal(t, "2024-03-01T12:30:45.123Z", a.Object.Modified)
	require.Empty(t, a.Object.Deleted)
	require.Equal(t, "Create Manifest", a.Summary)
	require.Equal(t, actor, a.Actor)
	require.Nil(t, a.Origin)
	require.Nil(t, a.Target)

	store.AssertExpectations(t)
	trigger.AssertNumberOfCalls(t, "Trigger", 1)
}

func TestActivityService_RecordDeleteSetsDeleted(t *testing.T) {
	ctx := context.Background()
	store := &mocks.ActivityStore{}
	store.On("Put", ctx, mock.Anything).Return(nil)

	svc := newTestService(store, nil)
	a, err := svc.RecordDelete(ctx, "canvas-1", "Canvas", "removed page")
	require.NoError(t, err)
	require.Equal(t, "2024-03-01T12:30:45.123Z", a.Object.Deleted)
	require.Empty(t, a.Object.Modified)
	require.Equal(t, "removed page", a.Summary)
	require.Nil(t, a.Actor)
}

func TestActivityService_OriginTargetByType(t *testing.T) {
	ctx := context.Background()
	store := &mocks.ActivityStore{}
	store.On("Put", ctx, mock.Anything).Return(nil)
	svc := newTestService(store, nil)

	move, err := svc.RecordMove(ctx, "c1", "Canvas", "m1", "Manifest", "m2", "Manifest", "")
	require.NoError(t, err)
	require.Equal(t, &activity.Ref{ID: "m1", Type: "Manifest"}, move.Origin)
	require.Equal(t, &activity.Ref{ID: "m2", Type: "Manifest"}, move.Target)
	require.Equal(t, "Move Canvas", move.Summary)

	add, err := svc.RecordAdd(ctx, "c1", "Canvas", "m2", "Manifest", "")
	require.NoError(t, err)
	require.Nil(t, add.Origin)
	require.Equal(t, &activity.Ref{ID: "m2", Type: "Manifest"}, add.Target)

	remove, err := svc.RecordRemove(ctx, "c1", "Canvas", "m1", "Manifest", "")
	require.NoError(t, err)
	require.Equal(t, &activity.Ref{ID: "m1", Type: "Manifest"}, remove.Origin)
	require.Nil(t, remove.Target)

	update, err := svc.RecordUpdate(ctx, "c1", "Canvas", "")
	require.NoError(t, err)
	require.Nil(t, update.Origin)
	require.Nil(t, update.Target)
}

func TestActivityService_PutFailureSkipsTrigger(t *testing.T) {
	ctx := context.Background()
	store := &mocks.ActivityStore{}
	trigger := &mocks.RetentionTrigger{}
	store.On("Put", ctx, mock.Anything).Return(errors.New("disk full"))

	svc := newTestService(store, nil, activity.WithRetention(trigger))
	_, err := svc.RecordUpdate(ctx, "m1", "Manifest", "")
	require.Error(t, err)
	trigger.AssertNotCalled(t, "Trigger")
}

func TestActivityService_SetActorDoesNotRewriteHistory(t *testing.T) {
	ctx := context.Background()
	store := &mocks.ActivityStore{}
	store.On("Put", ctx, mock.Anything).Return(nil)

	svc := newTestService(store, nil, activity.WithActor(&activity.Actor{ID: "first", Type: activity.ActorApplication}))
	before, err := svc.RecordCreate(ctx, "m1", "Manifest", "")
	require.NoError(t, err)

	svc.SetActor(&activity.Actor{ID: "second", Type: activity.ActorPerson, Name: "Ada"})
	after, err := svc.RecordUpdate(ctx, "m1", "Manifest", "")
	require.NoError(t, err)

	require.Equal(t, "first", before.Actor.ID)
	require.Equal(t, "second", after.Actor.ID)
	require.Equal(t, "Ada", svc.Actor().Name)
}

func TestActivityService_SummaryIsNFC(t *testing.T) {
	ctx := context.Background()
	store := &mocks.ActivityStore{}
	store.On("Put", ctx, mock.Anything).Return(nil)
	svc := newTestService(store, nil)

	// "e" followed by a combining acute accent composes to U+00E9.
	a, err := svc.RecordUpdate(ctx, "m1", "Manifest", "Renamed to Café")
	require.NoError(t, err)
	require.Equal(t, "Renamed to Café", a.Summary)
}

func TestActivityService_GetActivityFallsBackToArchive(t *testing.T) {
	ctx := context.Background()
	store := &mocks.ActivityStore{}
	archive := &mocks.ArchiveStore{}
	archived := &activity.Activity{ID: "urn:uuid:old"}

	store.On("Get", ctx, "urn:uuid:old").Return(nil, repository.ErrNotFound)
	archive.On("Get", ctx, "urn:uuid:old").Return(archived, nil)
	store.On("Get", ctx, "urn:uuid:none").Return(nil, repository.ErrNotFound)
	archive.On("Get", ctx, "urn:uuid:none").Return(nil, repository.ErrNotFound)

	svc := newTestService(store, archive)
	got, err := svc.GetActivity(ctx, "urn:uuid:old")
	require.NoError(t, err)
	require.Equal(t, archived, got)

	_, err = svc.GetActivity(ctx, "urn:uuid:none")
	require.ErrorIs(t, err, activity.ErrActivityNotFound)
}

func TestActivityService_GetAllActivitiesForObjectReadsHistory(t *testing.T) {
	ctx := context.Background()
	history := &mocks.History{}
	history.On("AllByObject", mock.Anything, "m1").Return([]activity.Activity{
		{ID: "a", EndTime: "2024-01-01T00:00:00.000Z", Seq: 1},
		{ID: "b", EndTime: "2024-01-02T00:00:00.000Z", Seq: 2},
		{ID: "c", EndTime: "2024-01-03T00:00:00.000Z", Seq: 3},
	}, nil)

	svc := activity.NewService(&mocks.ActivityStore{}, &mocks.ArchiveStore{}, history, nil)
	all, err := svc.GetAllActivitiesForObject(ctx, "m1")
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, []string{all[0].ID, all[1].ID, all[2].ID})

	history.On("AllByObject", mock.Anything, "broken").Return(nil, errors.New("disk I/O error"))
	_, err = svc.GetAllActivitiesForObject(ctx, "broken")
	require.ErrorContains(t, err, "loading object history")
}

func TestActivityService_GetStats(t *testing.T) {
	ctx := context.Background()
	store := &mocks.ActivityStore{}
	store.On("AllByTime", ctx).Return([]activity.Activity{
		{ID: "1", Type: activity.TypeCreate, EndTime: "2024-01-01T00:00:00.000Z"},
		{ID: "2", Type: activity.TypeUpdate, EndTime: "2024-01-02T00:00:00.000Z"},
		{ID: "3", Type: activity.TypeUpdate, EndTime: "2024-01-03T00:00:00.000Z"},
	}, nil)

	svc := newTestService(store, nil)
	stats, err := svc.GetStats(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, stats.Total)
	require.Equal(t, 1, stats.ByType["Create"])
	require.Equal(t, 2, stats.ByType["Update"])
	require.Equal(t, 0, stats.ByType["Move"])
	require.Equal(t, "2024-01-01T00:00:00.000Z", stats.Oldest)
	require.Equal(t, "2024-01-03T00:00:00.000Z", stats.Newest)
}

func TestActivityService_GetArchiveStats(t *testing.T) {
	ctx := context.Background()
	history := &mocks.History{}
	history.On("Split", mock.Anything).Return(activity.StoreSplit{
		Live:           5,
		Archived:       2,
		OldestArchived: "2023-01-01T00:00:00.000Z",
		NewestArchived: "2023-02-01T00:00:00.000Z",
	}, nil)

	svc := activity.NewService(&mocks.ActivityStore{}, &mocks.ArchiveStore{}, history, nil, activity.WithThresholds(10, 5))
	stats, err := svc.GetArchiveStats(ctx)
	require.NoError(t, err)
	require.Equal(t, 5, stats.MainCount)
	require.Equal(t, 2, stats.ArchiveCount)
	require.Equal(t, 7, stats.TotalCount)
	require.Equal(t, 10, stats.MaxEntries)
	require.Equal(t, 5, stats.RetentionCount)
	require.Equal(t, "2023-01-01T00:00:00.000Z", stats.OldestArchived)
	require.Equal(t, "2023-02-01T00:00:00.000Z", stats.NewestArchived)
	history.AssertNumberOfCalls(t, "Split", 1)
}

func TestActivityService_GetRecentDefaultsLimit(t *testing.T) {
	ctx := context.Background()
	store := &mocks.ActivityStore{}
	store.On("Recent", ctx, activity.DefaultRecentLimit).Return([]activity.Activity{}, nil)

	svc := newTestService(store, nil)
	_, err := svc.GetRecentActivities(ctx, 0)
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestActivityService_GetActivitiesByTypeRejectsUnknown(t *testing.T) {
	svc := newTestService(&mocks.ActivityStore{}, nil)
	_, err := svc.GetActivitiesByType(context.Background(), activity.Type("Like"))
	require.ErrorIs(t, err, activity.ErrInvalidInput)
}
