package mocks

import (
	"context"

	"github.com/rpggio/folio/internal/domain/activity"
	"github.com/stretchr/testify/mock"
)

// ActivityStore is a mock for activity.Store.
type ActivityStore struct {
	mock.Mock
}

func (m *ActivityStore) Put(ctx context.Context, a *activity.Activity) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *ActivityStore) ImportIfUnknown(ctx context.Context, a *activity.Activity) (bool, error) {
	args := m.Called(ctx, a)
	return args.Bool(0), args.Error(1)
}

func (m *ActivityStore) Get(ctx context.Context, id string) (*activity.Activity, error) {
	args := m.Called(ctx, id)
	if a, ok := args.Get(0).(*activity.Activity); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ActivityStore) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *ActivityStore) AllByTime(ctx context.Context) ([]activity.Activity, error) {
	args := m.Called(ctx)
	return activities(args.Get(0)), args.Error(1)
}

func (m *ActivityStore) AllByObject(ctx context.Context, objectID string) ([]activity.Activity, error) {
	args := m.Called(ctx, objectID)
	return activities(args.Get(0)), args.Error(1)
}

func (m *ActivityStore) AllByType(ctx context.Context, t activity.Type) ([]activity.Activity, error) {
	args := m.Called(ctx, t)
	return activities(args.Get(0)), args.Error(1)
}

func (m *ActivityStore) Since(ctx context.Context, endTime string) ([]activity.Activity, error) {
	args := m.Called(ctx, endTime)
	return activities(args.Get(0)), args.Error(1)
}

func (m *ActivityStore) Recent(ctx context.Context, limit int) ([]activity.Activity, error) {
	args := m.Called(ctx, limit)
	return activities(args.Get(0)), args.Error(1)
}

func (m *ActivityStore) Newest(ctx context.Context) (*activity.Activity, error) {
	args := m.Called(ctx)
	if a, ok := args.Get(0).(*activity.Activity); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ActivityStore) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// ArchiveStore is a mock for activity.ArchiveStore.
type ArchiveStore struct {
	mock.Mock
}

func (m *ArchiveStore) Get(ctx context.Context, id string) (*activity.Activity, error) {
	args := m.Called(ctx, id)
	if a, ok := args.Get(0).(*activity.Activity); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ArchiveStore) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *ArchiveStore) AllByTime(ctx context.Context) ([]activity.Activity, error) {
	args := m.Called(ctx)
	return activities(args.Get(0)), args.Error(1)
}

func (m *ArchiveStore) AllByObject(ctx context.Context, objectID string) ([]activity.Activity, error) {
	args := m.Called(ctx, objectID)
	return activities(args.Get(0)), args.Error(1)
}

func (m *ArchiveStore) Newest(ctx context.Context) (*activity.Activity, error) {
	args := m.Called(ctx)
	if a, ok := args.Get(0).(*activity.Activity); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ArchiveStore) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// History is a mock for activity.History and discovery.Source.
type History struct {
	mock.Mock
}

func (m *History) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *History) AllByTime(ctx context.Context) ([]activity.Activity, error) {
	args := m.Called(ctx)
	return activities(args.Get(0)), args.Error(1)
}

func (m *History) AllByObject(ctx context.Context, objectID string) ([]activity.Activity, error) {
	args := m.Called(ctx, objectID)
	return activities(args.Get(0)), args.Error(1)
}

func (m *History) Newest(ctx context.Context) (*activity.Activity, error) {
	args := m.Called(ctx)
	if a, ok := args.Get(0).(*activity.Activity); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *History) Split(ctx context.Context) (activity.StoreSplit, error) {
	args := m.Called(ctx)
	split, _ := args.Get(0).(activity.StoreSplit)
	return split, args.Error(1)
}

// MetadataStore is a mock for activity.MetadataStore.
type MetadataStore struct {
	mock.Mock
}

func (m *MetadataStore) GetMeta(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MetadataStore) PutMeta(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

// RetentionTrigger is a mock for activity.RetentionTrigger.
type RetentionTrigger struct {
	mock.Mock
}

func (m *RetentionTrigger) Trigger() {
	m.Called()
}

// Rotator is a mock for retention.Rotator.
type Rotator struct {
	mock.Mock
}

func (m *Rotator) Rotate(ctx context.Context, keep int) (int, error) {
	args := m.Called(ctx, keep)
	return args.Int(0), args.Error(1)
}

func activities(v any) []activity.Activity {
	if list, ok := v.([]activity.Activity); ok {
		return list
	}
	return nil
}
