package activity_test

import (
	"context"
	"testing"

	"github.com/rpggio/folio/internal/domain/activity"
	"github.com/rpggio/folio/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRecordRequest_Validate(t *testing.T) {
	cases := []struct {
		name  string
		req   activity.RecordRequest
		valid bool
	}{
		{"create", activity.RecordRequest{Type: activity.TypeCreate, ObjectID: "m1", ObjectType: "Manifest"}, true},
		{"unknown type", activity.RecordRequest{Type: "Like", ObjectID: "m1", ObjectType: "Manifest"}, false},
		{"missing object", activity.RecordRequest{Type: activity.TypeUpdate, ObjectType: "Manifest"}, false},
		{"move without target", activity.RecordRequest{Type: activity.TypeMove, ObjectID: "c1", ObjectType: "Canvas", OriginID: "m1"}, false},
		{"add without target", activity.RecordRequest{Type: activity.TypeAdd, ObjectID: "c1", ObjectType: "Canvas"}, false},
		{"remove without origin", activity.RecordRequest{Type: activity.TypeRemove, ObjectID: "c1", ObjectType: "Canvas"}, false},
		{"remove", activity.RecordRequest{Type: activity.TypeRemove, ObjectID: "c1", ObjectType: "Canvas", OriginID: "m1", OriginType: "Manifest"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate()
			if tc.valid {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, activity.ErrInvalidInput)
			}
		})
	}
}

func TestActivityService_RecordDispatches(t *testing.T) {
	ctx := context.Background()
	store := &mocks.ActivityStore{}
	store.On("Put", ctx, mock.Anything).Return(nil)
	svc := newTestService(store, nil)

	a, err := svc.Record(ctx, activity.RecordRequest{
		Type:       activity.TypeAdd,
		ObjectID:   "c1",
		ObjectType: "Canvas",
		TargetID:   "m2",
		TargetType: "Manifest",
	})
	require.NoError(t, err)
	require.Equal(t, activity.TypeAdd, a.Type)
	require.Equal(t, &activity.Ref{ID: "m2", Type: "Manifest"}, a.Target)

	_, err = svc.Record(ctx, activity.RecordRequest{Type: activity.TypeMove, ObjectID: "c1", ObjectType: "Canvas"})
	require.ErrorIs(t, err, activity.ErrInvalidInput)
	store.AssertNumberOfCalls(t, "Put", 1)
}
