package activity

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/rpggio/folio/internal/metrics"
)

// Service records activities and answers queries over the activity log.
// It is the only sanctioned way to create activities.
type Service struct {
	store   Store
	archive ArchiveStore
	history History
	trigger RetentionTrigger
	logger  *slog.Logger
	metrics *metrics.Metrics

	now   func() time.Time
	newID func() string

	maxEntries     int
	retentionCount int

	mu    sync.RWMutex
	actor *Actor
}

// NewService creates a new activity service. history serves the reads that
// span both stores.
func NewService(store Store, archive ArchiveStore, history History, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		store:   store,
		archive: archive,
		history: history,
		logger:  logger.With(slog.String("component", "activity")),
		now:     time.Now,
		newID:   newActivityID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetActor replaces the actor stamped on subsequent activities. Activities
// already written keep the actor they were recorded with.
func (s *Service) SetActor(actor *Actor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actor = cloneActor(actor)
}

// Actor returns a copy of the current actor, or nil when none is set.
func (s *Service) Actor() *Actor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneActor(s.actor)
}

// RecordCreate records that an object was created.
func (s *Service) RecordCreate(ctx context.Context, objectID, objectType, summary string) (*Activity, error) {
	now := s.now()
	return s.record(ctx, now, TypeCreate, ObjectRef{
		ID:       objectID,
		Type:     objectType,
		Modified: FormatTime(now),
	}, nil, nil, summary)
}

// RecordUpdate records that an object was modified.
func (s *Service) RecordUpdate(ctx context.Context, objectID, objectType, summary string) (*Activity, error) {
	now := s.now()
	return s.record(ctx, now, TypeUpdate, ObjectRef{
		ID:       objectID,
		Type:     objectType,
		Modified: FormatTime(now),
	}, nil, nil, summary)
}

// RecordDelete records that an object was deleted.
func (s *Service) RecordDelete(ctx context.Context, objectID, objectType, summary string) (*Activity, error) {
	now := s.now()
	return s.record(ctx, now, TypeDelete, ObjectRef{
		ID:      objectID,
		Type:    objectType,
		Deleted: FormatTime(now),
	}, nil, nil, summary)
}

// RecordMove records that an object moved from origin to target.
func (s *Service) RecordMove(ctx context.Context, objectID, objectType, originID, originType, targetID, targetType, summary string) (*Activity, error) {
	now := s.now()
	return s.record(ctx, now, TypeMove, ObjectRef{
		ID:       objectID,
		Type:     objectType,
		Modified: FormatTime(now),
	}, &Ref{ID: originID, Type: originType}, &Ref{ID: targetID, Type: targetType}, summary)
}

// RecordAdd records that an object was added to target.
func (s *Service) RecordAdd(ctx context.Context, objectID, objectType, targetID, targetType, summary string) (*Activity, error) {
	now := s.now()
	return s.record(ctx, now, TypeAdd, ObjectRef{
		ID:       objectID,
		Type:     objectType,
		Modified: FormatTime(now),
	}, nil, &Ref{ID: targetID, Type: targetType}, summary)
}

// RecordRemove records that an object was removed from origin.
func (s *Service) RecordRemove(ctx context.Context, objectID, objectType, originID, originType, summary string) (*Activity, error) {
	now := s.now()
	return s.record(ctx, now, TypeRemove, ObjectRef{
		ID:       objectID,
		Type:     objectType,
		Modified: FormatTime(now),
	}, &Ref{ID: originID, Type: originType}, nil, summary)
}

func (s *Service) record(ctx context.Context, now time.Time, t Type, object ObjectRef, origin, target *Ref, summary string) (*Activity, error) {
	if summary == "" {
		summary = fmt.Sprintf("%s %s", t, object.Type)
	}

	a := &Activity{
		Context: ContextURI,
		ID:      s.newID(),
		Type:    t,
		EndTime: FormatTime(now),
		Object:  object,
		Actor:   s.Actor(),
		Summary: norm.NFC.String(summary),
		Origin:  origin,
		Target:  target,
	}

	if err := s.store.Put(ctx, a); err != nil {
		return nil, fmt.Errorf("recording %s activity: %w", t, err)
	}
	s.metrics.IncrementRecorded(string(t))

	if s.trigger != nil {
		s.trigger.Trigger()
	}
	return a, nil
}

func newActivityID() string {
	return "urn:uuid:" + uuid.NewString()
}
