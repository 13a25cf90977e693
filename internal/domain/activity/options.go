package activity

import (
	"time"

	"github.com/rpggio/folio/internal/metrics"
)

// DefaultRecentLimit bounds GetRecentActivities when no limit is given.
const DefaultRecentLimit = 50

// Option configures a Service.
type Option func(s *Service)

// WithActor sets the actor stamped on new activities.
func WithActor(actor *Actor) Option {
	return func(s *Service) {
		s.actor = cloneActor(actor)
	}
}

// WithRetention sets the trigger fired after every successful write.
func WithRetention(trigger RetentionTrigger) Option {
	return func(s *Service) {
		s.trigger = trigger
	}
}

// WithThresholds reports retention thresholds in archive stats.
func WithThresholds(maxEntries, retentionCount int) Option {
	return func(s *Service) {
		s.maxEntries = maxEntries
		s.retentionCount = retentionCount
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithIDGenerator overrides activity id generation.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		s.newID = newID
	}
}
