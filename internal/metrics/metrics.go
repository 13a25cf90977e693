package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the activity log.
type Metrics struct {
	ActivitiesRecorded *prometheus.CounterVec
	StoreSize          *prometheus.GaugeVec

	RetentionRotations prometheus.Counter
	RetentionFailures  prometheus.Counter
	RetentionCoalesced prometheus.Counter
	ActivitiesArchived prometheus.Counter
	RetentionDuration  prometheus.Histogram

	ActivitiesImported prometheus.Counter
	ActivitiesSkipped  prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ActivitiesRecorded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "folio_activities_recorded_total",
			Help: "Total number of activities recorded by type",
		}, []string{"type"}),
		StoreSize: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "folio_activity_store_size",
			Help: "Number of activities held per store as of the last retention check",
		}, []string{"store"}), // store: "live", "archive"

		RetentionRotations: factory.NewCounter(prometheus.CounterOpts{
			Name: "folio_retention_rotations_total",
			Help: "Total number of rotations that moved activities into the archive",
		}),
		RetentionFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "folio_retention_failures_total",
			Help: "Total number of retention checks that failed",
		}),
		RetentionCoalesced: factory.NewCounter(prometheus.CounterOpts{
			Name: "folio_retention_triggers_coalesced_total",
			Help: "Retention triggers folded into an already pending check",
		}),
		ActivitiesArchived: factory.NewCounter(prometheus.CounterOpts{
			Name: "folio_activities_archived_total",
			Help: "Total number of activities moved into the archive",
		}),
		RetentionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "folio_retention_check_duration_seconds",
			Help:    "Duration of retention checks including rotation",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),

		ActivitiesImported: factory.NewCounter(prometheus.CounterOpts{
			Name: "folio_sync_imported_total",
			Help: "Total number of activities imported from other devices",
		}),
		ActivitiesSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "folio_sync_skipped_total",
			Help: "Total number of imported activities skipped as already known",
		}),
	}
}

// IncrementRecorded records one activity of the given type.
func (m *Metrics) IncrementRecorded(activityType string) {
	if m != nil {
		m.ActivitiesRecorded.WithLabelValues(activityType).Inc()
	}
}

// SetStoreSize records the current size of a store.
func (m *Metrics) SetStoreSize(store string, size int) {
	if m != nil {
		m.StoreSize.WithLabelValues(store).Set(float64(size))
	}
}

// ObserveRotation records a rotation that moved n activities.
func (m *Metrics) ObserveRotation(n int) {
	if m != nil && n > 0 {
		m.RetentionRotations.Inc()
		m.ActivitiesArchived.Add(float64(n))
	}
}

// IncrementRetentionFailures records a failed retention check.
func (m *Metrics) IncrementRetentionFailures() {
	if m != nil {
		m.RetentionFailures.Inc()
	}
}

// IncrementCoalesced records a trigger that found a check already pending.
func (m *Metrics) IncrementCoalesced() {
	if m != nil {
		m.RetentionCoalesced.Inc()
	}
}

// ObserveRetentionDuration records how long a retention check took.
func (m *Metrics) ObserveRetentionDuration(d time.Duration) {
	if m != nil {
		m.RetentionDuration.Observe(d.Seconds())
	}
}

// ObserveImport records the outcome of a sync import.
func (m *Metrics) ObserveImport(imported, skipped int) {
	if m != nil {
		m.ActivitiesImported.Add(float64(imported))
		m.ActivitiesSkipped.Add(float64(skipped))
	}
}
