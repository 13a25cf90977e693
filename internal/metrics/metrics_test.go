package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncrementRecorded("Create")
	m.IncrementRecorded("Create")
	m.IncrementRecorded("Move")
	m.ObserveRotation(6)
	m.ObserveRotation(0)
	m.ObserveImport(3, 2)
	m.SetStoreSize("live", 5)
	m.ObserveRetentionDuration(10 * time.Millisecond)

	require.Equal(t, 2.0, testutil.ToFloat64(m.ActivitiesRecorded.WithLabelValues("Create")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.ActivitiesRecorded.WithLabelValues("Move")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.RetentionRotations))
	require.Equal(t, 6.0, testutil.ToFloat64(m.ActivitiesArchived))
	require.Equal(t, 3.0, testutil.ToFloat64(m.ActivitiesImported))
	require.Equal(t, 2.0, testutil.ToFloat64(m.ActivitiesSkipped))
	require.Equal(t, 5.0, testutil.ToFloat64(m.StoreSize.WithLabelValues("live")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	require.NotPanics(t, func() {
		m.IncrementRecorded("Create")
		m.ObserveRotation(1)
		m.IncrementRetentionFailures()
		m.IncrementCoalesced()
		m.ObserveImport(1, 1)
		m.SetStoreSize("archive", 1)
		m.ObserveRetentionDuration(time.Second)
	})
}
