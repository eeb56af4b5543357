package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRequestAggregates(t *testing.T) {
	m := New()
	m.ObserveRequest("GET", "/schedules/", 200, 10*time.Millisecond)
	m.ObserveRequest("POST", "/enrollments/", 201, 30*time.Millisecond)

	snap := m.Snapshot()
	require.Equal(t, uint64(2), snap.RequestsTotal)
	assert.InDelta(t, 20.0, snap.AverageRequestDurationMs, 0.01)
}

func TestCacheHitRatio(t *testing.T) {
	m := New()
	m.RecordCacheLookup(true)
	m.RecordCacheLookup(true)
	m.RecordCacheLookup(false)

	snap := m.Snapshot()
	assert.Equal(t, uint64(2), snap.CacheHits)
	assert.Equal(t, uint64(1), snap.CacheMisses)
	assert.InDelta(t, 2.0/3.0, snap.CacheHitRatio, 0.0001)
}

func TestNilMetricsAreInert(t *testing.T) {
	var m *Metrics
	m.ObserveRequest("GET", "/", 200, time.Millisecond)
	m.RecordCacheLookup(true)
	assert.Equal(t, Snapshot{}, m.Snapshot())
	assert.NotNil(t, m.Handler())
}
