package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsForTesting(t *testing.T) {
	m := NewMetricsForTesting()
	m.Refreshes.WithLabelValues("success").Inc()
	m.SnapshotCache.WithLabelValues("hit").Add(2)
	m.FireAreasProduced.Set(4)

	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(m.Refreshes))
	require.NoError(t, reg.Register(m.SnapshotCache))
	require.NoError(t, reg.Register(m.FireAreasProduced))

	families, err := reg.Gather()
	require.NoError(t, err)
	values := make(map[string]float64)
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			switch {
			case metric.GetCounter() != nil:
				values[mf.GetName()] += metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				values[mf.GetName()] += metric.GetGauge().GetValue()
			}
		}
	}
	assert.Equal(t, 1.0, values["firemap_refreshes_total"])
	assert.Equal(t, 2.0, values["firemap_snapshot_cache_total"])
	assert.Equal(t, 4.0, values["firemap_fire_areas_produced"])
}

func TestMetricsRegisterWithoutConflict(t *testing.T) {
	reg := prometheus.NewRegistry()
	for _, c := range NewMetricsForTesting().collectors() {
		require.NoError(t, reg.Register(c))
	}
}
