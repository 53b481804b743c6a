package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "firemap"

// Metrics holds the Prometheus collectors for the refresh service.
type Metrics struct {
	ServiceRunning prometheus.Gauge

	// Refresh cycle metrics.
	Refreshes           *prometheus.CounterVec // labels: outcome={success,fetch_error,pipeline_error}
	PublishErrors       prometheus.Counter
	FetchDuration       prometheus.Histogram
	PipelineRunDuration prometheus.Histogram

	// Result shape of the latest run.
	FirePointsProcessed prometheus.Counter
	FireAreasProduced   prometheus.Gauge
	NoisePoints         prometheus.Gauge

	// Reference data and cache.
	ReferenceCountries prometheus.Gauge
	ReferenceCities    prometheus.Gauge
	SnapshotCache      *prometheus.CounterVec // labels: result={hit,miss}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, so tests can
// build as many as they like.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ServiceRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "service_running",
			Help:      "1 while the refresh scheduler is active, 0 after shutdown.",
		}),
		Refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refreshes_total",
			Help:      "Refresh cycles by outcome.",
		}, []string{"outcome"}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Snapshots that could not be published downstream.",
		}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of the FIRMS fetch.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		PipelineRunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_run_duration_seconds",
			Help:      "Duration of attribution and clustering over one batch.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		FirePointsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fire_points_processed_total",
			Help:      "Fire points enriched across all successful runs.",
		}),
		FireAreasProduced: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "fire_areas_produced",
			Help:      "Fire areas in the latest snapshot.",
		}),
		NoisePoints: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "noise_points",
			Help:      "Unclustered fire points in the latest snapshot.",
		}),
		ReferenceCountries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "reference_countries",
			Help:      "Rows in the loaded country table.",
		}),
		ReferenceCities: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "reference_cities",
			Help:      "Rows in the loaded city table.",
		}),
		SnapshotCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_cache_total",
			Help:      "Snapshot lookups by result.",
		}, []string{"result"}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.ServiceRunning,
		m.Refreshes,
		m.PublishErrors,
		m.FetchDuration,
		m.PipelineRunDuration,
		m.FirePointsProcessed,
		m.FireAreasProduced,
		m.NoisePoints,
		m.ReferenceCountries,
		m.ReferenceCities,
		m.SnapshotCache,
	}
}
