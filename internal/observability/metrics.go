package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "dsr_impact"

// Metrics holds the Prometheus counters, histograms, and gauges for the impact pipeline.
type Metrics struct {
	MessagesConsumed  prometheus.Counter
	MessagesProduced  prometheus.Counter
	TransformErrors   prometheus.Counter
	ReportsAggregated prometheus.Counter
	PipelineRunning   prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Dashboard collaborator metrics.
	DashboardRequests    *prometheus.CounterVec   // labels: resource={gis,totals}, outcome={success,error}
	DashboardCache       *prometheus.CounterVec   // labels: resource={gis,totals}, result={hit,miss}
	DashboardAPIDuration *prometheus.HistogramVec // labels: resource={gis,totals}
	CompensationEnabled  prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.MessagesConsumed,
		m.MessagesProduced,
		m.TransformErrors,
		m.ReportsAggregated,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.DashboardRequests,
		m.DashboardCache,
		m.DashboardAPIDuration,
		m.CompensationEnabled,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		MessagesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_consumed_total",
			Help:      "Total situation reports read from the source topic.",
		}),
		MessagesProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_produced_total",
			Help:      "Total impact reports written to the sink topic.",
		}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transform_errors_total",
			Help:      "Total situation reports that could not be turned into impact reports.",
		}),
		ReportsAggregated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_aggregated_total",
			Help:      "Total impact reports built, with or without a compensation estimate.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of messages per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-transform-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		DashboardRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dashboard_requests_total",
			Help:      "Dashboard API requests by resource and outcome.",
		}, []string{"resource", "outcome"}),
		DashboardCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dashboard_cache_total",
			Help:      "Dashboard cache lookups by resource and result.",
		}, []string{"resource", "result"}),
		DashboardAPIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dashboard_api_duration_seconds",
			Help:      "Dashboard API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"resource"}),
		CompensationEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "compensation_enabled",
			Help:      "1 when compensation estimates are attached to impact reports, 0 otherwise.",
		}),
	}
}
