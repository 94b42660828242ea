package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for alert distribution
// and the environmental data source.
type Metrics struct {
	AlertsGenerated   *prometheus.CounterVec // labels: category, severity
	NotificationsSent *prometheus.CounterVec // labels: gateway, outcome={success,error}
	BroadcastSkipped  prometheus.Counter

	DataFetchDuration *prometheus.HistogramVec // labels: dataset={ndvi,rainfall,cyclones,trends}
	DataFetchErrors   *prometheus.CounterVec   // labels: dataset
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.AlertsGenerated,
		m.NotificationsSent,
		m.BroadcastSkipped,
		m.DataFetchDuration,
		m.DataFetchErrors,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		AlertsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agriconnect",
			Name:      "alerts_generated_total",
			Help:      "Alerts produced from conditions snapshots by category and severity.",
		}, []string{"category", "severity"}),
		NotificationsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agriconnect",
			Name:      "notifications_sent_total",
			Help:      "Notification gateway sends by gateway name and outcome.",
		}, []string{"gateway", "outcome"}),
		BroadcastSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "agriconnect",
			Name:      "broadcast_skipped_total",
			Help:      "Recipient/alert pairs filtered out during broadcast.",
		}),
		DataFetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "agriconnect",
			Name:      "data_fetch_duration_seconds",
			Help:      "Environmental data source fetch duration by dataset.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"dataset"}),
		DataFetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agriconnect",
			Name:      "data_fetch_errors_total",
			Help:      "Environmental data source fetch failures by dataset.",
		}, []string{"dataset"}),
	}
}
