package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// total requests per endpoint, method and status code
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "funnelboard_requests_total",
			Help: "Total API requests received",
		},
		[]string{"endpoint", "method", "status"},
	)

	// request latency in seconds per endpoint/method
	RequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "funnelboard_request_duration_seconds",
			Help:    "Histogram of request latencies",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method"},
	)

	// campaign snapshots ingested, labelled by client
	SnapshotIngestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "funnelboard_snapshots_ingested_total",
			Help: "Total campaign snapshots ingested",
		},
		[]string{"client"},
	)

	// campaigns seen in the most recent snapshot per client
	SnapshotCampaigns = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "funnelboard_snapshot_campaigns",
			Help: "Campaign count in the latest ingested snapshot",
		},
		[]string{"client"},
	)

	// aggregation runs per client
	AggregationRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "funnelboard_aggregation_runs_total",
			Help: "Total aggregation runs executed",
		},
		[]string{"client"},
	)

	// funnels by health status after the latest run, per client
	FunnelStatusGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "funnelboard_funnel_status",
			Help: "Funnels per health status from the latest aggregation",
		},
		[]string{"client", "status"},
	)

	// alerts emitted by the classifier, per client
	AlertCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "funnelboard_alerts_total",
			Help: "Total funnel alerts generated",
		},
		[]string{"client"},
	)

	// spend observed per client funnel in the latest run
	FunnelSpendGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "funnelboard_funnel_spend",
			Help: "Spend per funnel from the latest aggregation",
		},
		[]string{"client", "funnel"},
	)

	// failures writing aggregation history rows
	HistoryPersistErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "funnelboard_history_persist_errors_total",
			Help: "Total aggregation history persistence errors",
		},
	)
)

// RegisterMetrics registers all metric vectors with the default registry.
func RegisterMetrics() {
	prometheus.MustRegister(
		RequestCount,
		RequestLatency,
		SnapshotIngestCount,
		SnapshotCampaigns,
		AggregationRuns,
		FunnelStatusGauge,
		AlertCount,
		FunnelSpendGauge,
		HistoryPersistErrors,
	)
}
