package observability

import "time"

// MetricsRegistry provides an interface for recording application metrics,
// so handlers depend on an injected recorder instead of the global
// Prometheus vectors.
type MetricsRegistry interface {
	// HTTP request metrics
	IncrementRequests(endpoint, method, status string)
	RecordRequestLatency(endpoint, method string, duration time.Duration)

	// Snapshot ingestion metrics
	IncrementSnapshotIngests(client string)
	SetSnapshotCampaigns(client string, count int)

	// Aggregation metrics
	IncrementAggregationRuns(client string)
	SetFunnelStatusCount(client, status string, count int)
	AddAlerts(client string, count int)
	SetFunnelSpend(client, funnel string, spend float64)

	// History persistence metrics
	IncrementHistoryPersistErrors()
}

// PrometheusRegistry implements MetricsRegistry on the package's Prometheus
// metric vectors.
type PrometheusRegistry struct{}

// NewPrometheusRegistry creates a new PrometheusRegistry.
func NewPrometheusRegistry() *PrometheusRegistry {
	return &PrometheusRegistry{}
}

func (r *PrometheusRegistry) IncrementRequests(endpoint, method, status string) {
	RequestCount.WithLabelValues(endpoint, method, status).Inc()
}

func (r *PrometheusRegistry) RecordRequestLatency(endpoint, method string, duration time.Duration) {
	RequestLatency.WithLabelValues(endpoint, method).Observe(duration.Seconds())
}

func (r *PrometheusRegistry) IncrementSnapshotIngests(client string) {
	SnapshotIngestCount.WithLabelValues(client).Inc()
}

func (r *PrometheusRegistry) SetSnapshotCampaigns(client string, count int) {
	SnapshotCampaigns.WithLabelValues(client).Set(float64(count))
}

func (r *PrometheusRegistry) IncrementAggregationRuns(client string) {
	AggregationRuns.WithLabelValues(client).Inc()
}

func (r *PrometheusRegistry) SetFunnelStatusCount(client, status string, count int) {
	FunnelStatusGauge.WithLabelValues(client, status).Set(float64(count))
}

func (r *PrometheusRegistry) AddAlerts(client string, count int) {
	AlertCount.WithLabelValues(client).Add(float64(count))
}

func (r *PrometheusRegistry) SetFunnelSpend(client, funnel string, spend float64) {
	FunnelSpendGauge.WithLabelValues(client, funnel).Set(spend)
}

func (r *PrometheusRegistry) IncrementHistoryPersistErrors() {
	HistoryPersistErrors.Inc()
}
