package observability

import "time"

// MockMetricsRegistry is a no-op MetricsRegistry for tests.
type MockMetricsRegistry struct{}

func (m *MockMetricsRegistry) IncrementRequests(endpoint, method, status string)                    {}
func (m *MockMetricsRegistry) RecordRequestLatency(endpoint, method string, duration time.Duration) {}
func (m *MockMetricsRegistry) IncrementSnapshotIngests(client string)                               {}
func (m *MockMetricsRegistry) SetSnapshotCampaigns(client string, count int)                        {}
func (m *MockMetricsRegistry) IncrementAggregationRuns(client string)                               {}
func (m *MockMetricsRegistry) SetFunnelStatusCount(client, status string, count int)                {}
func (m *MockMetricsRegistry) AddAlerts(client string, count int)                                   {}
func (m *MockMetricsRegistry) SetFunnelSpend(client, funnel string, spend float64)                  {}
func (m *MockMetricsRegistry) IncrementHistoryPersistErrors()                                       {}
