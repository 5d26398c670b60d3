package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/funnelops/funnelboard/internal/db"
	"github.com/funnelops/funnelboard/internal/middleware"
	"github.com/funnelops/funnelboard/internal/models"
	"github.com/funnelops/funnelboard/internal/reporting"
)

// clientReport is the full report payload: the aggregation result plus the
// dashboard views derived from it.
type clientReport struct {
	Client            models.Client                   `json:"client"`
	Metrics           models.AggregatedMetrics        `json:"metrics"`
	Funnels           map[string]*models.FunnelData   `json:"funnels"`
	UntaggedCampaigns []models.ParsedCampaign         `json:"untagged_campaigns"`
	Comparison        []reporting.FunnelComparisonRow `json:"comparison"`
	Summary           reporting.AlertsSummary         `json:"summary"`
	UpdatedAt         time.Time                       `json:"updated_at"`
}

// ClientReportHandler handles GET /clients/{slug}/report.
//
// Reports are served from the Redis cache when fresh; otherwise the current
// campaign snapshot is re-aggregated, cached, and (when history is enabled)
// written to Postgres.
func (s *Server) ClientReportHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "client_report"
	const method = "GET"
	logger := middleware.LoggerFromRequest(r, s.Logger)

	slug, ok := s.clientFromRequest(r)
	if !ok {
		s.Metrics.IncrementRequests(endpoint, method, "404")
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		http.Error(w, "unknown client", http.StatusNotFound)
		return
	}
	client, _ := s.Clients.Get(slug)
	ctx := r.Context()

	if cached, err := s.Store.CachedReport(ctx, slug); err != nil {
		logger.Warn("cached report lookup", zap.String("client", slug), zap.Error(err))
	} else if cached != nil {
		s.Metrics.IncrementRequests(endpoint, method, "200")
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Cache", "hit")
		w.WriteHeader(http.StatusOK)
		if _, writeErr := w.Write(cached); writeErr != nil {
			logger.Warn("write cached report", zap.Error(writeErr))
		}
		return
	}

	snapshot, err := s.Store.LoadCampaignSnapshot(ctx, slug)
	if errors.Is(err, db.ErrSnapshotNotFound) {
		s.Metrics.IncrementRequests(endpoint, method, "404")
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		http.Error(w, "no campaign snapshot for client", http.StatusNotFound)
		return
	}
	if err != nil {
		logger.Error("load snapshot", zap.String("client", slug), zap.Error(err))
		s.Metrics.IncrementRequests(endpoint, method, "500")
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	var campaigns []models.RawCampaign
	if err := json.Unmarshal(snapshot, &campaigns); err != nil {
		logger.Error("decode snapshot", zap.String("client", slug), zap.Error(err))
		s.Metrics.IncrementRequests(endpoint, method, "500")
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if _, err := s.Products.LoadClientProducts(slug); err != nil {
		logger.Warn("load products", zap.String("client", slug), zap.Error(err))
	}

	data, err := s.Aggregator.AggregateClient(client, campaigns)
	if err != nil {
		logger.Error("aggregate client", zap.String("client", slug), zap.Error(err))
		s.Metrics.IncrementRequests(endpoint, method, "500")
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	s.Metrics.IncrementAggregationRuns(slug)

	report := clientReport{
		Client:            data.Client,
		Metrics:           data.Metrics,
		Funnels:           data.Funnels,
		UntaggedCampaigns: data.UntaggedCampaigns,
		Comparison:        reporting.FunnelComparison(data),
		Summary:           reporting.SummarizeAlerts(data),
		UpdatedAt:         data.UpdatedAt,
	}
	s.recordFunnelMetrics(slug, data, report.Summary)

	payload, err := json.Marshal(report)
	if err != nil {
		logger.Error("marshal report", zap.Error(err))
		s.Metrics.IncrementRequests(endpoint, method, "500")
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if err := s.Store.CacheReport(ctx, slug, payload, s.Config.ReportTTL); err != nil {
		logger.Warn("cache report", zap.String("client", slug), zap.Error(err))
	}

	if s.Config.HistoryEnabled && s.PG != nil {
		if err := s.PG.InsertFunnelSnapshots(ctx, data); err != nil {
			s.Metrics.IncrementHistoryPersistErrors()
			logger.Error("persist funnel history", zap.String("client", slug), zap.Error(err))
		}
	}

	logger.Info("report generated",
		zap.String("client", slug),
		zap.Int("funnels", len(data.Funnels)),
		zap.Int("campaigns", len(data.AllCampaigns)),
		zap.String("status", string(report.Summary.OverallStatus)))

	s.Metrics.IncrementRequests(endpoint, method, "200")
	s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", "miss")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(payload); err != nil {
		logger.Warn("write report", zap.Error(err))
	}
}

// recordFunnelMetrics exports per-funnel gauges from a finished run.
func (s *Server) recordFunnelMetrics(slug string, data *models.ClientData, summary reporting.AlertsSummary) {
	for status, count := range summary.StatusCounts {
		s.Metrics.SetFunnelStatusCount(slug, string(status), count)
	}
	s.Metrics.AddAlerts(slug, len(summary.Alerts))
	for tag, fd := range data.Funnels {
		s.Metrics.SetFunnelSpend(slug, tag, fd.Metrics.Spend)
	}
}
