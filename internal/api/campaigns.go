package api

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/funnelops/funnelboard/internal/ingest"
	"github.com/funnelops/funnelboard/internal/middleware"
)

// maxSnapshotBytes caps an ingested campaign payload. Even large ad accounts
// stay well under this.
const maxSnapshotBytes = 16 << 20

// IngestCampaignsHandler handles POST /clients/{slug}/campaigns.
//
// The body is a Meta campaigns+insights payload as fetched by the upstream
// adapter. It is normalized, validated and stored as the client's current
// snapshot; the cached report is invalidated so the next report request
// re-aggregates.
func (s *Server) IngestCampaignsHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "ingest_campaigns"
	const method = "POST"
	logger := middleware.LoggerFromRequest(r, s.Logger)

	slug, ok := s.clientFromRequest(r)
	if !ok {
		s.Metrics.IncrementRequests(endpoint, method, "404")
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		http.Error(w, "unknown client", http.StatusNotFound)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxSnapshotBytes))
	if err != nil {
		s.Metrics.IncrementRequests(endpoint, method, "400")
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	defer func() {
		if closeErr := r.Body.Close(); closeErr != nil {
			logger.Warn("failed to close request body", zap.Error(closeErr))
		}
	}()

	campaigns, err := ingest.DecodeMetaCampaigns(body)
	if err != nil {
		logger.Warn("reject campaign payload", zap.String("client", slug), zap.Error(err))
		s.Metrics.IncrementRequests(endpoint, method, "400")
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		http.Error(w, "invalid campaigns payload", http.StatusBadRequest)
		return
	}

	// Store the normalized form, not the wire payload, so the report path
	// never re-parses Meta's string encoding.
	normalized, err := json.Marshal(campaigns)
	if err != nil {
		logger.Error("marshal snapshot", zap.Error(err))
		s.Metrics.IncrementRequests(endpoint, method, "500")
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	ctx := r.Context()
	if err := s.Store.SaveCampaignSnapshot(ctx, slug, normalized, s.Config.SnapshotTTL); err != nil {
		logger.Error("save snapshot", zap.String("client", slug), zap.Error(err))
		s.Metrics.IncrementRequests(endpoint, method, "500")
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if err := s.Store.InvalidateReport(ctx, slug); err != nil {
		logger.Warn("invalidate cached report", zap.String("client", slug), zap.Error(err))
	}

	s.Metrics.IncrementSnapshotIngests(slug)
	s.Metrics.SetSnapshotCampaigns(slug, len(campaigns))
	logger.Info("snapshot ingested",
		zap.String("client", slug),
		zap.Int("campaigns", len(campaigns)))

	s.Metrics.IncrementRequests(endpoint, method, "202")
	s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
	s.writeJSON(w, http.StatusAccepted, map[string]any{
		"client":    slug,
		"campaigns": len(campaigns),
	})
}
