package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/funnelops/funnelboard/internal/middleware"
	"github.com/funnelops/funnelboard/internal/models"
)

// ListClientsHandler handles GET /clients and returns every configured
// client, active or not.
func (s *Server) ListClientsHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "list_clients"
	const method = "GET"

	clients := s.Clients.All()
	s.Metrics.IncrementRequests(endpoint, method, "200")
	s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
	s.writeJSON(w, http.StatusOK, map[string]any{
		"clients": clients,
		"count":   len(clients),
	})
}

// ListFunnelsHandler handles GET /clients/{slug}/funnels and returns the
// client's configured funnels with any bound products.
func (s *Server) ListFunnelsHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "list_funnels"
	const method = "GET"
	logger := middleware.LoggerFromRequest(r, s.Logger)

	slug, ok := s.clientFromRequest(r)
	if !ok {
		s.Metrics.IncrementRequests(endpoint, method, "404")
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		http.Error(w, "unknown client", http.StatusNotFound)
		return
	}

	funnels, err := s.Funnels.List(slug)
	if err != nil {
		logger.Error("load funnels", zap.String("client", slug), zap.Error(err))
		s.Metrics.IncrementRequests(endpoint, method, "500")
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		http.Error(w, "funnel configuration error", http.StatusInternalServerError)
		return
	}
	if _, err := s.Products.LoadClientProducts(slug); err != nil {
		logger.Warn("load products", zap.String("client", slug), zap.Error(err))
	}

	type funnelEntry struct {
		Funnel  *models.Funnel        `json:"funnel"`
		Product *models.FunnelProduct `json:"product,omitempty"`
	}
	entries := make([]funnelEntry, 0, len(funnels))
	for _, f := range funnels {
		entries = append(entries, funnelEntry{
			Funnel:  f,
			Product: s.Products.MainProduct(f.Tag),
		})
	}

	s.Metrics.IncrementRequests(endpoint, method, "200")
	s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
	s.writeJSON(w, http.StatusOK, map[string]any{
		"client":  slug,
		"funnels": entries,
		"count":   len(entries),
	})
}

// FunnelHistoryHandler handles GET /clients/{slug}/funnels/{tag}/history.
// The optional ?days= parameter bounds the window (default 30, max 365).
func (s *Server) FunnelHistoryHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "funnel_history"
	const method = "GET"
	logger := middleware.LoggerFromRequest(r, s.Logger)

	slug, ok := s.clientFromRequest(r)
	if !ok {
		s.Metrics.IncrementRequests(endpoint, method, "404")
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		http.Error(w, "unknown client", http.StatusNotFound)
		return
	}
	tag := strings.ToUpper(mux.Vars(r)["tag"])

	if s.PG == nil {
		s.Metrics.IncrementRequests(endpoint, method, "503")
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		http.Error(w, "history storage not configured", http.StatusServiceUnavailable)
		return
	}

	days := 30
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 365 {
			s.Metrics.IncrementRequests(endpoint, method, "400")
			s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
			http.Error(w, "days must be an integer between 1 and 365", http.StatusBadRequest)
			return
		}
		days = parsed
	}

	rows, err := s.PG.LoadFunnelHistory(r.Context(), slug, tag, days)
	if err != nil {
		logger.Error("load funnel history",
			zap.String("client", slug),
			zap.String("funnel", tag),
			zap.Error(err))
		s.Metrics.IncrementRequests(endpoint, method, "500")
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.Metrics.IncrementRequests(endpoint, method, "200")
	s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
	s.writeJSON(w, http.StatusOK, map[string]any{
		"client":    slug,
		"funnel":    tag,
		"days":      days,
		"snapshots": rows,
	})
}

// OptimizationThresholdsHandler handles GET /clients/{slug}/funnels/{tag}/thresholds.
// It returns the CPP/ROAS grading bands derived from the funnel's main
// product, or the static fallbacks when no product is bound.
func (s *Server) OptimizationThresholdsHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "optimization_thresholds"
	const method = "GET"
	logger := middleware.LoggerFromRequest(r, s.Logger)

	slug, ok := s.clientFromRequest(r)
	if !ok {
		s.Metrics.IncrementRequests(endpoint, method, "404")
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		http.Error(w, "unknown client", http.StatusNotFound)
		return
	}
	tag := strings.ToUpper(mux.Vars(r)["tag"])

	if _, err := s.Products.LoadClientProducts(slug); err != nil {
		logger.Warn("load products", zap.String("client", slug), zap.Error(err))
	}
	bands := s.Products.OptimizationThresholds(tag)

	s.Metrics.IncrementRequests(endpoint, method, "200")
	s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
	s.writeJSON(w, http.StatusOK, map[string]any{
		"client":     slug,
		"funnel":     tag,
		"thresholds": bands,
	})
}
