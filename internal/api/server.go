// Package api exposes the HTTP surface consumed by the dashboard and the
// upstream fetchers: snapshot ingestion, client reports, funnel
// configuration and aggregation history.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/funnelops/funnelboard/internal/config"
	"github.com/funnelops/funnelboard/internal/db"
	"github.com/funnelops/funnelboard/internal/logic"
	"github.com/funnelops/funnelboard/internal/middleware"
	"github.com/funnelops/funnelboard/internal/observability"
	"github.com/funnelops/funnelboard/internal/registry"
)

// Server groups dependencies for HTTP handlers.
type Server struct {
	Logger     *zap.Logger
	Store      *db.RedisStore
	PG         *db.Postgres
	Clients    *registry.ClientRegistry
	Funnels    *registry.FunnelRegistry
	Products   *registry.ProductRegistry
	Aggregator *logic.Aggregator
	Metrics    observability.MetricsRegistry
	Config     config.Config
}

// NewServer constructs a Server.
func NewServer(logger *zap.Logger, store *db.RedisStore, pg *db.Postgres, clients *registry.ClientRegistry, funnels *registry.FunnelRegistry, products *registry.ProductRegistry, aggregator *logic.Aggregator, metrics observability.MetricsRegistry, cfg config.Config) *Server {
	return &Server{
		Logger:     logger,
		Store:      store,
		PG:         pg,
		Clients:    clients,
		Funnels:    funnels,
		Products:   products,
		Aggregator: aggregator,
		Metrics:    metrics,
		Config:     cfg,
	}
}

// Router builds the mux router with tracing and logging middleware applied.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, "funnelboard-api")
	})
	r.Use(middleware.WithTraceLogger(s.Logger))

	r.HandleFunc("/health", s.HealthHandler).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	r.HandleFunc("/clients", s.ListClientsHandler).Methods(http.MethodGet)
	r.HandleFunc("/clients/{slug}/campaigns", s.IngestCampaignsHandler).Methods(http.MethodPost)
	r.HandleFunc("/clients/{slug}/report", s.ClientReportHandler).Methods(http.MethodGet)
	r.HandleFunc("/clients/{slug}/funnels", s.ListFunnelsHandler).Methods(http.MethodGet)
	r.HandleFunc("/clients/{slug}/funnels/{tag}/history", s.FunnelHistoryHandler).Methods(http.MethodGet)
	r.HandleFunc("/clients/{slug}/funnels/{tag}/thresholds", s.OptimizationThresholdsHandler).Methods(http.MethodGet)

	return r
}

// writeJSON renders a JSON response and logs encode failures instead of
// surfacing them to the client mid-stream.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Warn("encode response", zap.Error(err))
	}
}

// clientFromRequest resolves the {slug} route variable to a client.
func (s *Server) clientFromRequest(r *http.Request) (string, bool) {
	slug := mux.Vars(r)["slug"]
	if slug == "" {
		return "", false
	}
	_, ok := s.Clients.Get(slug)
	return slug, ok
}
