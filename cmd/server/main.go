package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/funnelops/funnelboard/internal/api"
	"github.com/funnelops/funnelboard/internal/config"
	"github.com/funnelops/funnelboard/internal/db"
	"github.com/funnelops/funnelboard/internal/logic"
	"github.com/funnelops/funnelboard/internal/observability"
	"github.com/funnelops/funnelboard/internal/registry"
)

func main() {
	cfg := config.Load()

	logger, err := observability.InitLoggerWithService(cfg.ServiceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}

	defer func() {
		if err := logger.Sync(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to sync logger: %v\n", err)
		}
	}()

	if err := run(logger, cfg); err != nil {
		logger.Error("server error", zap.Error(err))
		os.Exit(1)
	}
}

func run(logger *zap.Logger, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.TracingEnabled {
		shutdown, err := observability.InitTracing(ctx, logger, cfg.ServiceName, cfg.TracingEndpoint, cfg.TracingSampleRate)
		if err != nil {
			return fmt.Errorf("init tracing: %w", err)
		}
		defer shutdown()
	}

	store, err := db.InitRedis(cfg.RedisAddr)
	if err != nil {
		return fmt.Errorf("failed to connect redis: %w", err)
	}
	defer store.Close()

	// History persistence is optional; the dashboard works without Postgres,
	// it just loses trend charts.
	var pg *db.Postgres
	if cfg.HistoryEnabled && cfg.PostgresDSN != "" {
		pg, err = db.InitPostgres(cfg.PostgresDSN, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnMaxLifetime, cfg.DBConnMaxIdleTime)
		if err != nil {
			return fmt.Errorf("failed to connect postgres: %w", err)
		}
		defer pg.Close()
	} else {
		logger.Info("funnel history persistence disabled")
	}

	clients := registry.NewClientRegistry(cfg.ClientsDir, logger)
	funnels := registry.NewFunnelRegistry(cfg.ClientsDir, logger)
	products := registry.NewProductRegistry(cfg.ClientsDir, logger)
	aggregator := logic.NewAggregator(funnels, products, logger)

	observability.RegisterMetrics()
	metricsRegistry := observability.NewPrometheusRegistry()

	srvDeps := api.NewServer(logger, store, pg, clients, funnels, products, aggregator, metricsRegistry, cfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srvDeps.Router(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	logger.Info("funnelboard running",
		zap.String("addr", srv.Addr),
		zap.Int("clients", len(clients.All())))

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("listen: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	return nil
}
