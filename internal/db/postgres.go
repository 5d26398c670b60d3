package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/XSAM/otelsql"
	_ "github.com/lib/pq"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/funnelops/funnelboard/internal/models"
)

// Postgres wraps a postgres DB connection.
type Postgres struct {
	DB *sql.DB
}

// schemaSQL sets up the history table if it doesn't exist. One row is
// written per funnel per aggregation run.
const schemaSQL = `CREATE TABLE IF NOT EXISTS funnel_snapshots (
    id SERIAL PRIMARY KEY,
    client_slug TEXT NOT NULL,
    funnel_tag TEXT NOT NULL,
    run_at TIMESTAMPTZ NOT NULL,
    spend DOUBLE PRECISION NOT NULL,
    revenue DOUBLE PRECISION NOT NULL,
    roas DOUBLE PRECISION NOT NULL,
    cpp DOUBLE PRECISION NOT NULL,
    purchases DOUBLE PRECISION NOT NULL,
    leads DOUBLE PRECISION NOT NULL,
    total_campaigns INT NOT NULL,
    active_campaigns INT NOT NULL,
    status TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_funnel_snapshots_client_tag_run
    ON funnel_snapshots (client_slug, funnel_tag, run_at DESC);
`

// InitPostgres connects to Postgres with connection pooling configuration.
func InitPostgres(dsn string, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (*Postgres, error) {
	driverName, err := otelsql.Register("postgres",
		otelsql.WithAttributes(
			attribute.String("db.system", "postgresql"),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("register otelsql: %w", err)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres open: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)
	db.SetConnMaxIdleTime(connMaxIdleTime)

	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	p := &Postgres{DB: db}
	if err := p.ensureSchema(); err != nil {
		return nil, err
	}
	zap.L().Info("Connected to Postgres",
		zap.Int("max_open_conns", maxOpenConns),
		zap.Int("max_idle_conns", maxIdleConns))
	return p, nil
}

func (p *Postgres) ensureSchema() error {
	if _, err := p.DB.Exec(schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Close terminates the Postgres connection.
func (p *Postgres) Close() {
	if p != nil && p.DB != nil {
		if err := p.DB.Close(); err != nil {
			zap.L().Error("postgres close", zap.Error(err))
		}
	}
}

// FunnelSnapshot is one persisted history row.
type FunnelSnapshot struct {
	ClientSlug      string              `json:"client_slug"`
	FunnelTag       string              `json:"funnel_tag"`
	RunAt           time.Time           `json:"run_at"`
	Spend           float64             `json:"spend"`
	Revenue         float64             `json:"revenue"`
	ROAS            float64             `json:"roas"`
	CPP             float64             `json:"cpp"`
	Purchases       float64             `json:"purchases"`
	Leads           float64             `json:"leads"`
	TotalCampaigns  int                 `json:"total_campaigns"`
	ActiveCampaigns int                 `json:"active_campaigns"`
	Status          models.FunnelStatus `json:"status"`
}

// InsertFunnelSnapshots records one history row per funnel from an
// aggregation run, inside one transaction.
func (p *Postgres) InsertFunnelSnapshots(ctx context.Context, data *models.ClientData) error {
	tx, err := p.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO funnel_snapshots
        (client_slug, funnel_tag, run_at, spend, revenue, roas, cpp, purchases, leads, total_campaigns, active_campaigns, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	for tag, fd := range data.Funnels {
		m := fd.Metrics
		_, err := stmt.ExecContext(ctx,
			data.Client.Slug, tag, data.UpdatedAt,
			m.Spend, m.Revenue, m.ROAS, m.CPP, m.Purchases, m.Leads,
			m.TotalCampaigns, m.ActiveCampaigns, string(fd.Status))
		if err != nil {
			return fmt.Errorf("insert snapshot %s: %w", tag, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// LoadFunnelHistory returns the history rows for one funnel over the last
// given number of days, most recent first.
func (p *Postgres) LoadFunnelHistory(ctx context.Context, clientSlug, funnelTag string, days int) ([]FunnelSnapshot, error) {
	rows, err := p.DB.QueryContext(ctx, `SELECT
            client_slug, funnel_tag, run_at, spend, revenue, roas, cpp, purchases, leads, total_campaigns, active_campaigns, status
        FROM funnel_snapshots
        WHERE client_slug = $1 AND funnel_tag = $2 AND run_at >= NOW() - ($3 || ' days')::interval
        ORDER BY run_at DESC`, clientSlug, funnelTag, days)
	if err != nil {
		return nil, fmt.Errorf("query funnel history: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var snapshots []FunnelSnapshot
	for rows.Next() {
		var s FunnelSnapshot
		var status string
		err := rows.Scan(&s.ClientSlug, &s.FunnelTag, &s.RunAt,
			&s.Spend, &s.Revenue, &s.ROAS, &s.CPP, &s.Purchases, &s.Leads,
			&s.TotalCampaigns, &s.ActiveCampaigns, &status)
		if err != nil {
			return nil, fmt.Errorf("scan funnel history: %w", err)
		}
		s.Status = models.FunnelStatus(status)
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}
