// Package db holds the storage clients: Redis for campaign snapshots and
// cached reports, Postgres for aggregation history.
package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrSnapshotNotFound is returned when no campaign snapshot has been
// ingested for a client.
var ErrSnapshotNotFound = errors.New("campaign snapshot not found")

// RedisStore wraps a redis client and context for operations.
type RedisStore struct {
	Client *redis.Client
	Ctx    context.Context
}

// InitRedis initializes a Redis client and returns a RedisStore.
func InitRedis(addr string) (*RedisStore, error) {
	rs := &RedisStore{
		Client: redis.NewClient(&redis.Options{Addr: addr}),
		Ctx:    context.Background(),
	}

	if err := redisotel.InstrumentTracing(rs.Client); err != nil {
		return nil, fmt.Errorf("instrument redis tracing: %w", err)
	}

	if err := rs.Client.Ping(rs.Ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	zap.L().Info("Connected to Redis", zap.String("addr", addr))
	return rs, nil
}

// NewRedisStore wraps an existing client, used by tests with miniredis.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{Client: client, Ctx: context.Background()}
}

func snapshotKey(clientSlug string) string {
	return "snapshot:campaigns:" + clientSlug
}

func reportKey(clientSlug string) string {
	return "report:client:" + clientSlug
}

// SaveCampaignSnapshot stores the latest ingested campaign payload for a
// client. The snapshot replaces any previous one and expires after ttl.
func (r *RedisStore) SaveCampaignSnapshot(ctx context.Context, clientSlug string, payload []byte, ttl time.Duration) error {
	if err := r.Client.Set(ctx, snapshotKey(clientSlug), payload, ttl).Err(); err != nil {
		return fmt.Errorf("save campaign snapshot: %w", err)
	}
	return nil
}

// LoadCampaignSnapshot returns the latest ingested campaign payload for a
// client, or ErrSnapshotNotFound when none exists.
func (r *RedisStore) LoadCampaignSnapshot(ctx context.Context, clientSlug string) ([]byte, error) {
	payload, err := r.Client.Get(ctx, snapshotKey(clientSlug)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load campaign snapshot: %w", err)
	}
	return payload, nil
}

// SnapshotTTL returns the remaining lifetime of the client's snapshot.
func (r *RedisStore) SnapshotTTL(ctx context.Context, clientSlug string) (time.Duration, error) {
	ttl, err := r.Client.TTL(ctx, snapshotKey(clientSlug)).Result()
	if err != nil {
		return 0, fmt.Errorf("snapshot ttl: %w", err)
	}
	return ttl, nil
}

// CacheReport stores a rendered client report for fast dashboard reloads.
func (r *RedisStore) CacheReport(ctx context.Context, clientSlug string, payload []byte, ttl time.Duration) error {
	if err := r.Client.Set(ctx, reportKey(clientSlug), payload, ttl).Err(); err != nil {
		return fmt.Errorf("cache report: %w", err)
	}
	return nil
}

// CachedReport returns the cached report for a client, or nil when absent.
func (r *RedisStore) CachedReport(ctx context.Context, clientSlug string) ([]byte, error) {
	payload, err := r.Client.Get(ctx, reportKey(clientSlug)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cached report: %w", err)
	}
	return payload, nil
}

// InvalidateReport drops the cached report after a new snapshot arrives.
func (r *RedisStore) InvalidateReport(ctx context.Context, clientSlug string) error {
	if err := r.Client.Del(ctx, reportKey(clientSlug)).Err(); err != nil {
		return fmt.Errorf("invalidate report: %w", err)
	}
	return nil
}

// Close terminates the Redis connection.
func (r *RedisStore) Close() {
	if r != nil && r.Client != nil {
		if err := r.Client.Close(); err != nil {
			zap.L().Error("redis close", zap.Error(err))
		}
	}
}
