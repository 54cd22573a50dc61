// Package rediscache stores the latest price snapshot in Redis so external
// dashboards can read the bot's view of the market without touching the
// venue.
package rediscache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/RectiFlex/Market-Maker-Bot/internal/domain"
	"github.com/RectiFlex/Market-Maker-Bot/internal/ports"
)

const (
	latestSnapshotKey = "market_maker:snapshot:latest"
	snapshotTTL       = 10 * time.Minute
)

// Cache implements ports.SnapshotCache on a Redis instance.
type Cache struct {
	client *redis.Client
	logger ports.Logger
}

// Config holds connection settings for the snapshot cache.
type Config struct {
	Addr     string
	Password string
	DB       int
	Logger   ports.Logger
}

// New connects to Redis and verifies the connection with a ping.
func New(ctx context.Context, cfg Config) (*Cache, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for snapshot cache")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}
	cfg.Logger.Info(ctx, "Redis snapshot cache connected", map[string]interface{}{"addr": cfg.Addr})
	return &Cache{client: client, logger: cfg.Logger}, nil
}

// SetLatest replaces the cached snapshot. Snapshots expire so a stale value
// never outlives a stopped bot by much.
func (c *Cache) SetLatest(ctx context.Context, snap *domain.PriceSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := c.client.Set(ctx, latestSnapshotKey, data, snapshotTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache snapshot: %w", err)
	}
	return nil
}

// GetLatest returns the cached snapshot, or nil when none is cached.
func (c *Cache) GetLatest(ctx context.Context) (*domain.PriceSnapshot, error) {
	data, err := c.client.Get(ctx, latestSnapshotKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached snapshot: %w", err)
	}
	var snap domain.PriceSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached snapshot: %w", err)
	}
	return &snap, nil
}

// Close releases the Redis connection.
func (c *Cache) Close() error {
	return c.client.Close()
}
