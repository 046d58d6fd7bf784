package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mohamedkhairy/stocklens/internal/config"
	"github.com/mohamedkhairy/stocklens/internal/models"
	"github.com/mohamedkhairy/stocklens/pkg/logger"
)

// RedisBarCache stores fetched bar series in Redis. Only raw bars are
// cached; computed indicators are recomputed on every invocation.
type RedisBarCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisBarCache connects to Redis and verifies the connection
func NewRedisBarCache(cfg config.RedisConfig) (*RedisBarCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Connected to Redis",
		logger.String("host", cfg.Host),
		logger.Int("port", cfg.Port),
	)

	ttl := cfg.BarTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &RedisBarCache{client: rdb, ttl: ttl}, nil
}

// Close closes the Redis connection
func (c *RedisBarCache) Close() error {
	return c.client.Close()
}

func barKey(symbol string, start, end time.Time) string {
	return fmt.Sprintf("bars:%s:%d:%d", symbol, start.Unix(), end.Unix())
}

// Get returns the cached bars for a window; ok is false on a miss
func (c *RedisBarCache) Get(ctx context.Context, symbol string, start, end time.Time) ([]models.Bar, bool, error) {
	data, err := c.client.Get(ctx, barKey(symbol, start, end)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get: %w", err)
	}

	var bars []models.Bar
	if err := json.Unmarshal(data, &bars); err != nil {
		return nil, false, fmt.Errorf("cache decode: %w", err)
	}
	return bars, true, nil
}

// Set stores the bars for a window with the configured TTL
func (c *RedisBarCache) Set(ctx context.Context, symbol string, start, end time.Time, bars []models.Bar) error {
	data, err := json.Marshal(bars)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.Set(ctx, barKey(symbol, start, end), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// CachedProvider is a read-through decorator over a HistoryProvider.
// Cache failures degrade to a direct fetch; they are logged, never
// surfaced to the caller.
type CachedProvider struct {
	inner HistoryProvider
	cache *RedisBarCache
}

// NewCachedProvider wraps a provider with the bar cache
func NewCachedProvider(inner HistoryProvider, cache *RedisBarCache) *CachedProvider {
	return &CachedProvider{inner: inner, cache: cache}
}

// Name returns the inner provider type
func (p *CachedProvider) Name() string { return p.inner.Name() }

// FetchBars serves from cache when possible, fetching and populating
// on a miss
func (p *CachedProvider) FetchBars(ctx context.Context, symbol string, start, end time.Time) (*models.Series, error) {
	bars, hit, err := p.cache.Get(ctx, symbol, start, end)
	if err != nil {
		logger.Warn("Bar cache read failed",
			logger.String("symbol", symbol),
			logger.ErrorField(err),
		)
	}
	if hit {
		return models.NewSeries(symbol, bars)
	}

	series, err := p.inner.FetchBars(ctx, symbol, start, end)
	if err != nil {
		return nil, err
	}

	if err := p.cache.Set(ctx, symbol, start, end, series.Bars); err != nil {
		logger.Warn("Bar cache write failed",
			logger.String("symbol", symbol),
			logger.ErrorField(err),
		)
	}
	return series, nil
}
