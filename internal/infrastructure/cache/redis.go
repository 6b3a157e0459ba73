package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rcastellanos/csv-insight-service/internal/core/domain"
	"github.com/rcastellanos/csv-insight-service/internal/pkg/config"
)

// RedisCache wraps the Redis client. Besides the generic key/value
// operations it offers typed helpers for the summary cache, keyed by the
// SHA-256 hash of the analyzed file.
type RedisCache struct {
	client     *redis.Client
	logger     *slog.Logger
	summaryTTL time.Duration
}

// NewRedisCache creates a new Redis cache client and verifies the
// connection with a ping
func NewRedisCache(cfg *config.CacheConfig, logger *slog.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.GetAddr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  time.Duration(cfg.DialTimeout) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	logger.Info("redis connection established",
		slog.String("addr", cfg.GetAddr()),
		slog.Int("db", cfg.DB),
	)

	return &RedisCache{
		client:     client,
		logger:     logger,
		summaryTTL: time.Duration(cfg.SummaryTTL) * time.Minute,
	}, nil
}

// Close closes the Redis connection
func (r *RedisCache) Close() error {
	r.logger.Info("closing redis connection")
	return r.client.Close()
}

// Ping checks if Redis is alive
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Set stores a value in cache with TTL
func (r *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

// Get retrieves a value from cache
func (r *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return r.client.Get(ctx, key).Result()
}

// Delete removes keys from cache
func (r *RedisCache) Delete(ctx context.Context, keys ...string) error {
	return r.client.Del(ctx, keys...).Err()
}

// Exists checks if a key exists
func (r *RedisCache) Exists(ctx context.Context, keys ...string) (int64, error) {
	return r.client.Exists(ctx, keys...).Result()
}

func summaryKey(fileHash string) string {
	return "summary:" + fileHash
}

// CacheSummary stores the analysis summary for a file hash
func (r *RedisCache) CacheSummary(ctx context.Context, fileHash string, summary *domain.DataSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	if err := r.client.Set(ctx, summaryKey(fileHash), data, r.summaryTTL).Err(); err != nil {
		r.logger.Error("failed to cache summary",
			slog.String("file_hash", fileHash),
			slog.Any("error", err))
		return err
	}

	r.logger.Debug("summary cached",
		slog.String("file_hash", fileHash),
		slog.Duration("ttl", r.summaryTTL))

	return nil
}

// GetSummary returns the cached summary for a file hash, or nil on a miss
func (r *RedisCache) GetSummary(ctx context.Context, fileHash string) (*domain.DataSummary, error) {
	data, err := r.client.Get(ctx, summaryKey(fileHash)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read summary cache: %w", err)
	}

	var summary domain.DataSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		// A corrupt entry behaves like a miss
		r.logger.Warn("discarding unreadable cached summary",
			slog.String("file_hash", fileHash),
			slog.Any("error", err))
		return nil, nil
	}

	return &summary, nil
}

// InvalidateSummary drops the cached summary for a file hash
func (r *RedisCache) InvalidateSummary(ctx context.Context, fileHash string) error {
	return r.client.Del(ctx, summaryKey(fileHash)).Err()
}
