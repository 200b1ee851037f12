package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"wardrobe/internal/config"
	"wardrobe/internal/domain/wardrobe"
)

// Cache keys
const (
	InventoryKey     = "inventory:all"
	weatherKeyPrefix = "weather:"
)

// WeatherKey returns the cache key for a city; lookups are case-insensitive
func WeatherKey(city string) string {
	return weatherKeyPrefix + strings.ToLower(strings.TrimSpace(city))
}

// RedisClient wraps the Redis client with wardrobe-specific functionality.
// It works with both Redis and Valkey.
type RedisClient struct {
	client     *redis.Client
	defaultTTL time.Duration
}

// NewRedisClient creates a new Redis client and verifies the connection
func NewRedisClient(ctx context.Context, cfg config.CacheConfig) (*RedisClient, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("cache is disabled")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Address,
		Password:        cfg.Password,
		DB:              cfg.Database,
		MaxRetries:      cfg.MaxRetries,
		MinRetryBackoff: cfg.MinRetryBackoff,
		MaxRetryBackoff: cfg.MaxRetryBackoff,
		DialTimeout:     cfg.DialTimeout,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		PoolSize:        cfg.PoolSize,
		MinIdleConns:    cfg.MinIdleConns,
		PoolTimeout:     cfg.PoolTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("failed to connect to Redis/Valkey: %w", err)
	}

	return &RedisClient{
		client:     rdb,
		defaultTTL: cfg.DefaultTTL,
	}, nil
}

// Get retrieves a cached value by key and unmarshals it into result.
// A missing key gives wardrobe.ErrCacheMiss.
func (r *RedisClient) Get(ctx context.Context, key string, result interface{}) error {
	val, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return fmt.Errorf("%w: %s", wardrobe.ErrCacheMiss, key)
		}
		return fmt.Errorf("failed to get %s from cache: %w", key, err)
	}

	if err := json.Unmarshal(val, result); err != nil {
		return fmt.Errorf("failed to unmarshal cached value %s: %w", key, err)
	}

	return nil
}

// Set caches a value; a zero ttl uses the default TTL
func (r *RedisClient) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	if ttl == 0 {
		ttl = r.defaultTTL
	}

	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache %s: %w", key, err)
	}

	return nil
}

// Delete removes a value from cache by key
func (r *RedisClient) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete %s from cache: %w", key, err)
	}

	return nil
}

// GetInventory retrieves the cached inventory
func (r *RedisClient) GetInventory(ctx context.Context) ([]wardrobe.Item, error) {
	var items []wardrobe.Item
	if err := r.Get(ctx, InventoryKey, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []wardrobe.Item{}
	}
	return items, nil
}

// SetInventory caches the inventory with the default TTL
func (r *RedisClient) SetInventory(ctx context.Context, items []wardrobe.Item) error {
	if items == nil {
		items = []wardrobe.Item{}
	}
	return r.Set(ctx, InventoryKey, items, 0)
}

// InvalidateInventory drops the cached inventory
func (r *RedisClient) InvalidateInventory(ctx context.Context) error {
	return r.Delete(ctx, InventoryKey)
}

// GetWeather retrieves a cached weather lookup for city
func (r *RedisClient) GetWeather(ctx context.Context, city string) (*wardrobe.Weather, error) {
	var weather wardrobe.Weather
	if err := r.Get(ctx, WeatherKey(city), &weather); err != nil {
		return nil, err
	}
	return &weather, nil
}

// SetWeather caches a weather lookup for city
func (r *RedisClient) SetWeather(ctx context.Context, city string, weather *wardrobe.Weather, ttl time.Duration) error {
	if weather == nil {
		return errors.New("weather cannot be nil")
	}
	return r.Set(ctx, WeatherKey(city), weather, ttl)
}

// Health checks if the Redis/Valkey connection is healthy
func (r *RedisClient) Health(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis/valkey health check failed: %w", err)
	}
	return nil
}

// Close closes the Redis/Valkey connection
func (r *RedisClient) Close() error {
	return r.client.Close()
}

// FlushCache clears all cached data (use with caution)
func (r *RedisClient) FlushCache(ctx context.Context) error {
	if err := r.client.FlushDB(ctx).Err(); err != nil {
		return fmt.Errorf("failed to flush cache: %w", err)
	}
	return nil
}
