package implementations

import (
	"context"
	"time"

	"wardrobe/internal/domain/wardrobe"
	"wardrobe/internal/platform/cache"
)

// CacheService implements wardrobe.CacheService on Redis/Valkey. With a nil
// client reads report wardrobe.ErrCacheUnavailable and writes are no-ops.
type CacheService struct {
	client *cache.RedisClient
}

var _ wardrobe.CacheService = (*CacheService)(nil)

// NewCacheService creates a new cache service
func NewCacheService(client *cache.RedisClient) *CacheService {
	return &CacheService{
		client: client,
	}
}

// GetInventory retrieves the cached inventory
func (c *CacheService) GetInventory(ctx context.Context) ([]wardrobe.Item, error) {
	if c.client == nil {
		return nil, wardrobe.ErrCacheUnavailable
	}

	return c.client.GetInventory(ctx)
}

// SetInventory caches the inventory
func (c *CacheService) SetInventory(ctx context.Context, items []wardrobe.Item) error {
	if c.client == nil {
		return nil
	}

	return c.client.SetInventory(ctx, items)
}

// InvalidateInventory drops the cached inventory
func (c *CacheService) InvalidateInventory(ctx context.Context) error {
	if c.client == nil {
		return nil
	}

	return c.client.InvalidateInventory(ctx)
}

// GetWeather retrieves a cached weather lookup
func (c *CacheService) GetWeather(ctx context.Context, city string) (*wardrobe.Weather, error) {
	if c.client == nil {
		return nil, wardrobe.ErrCacheUnavailable
	}

	return c.client.GetWeather(ctx, city)
}

// SetWeather caches a weather lookup
func (c *CacheService) SetWeather(ctx context.Context, city string, weather *wardrobe.Weather, ttl time.Duration) error {
	if c.client == nil {
		return nil
	}

	return c.client.SetWeather(ctx, city, weather, ttl)
}

// Health checks if the cache service is healthy
func (c *CacheService) Health(ctx context.Context) error {
	if c.client == nil {
		return wardrobe.ErrCacheUnavailable
	}

	return c.client.Health(ctx)
}
