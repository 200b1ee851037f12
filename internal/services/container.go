package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"wardrobe/internal/config"
	"wardrobe/internal/domain/wardrobe"
	"wardrobe/internal/observability"
	"wardrobe/internal/platform/cache"
	"wardrobe/internal/platform/classifier"
	"wardrobe/internal/platform/database"
	"wardrobe/internal/platform/storage"
	"wardrobe/internal/platform/weather"
	"wardrobe/internal/services/implementations"
)

// Container holds all the application dependencies
type Container struct {
	config *config.Config
	db     *sql.DB
	logger *observability.Logger

	// Infrastructure
	storageService *storage.Service
	redisClient    *cache.RedisClient // nil when caching is disabled

	// Repositories
	itemRepository wardrobe.Repository

	// Services
	imageProcessor  *storage.ImageProcessor
	colorExtractor  wardrobe.ColorExtractor
	classifier      wardrobe.Classifier
	weatherProvider wardrobe.WeatherProvider
	recommender     wardrobe.Recommender
	cacheService    *implementations.CacheService
	metrics         *observability.WardrobeMetrics
	wardrobeService *implementations.WardrobeService
}

// Infrastructure groups the connections the container is built from.
// Redis and Metrics are optional.
type Infrastructure struct {
	DB      *sql.DB
	Storage *storage.Service
	Redis   *cache.RedisClient
	Metrics *observability.WardrobeMetrics
	Logger  *observability.Logger
}

// NewContainer creates a new dependency injection container
func NewContainer(ctx context.Context, cfg *config.Config, infra Infrastructure) (*Container, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if infra.DB == nil {
		return nil, errors.New("database cannot be nil")
	}
	if infra.Storage == nil {
		return nil, errors.New("storage cannot be nil")
	}

	logger := infra.Logger
	if logger == nil {
		logger = observability.NewNopLogger()
	}

	container := &Container{
		config:         cfg,
		db:             infra.DB,
		logger:         logger,
		storageService: infra.Storage,
		redisClient:    infra.Redis,
		metrics:        infra.Metrics,
	}

	if err := container.initializeServices(ctx); err != nil {
		return nil, err
	}

	return container, nil
}

// initializeServices initializes all services in dependency order
func (c *Container) initializeServices(ctx context.Context) error {
	c.itemRepository = database.NewItemRepository(c.db)

	c.imageProcessor = storage.NewImageProcessor(0, 0)
	c.colorExtractor = storage.NewColorExtractor()
	c.cacheService = implementations.NewCacheService(c.redisClient)
	c.recommender = implementations.NewRecommender(nil)
	c.weatherProvider = weather.NewClient(c.config.Weather, c.logger)

	cls, err := classifier.New(ctx, c.config.Classifier, c.logger)
	if err != nil {
		return fmt.Errorf("failed to create classifier: %w", err)
	}
	c.classifier = cls

	c.wardrobeService = implementations.NewWardrobeService(implementations.Dependencies{
		Repository:  c.itemRepository,
		Storage:     c.storageService,
		Decoder:     c.imageProcessor,
		Classifier:  c.classifier,
		Colors:      c.colorExtractor,
		Weather:     c.weatherProvider,
		Recommender: c.recommender,
		Cache:       c.cacheService,
		Metrics:     c.metrics,
		Logger:      c.logger,
		WeatherTTL:  c.config.Weather.CacheTTL,
	})

	c.logger.Info(ctx).
		Str("classifier", c.config.Classifier.Provider).
		Bool("cache_enabled", c.redisClient != nil).
		Msg("Dependency injection container initialized")
	return nil
}

// Getters for accessing services

func (c *Container) Config() *config.Config {
	return c.config
}

func (c *Container) DB() *sql.DB {
	return c.db
}

func (c *Container) StorageService() *storage.Service {
	return c.storageService
}

func (c *Container) ItemRepository() wardrobe.Repository {
	return c.itemRepository
}

func (c *Container) CacheService() wardrobe.CacheService {
	return c.cacheService
}

func (c *Container) WardrobeService() wardrobe.Service {
	return c.wardrobeService
}

// ReadinessChecks returns the dependencies probed by /readyz, keyed by name
func (c *Container) ReadinessChecks() map[string]func(ctx context.Context) error {
	checks := map[string]func(ctx context.Context) error{
		"database": c.db.PingContext,
		"storage":  c.storageService.Health,
	}
	if c.redisClient != nil {
		checks["cache"] = c.cacheService.Health
	}
	return checks
}

// Close releases resources owned by the container. The database and storage
// are owned by the caller.
func (c *Container) Close() error {
	if c.redisClient != nil {
		if err := c.redisClient.Close(); err != nil {
			return fmt.Errorf("failed to close cache client: %w", err)
		}
	}
	return nil
}
