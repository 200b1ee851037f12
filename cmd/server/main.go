package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel"

	"wardrobe/internal/config"
	"wardrobe/internal/observability"
	"wardrobe/internal/platform/cache"
	"wardrobe/internal/platform/database"
	"wardrobe/internal/platform/server"
	"wardrobe/internal/platform/storage"
	"wardrobe/internal/services"
	"wardrobe/internal/web/handlers"
)

func main() {
	envErr := godotenv.Load()

	obsConfig := observability.LoadConfig()
	logger := observability.NewLogger(obsConfig).With("server")
	ctx := context.Background()

	if envErr != nil {
		logger.Info(ctx).Msg("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal(ctx).Err(err).Msg("Failed to load configuration")
	}
	for _, warning := range cfg.Warnings() {
		logger.Warn(ctx).Msg(warning)
	}

	otel.SetErrorHandler(otel.ErrorHandlerFunc(logger.OTELErrorHandler()))
	provider, err := observability.NewProvider(ctx, obsConfig)
	if err != nil {
		logger.Fatal(ctx).Err(err).Msg("Failed to initialize OpenTelemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Error(shutdownCtx).Err(err).Msg("Failed to shut down OpenTelemetry")
		}
	}()

	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal(ctx).Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	applied, err := database.RunMigrations(ctx, db)
	if err != nil {
		logger.Fatal(ctx).Err(err).Msg("Failed to run migrations")
	}
	logger.Info(ctx).Strs("applied", applied).Msg("Database migrations complete")

	storageService, err := storage.NewService(ctx, &cfg.Storage)
	if err != nil {
		logger.Fatal(ctx).Err(err).Msg("Failed to connect to storage")
	}

	// The cache is optional; the service reads through to Postgres without it
	var redisClient *cache.RedisClient
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Cache)
		if err != nil {
			logger.Warn(ctx).Err(err).Str("address", cfg.Cache.Address).Msg("Cache unavailable, continuing without it")
			redisClient = nil
		}
	}

	meter := observability.GetMeter()
	wardrobeMetrics, err := observability.NewWardrobeMetrics(meter)
	if err != nil {
		logger.Fatal(ctx).Err(err).Msg("Failed to register wardrobe metrics")
	}
	httpMetrics, err := observability.NewHTTPMetrics(meter)
	if err != nil {
		logger.Fatal(ctx).Err(err).Msg("Failed to register HTTP metrics")
	}

	container, err := services.NewContainer(ctx, cfg, services.Infrastructure{
		DB:      db,
		Storage: storageService,
		Redis:   redisClient,
		Metrics: wardrobeMetrics,
		Logger:  observability.NewLogger(obsConfig),
	})
	if err != nil {
		logger.Fatal(ctx).Err(err).Msg("Failed to initialize services container")
	}
	defer func() {
		if err := container.Close(); err != nil {
			logger.Error(ctx).Err(err).Msg("Failed to close services container")
		}
	}()

	handler, err := handlers.New(container.WardrobeService(), handlers.Options{
		MaxRequestSize: cfg.Storage.MaxUploadSize * 10,
		AllowedTypes:   cfg.Storage.AllowedTypes,
		Version:        obsConfig.ServiceVersion,
		HTTPMetrics:    httpMetrics,
	}, observability.NewLogger(obsConfig))
	if err != nil {
		logger.Fatal(ctx).Err(err).Msg("Failed to create HTTP handler")
	}
	for name, check := range container.ReadinessChecks() {
		handler.AddReadinessCheck(name, check)
	}

	srv := server.New("", cfg.Port, handler.Routes(), cfg.Server)

	go func() {
		logger.Info(ctx).
			Str("url", "http://"+cfg.Host+":"+cfg.Port).
			Str("environment", cfg.Environment).
			Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(ctx).Err(err).Msg("Server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info(ctx).Msg("Server shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(shutdownCtx).Err(err).Msg("Server forced to shutdown")
		return
	}

	logger.Info(ctx).Msg("Server exited")
}
