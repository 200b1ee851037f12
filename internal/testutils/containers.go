package testutils

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	minioClient "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/minio"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	redisModule "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"

	"wardrobe/internal/config"
	"wardrobe/internal/platform/cache"
	"wardrobe/internal/platform/database"
	"wardrobe/internal/platform/storage"
)

const testBucket = "test-clothing"

// TestContainers manages test containers for integration testing
type TestContainers struct {
	PostgresContainer testcontainers.Container
	MinioContainer    testcontainers.Container
	RedisContainer    testcontainers.Container
	DB                *sql.DB
	Storage           *storage.Service
	StorageConfig     config.StorageConfig
	RedisClient       *cache.RedisClient
	DatabaseURL       string
	MinioEndpoint     string
	MinioUsername     string
	MinioPassword     string
	RedisEndpoint     string

	// raw client for bucket housekeeping the storage service does not expose
	minio *minioClient.Client
}

// SetupTestContainers starts Postgres, MinIO and Valkey and connects the
// wardrobe infrastructure to them
func SetupTestContainers(ctx context.Context) (*TestContainers, error) {
	containers := &TestContainers{
		MinioUsername: "testuser",
		MinioPassword: "testpass123",
	}

	if err := containers.setupPostgres(ctx); err != nil {
		return nil, fmt.Errorf("failed to setup postgres container: %w", err)
	}

	if err := containers.setupMinio(ctx); err != nil {
		_ = containers.Cleanup(ctx) //nolint:errcheck // already failing
		return nil, fmt.Errorf("failed to setup minio container: %w", err)
	}

	if err := containers.setupRedis(ctx); err != nil {
		_ = containers.Cleanup(ctx) //nolint:errcheck // already failing
		return nil, fmt.Errorf("failed to setup redis container: %w", err)
	}

	if _, err := database.RunMigrations(ctx, containers.DB); err != nil {
		_ = containers.Cleanup(ctx) //nolint:errcheck // already failing
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return containers, nil
}

// setupPostgres creates and starts a PostgreSQL test container
func (tc *TestContainers) setupPostgres(ctx context.Context) error {
	postgresContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to start postgres container: %w", err)
	}
	tc.PostgresContainer = postgresContainer

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return fmt.Errorf("failed to get postgres connection string: %w", err)
	}
	tc.DatabaseURL = connStr

	db, err := database.NewConnection(ctx, connStr)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	tc.DB = db

	return nil
}

// setupMinio creates and starts a MinIO test container
func (tc *TestContainers) setupMinio(ctx context.Context) error {
	minioContainer, err := minio.Run(ctx,
		"minio/minio:latest",
		minio.WithUsername(tc.MinioUsername),
		minio.WithPassword(tc.MinioPassword),
	)
	if err != nil {
		return fmt.Errorf("failed to start minio container: %w", err)
	}
	tc.MinioContainer = minioContainer

	endpoint, err := minioContainer.ConnectionString(ctx)
	if err != nil {
		return fmt.Errorf("failed to get minio endpoint: %w", err)
	}
	tc.MinioEndpoint = endpoint

	tc.StorageConfig = config.StorageConfig{
		Endpoint:        endpoint,
		AccessKeyID:     tc.MinioUsername,
		SecretAccessKey: tc.MinioPassword,
		UseSSL:          false,
		BucketName:      testBucket,
		Region:          "us-east-1",
		MaxUploadSize:   10 << 20,
		AllowedTypes:    []string{"image/jpeg", "image/png", "image/gif", "image/webp"},
	}

	// NewService creates the bucket
	tc.Storage, err = storage.NewService(ctx, &tc.StorageConfig)
	if err != nil {
		return fmt.Errorf("failed to create storage service: %w", err)
	}

	tc.minio, err = minioClient.New(endpoint, &minioClient.Options{
		Creds:  credentials.NewStaticV4(tc.MinioUsername, tc.MinioPassword, ""),
		Secure: false,
	})
	if err != nil {
		return fmt.Errorf("failed to create minio client: %w", err)
	}

	return nil
}

// setupRedis creates and starts a Valkey test container (Redis-compatible)
func (tc *TestContainers) setupRedis(ctx context.Context) error {
	redisContainer, err := redisModule.Run(ctx,
		"valkey/valkey:7-alpine",
		redisModule.WithSnapshotting(10, 1),
		redisModule.WithLogLevel(redisModule.LogLevelVerbose),
	)
	if err != nil {
		return fmt.Errorf("failed to start valkey container: %w", err)
	}
	tc.RedisContainer = redisContainer

	endpoint, err := redisContainer.ConnectionString(ctx)
	if err != nil {
		return fmt.Errorf("failed to get valkey endpoint: %w", err)
	}
	tc.RedisEndpoint = strings.TrimPrefix(endpoint, "redis://")

	redisClient, err := cache.NewRedisClient(ctx, config.CacheConfig{
		Enabled:     true,
		Address:     tc.RedisEndpoint,
		DefaultTTL:  time.Hour,
		DialTimeout: 5 * time.Second,
	})
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	tc.RedisClient = redisClient

	return nil
}

// Cleanup terminates all test containers and closes connections
func (tc *TestContainers) Cleanup(ctx context.Context) error {
	var errs []error

	if tc.DB != nil {
		if err := tc.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	if tc.RedisClient != nil {
		if err := tc.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close valkey client: %w", err))
		}
	}

	for name, c := range map[string]testcontainers.Container{
		"postgres": tc.PostgresContainer,
		"minio":    tc.MinioContainer,
		"valkey":   tc.RedisContainer,
	} {
		if c == nil {
			continue
		}
		if err := c.Terminate(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to terminate %s container: %w", name, err))
		}
	}

	return errors.Join(errs...)
}

// ResetDatabase removes every clothing item and restarts the id sequence
func (tc *TestContainers) ResetDatabase(ctx context.Context) error {
	if _, err := tc.DB.ExecContext(ctx, "TRUNCATE clothing_items RESTART IDENTITY"); err != nil {
		return fmt.Errorf("failed to reset clothing_items: %w", err)
	}
	return nil
}

// CleanBucket removes all objects from the test bucket
func (tc *TestContainers) CleanBucket(ctx context.Context) error {
	for obj := range tc.minio.ListObjects(ctx, testBucket, minioClient.ListObjectsOptions{Recursive: true}) {
		if obj.Err != nil {
			return fmt.Errorf("failed to list objects: %w", obj.Err)
		}
		if err := tc.minio.RemoveObject(ctx, testBucket, obj.Key, minioClient.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("failed to remove %s: %w", obj.Key, err)
		}
	}
	return nil
}

// ObjectCount returns the number of objects in the test bucket
func (tc *TestContainers) ObjectCount(ctx context.Context) (int, error) {
	count := 0
	for obj := range tc.minio.ListObjects(ctx, testBucket, minioClient.ListObjectsOptions{Recursive: true}) {
		if obj.Err != nil {
			return 0, obj.Err
		}
		count++
	}
	return count, nil
}

// FlushRedis clears all data from the Valkey test database
func (tc *TestContainers) FlushRedis(ctx context.Context) error {
	if tc.RedisClient == nil {
		return errors.New("valkey client not available")
	}
	return tc.RedisClient.FlushCache(ctx)
}
