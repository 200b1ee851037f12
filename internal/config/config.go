// Package config provides application configuration management
// with validation and environment parsing
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Classifier providers
const (
	ClassifierGemini  = "gemini"
	ClassifierKeyword = "keyword"
)

// Config represents the application configuration
type Config struct {
	Environment string
	Port        string
	Host        string
	DatabaseURL string
	Storage     StorageConfig
	Cache       CacheConfig
	Weather     WeatherConfig
	Classifier  ClassifierConfig
	Logging     *LoggingConfig
	Server      *ServerConfig
}

// StorageConfig holds object storage configuration
type StorageConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	UseSSL          bool
	Region          string
	MaxUploadSize   int64
	AllowedTypes    []string
}

// CacheConfig holds Redis/Valkey configuration
type CacheConfig struct {
	Enabled         bool
	Address         string
	Password        string
	Database        int
	DefaultTTL      time.Duration
	MaxRetries      int
	MinRetryBackoff time.Duration
	MaxRetryBackoff time.Duration
	DialTimeout     time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	PoolSize        int
	MinIdleConns    int
	PoolTimeout     time.Duration
}

// WeatherConfig holds the OpenWeatherMap client configuration
type WeatherConfig struct {
	APIKey         string
	BaseURL        string
	RequestTimeout time.Duration
	MaxRetries     int
	CacheTTL       time.Duration
}

// ClassifierConfig selects and configures the garment classifier
type ClassifierConfig struct {
	Provider     string
	GeminiAPIKey string
	Model        string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
	Output string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Load creates a new configuration from environment variables with validation
func Load() (*Config, error) {
	config := FromEnv()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// FromEnv reads the configuration from environment variables without validating it
func FromEnv() *Config {
	useSSL, _ := strconv.ParseBool(getEnv("STORAGE_USE_SSL", "false"))
	maxUploadSize := parseSize(getEnv("MAX_UPLOAD_SIZE", "10MB"))
	allowedTypes := parseList(getEnv("ALLOWED_FILE_TYPES", "image/jpeg,image/png,image/gif,image/webp"))

	readTimeout, _ := time.ParseDuration(getEnv("READ_TIMEOUT", "15s"))
	writeTimeout, _ := time.ParseDuration(getEnv("WRITE_TIMEOUT", "60s"))
	idleTimeout, _ := time.ParseDuration(getEnv("SERVER_TIMEOUT", "60s"))

	cacheEnabled, _ := strconv.ParseBool(getEnv("CACHE_ENABLED", "true"))
	cacheDB, _ := strconv.Atoi(getEnv("CACHE_DB", "0"))
	cacheTTL, _ := time.ParseDuration(getEnv("CACHE_DEFAULT_TTL", "1h"))

	weatherTimeout, _ := time.ParseDuration(getEnv("WEATHER_TIMEOUT", "10s"))
	weatherRetries, _ := strconv.Atoi(getEnv("WEATHER_MAX_RETRIES", "3"))
	weatherTTL, _ := time.ParseDuration(getEnv("WEATHER_CACHE_TTL", "10m"))

	return &Config{
		Environment: getEnv("GO_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		Host:        getEnv("HOST", "localhost"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		Storage: StorageConfig{
			Endpoint:        getEnv("STORAGE_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getEnv("STORAGE_ACCESS_KEY", "minioadmin"),
			SecretAccessKey: getEnv("STORAGE_SECRET_KEY", "minioadmin"),
			BucketName:      getEnv("STORAGE_BUCKET", "clothing"),
			UseSSL:          useSSL,
			Region:          getEnv("STORAGE_REGION", "us-east-1"),
			MaxUploadSize:   maxUploadSize,
			AllowedTypes:    allowedTypes,
		},
		Cache: CacheConfig{
			Enabled:         cacheEnabled,
			Address:         getEnv("CACHE_ADDRESS", "localhost:6379"),
			Password:        getEnv("CACHE_PASSWORD", ""),
			Database:        cacheDB,
			DefaultTTL:      cacheTTL,
			MaxRetries:      3,
			MinRetryBackoff: 8 * time.Millisecond,
			MaxRetryBackoff: 512 * time.Millisecond,
			DialTimeout:     5 * time.Second,
			ReadTimeout:     3 * time.Second,
			WriteTimeout:    3 * time.Second,
			PoolSize:        10,
			MinIdleConns:    2,
			PoolTimeout:     4 * time.Second,
		},
		Weather: WeatherConfig{
			APIKey:         getEnv("OPENWEATHER_API_KEY", ""),
			BaseURL:        getEnv("OPENWEATHER_BASE_URL", "https://api.openweathermap.org"),
			RequestTimeout: weatherTimeout,
			MaxRetries:     weatherRetries,
			CacheTTL:       weatherTTL,
		},
		Classifier: ClassifierConfig{
			Provider:     strings.ToLower(getEnv("CLASSIFIER_PROVIDER", ClassifierKeyword)),
			GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
			Model:        getEnv("CLASSIFIER_MODEL", "gemini-2.5-flash"),
		},
		Logging: &LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
			Output: getEnv("LOG_OUTPUT", "stdout"),
		},
		Server: &ServerConfig{
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
			IdleTimeout:  idleTimeout,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseSize parses size strings like "10MB", "512KB" into bytes
func parseSize(sizeStr string) int64 {
	sizeStr = strings.ToUpper(strings.TrimSpace(sizeStr))

	if strings.HasSuffix(sizeStr, "MB") {
		numStr := strings.TrimSuffix(sizeStr, "MB")
		if num, err := strconv.ParseInt(numStr, 10, 64); err == nil {
			return num * 1024 * 1024
		}
	}

	if strings.HasSuffix(sizeStr, "KB") {
		numStr := strings.TrimSuffix(sizeStr, "KB")
		if num, err := strconv.ParseInt(numStr, 10, 64); err == nil {
			return num * 1024
		}
	}

	// Default to 10MB if parsing fails
	return 10 * 1024 * 1024
}

// parseList parses comma-separated strings into slices
func parseList(listStr string) []string {
	if listStr == "" {
		return []string{}
	}

	items := strings.Split(listStr, ",")
	result := make([]string, 0, len(items))

	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
