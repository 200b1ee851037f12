package wardrobe

import (
	"context"
	"image"
	"io"
	"time"
)

// Repository defines persistence for clothing items
type Repository interface {
	// Create stores a new item and fills in its ID and CreatedAt
	Create(ctx context.Context, item *Item) error

	// List returns every item ordered by ID
	List(ctx context.Context) ([]Item, error)

	// GetByFilename returns ErrItemNotFound when no item has that name
	GetByFilename(ctx context.Context, filename string) (*Item, error)
}

// StorageService defines object storage for the uploaded photographs
type StorageService interface {
	// Store saves data under filename and returns the storage path
	Store(ctx context.Context, filename, contentType string, data io.Reader, size int64) (string, error)

	// Retrieve opens a stored object
	Retrieve(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes a stored object
	Delete(ctx context.Context, path string) error

	// Exists checks if a stored object exists
	Exists(ctx context.Context, path string) (bool, error)
}

// ImageDecoder validates and decodes uploaded image bytes
type ImageDecoder interface {
	// DetectContentType returns the declared type when it is an image type,
	// otherwise the sniffed type
	DetectContentType(declared string, data []byte) string

	// Decode returns ErrUnsupportedImage for non-image content types
	Decode(ctx context.Context, data []byte, contentType string) (image.Image, error)
}

// Classifier assigns a garment label and category to a photograph
type Classifier interface {
	Classify(ctx context.Context, file UploadFile, img image.Image) (Classification, error)
}

// ColorExtractor finds the dominant colours of an image as #rrggbb strings
type ColorExtractor interface {
	DominantColors(ctx context.Context, img image.Image) []string
}

// WeatherProvider looks up the current weather for a city
type WeatherProvider interface {
	// Current returns ErrWeatherUnavailable when the city cannot be resolved
	Current(ctx context.Context, city string) (*Weather, error)
}

// Recommender builds outfits from the inventory for a weather condition
type Recommender interface {
	Recommend(items []Item, weather Weather) []Outfit
}

// CacheService defines caching of the inventory and weather lookups.
// Getters return ErrCacheMiss when nothing is cached.
type CacheService interface {
	GetInventory(ctx context.Context) ([]Item, error)
	SetInventory(ctx context.Context, items []Item) error
	InvalidateInventory(ctx context.Context) error

	GetWeather(ctx context.Context, city string) (*Weather, error)
	SetWeather(ctx context.Context, city string, weather *Weather, ttl time.Duration) error

	Health(ctx context.Context) error
}

// Service defines the high-level wardrobe operations exposed over HTTP
type Service interface {
	// Upload processes files in order and stops at the first failing file
	Upload(ctx context.Context, files []UploadFile) (*UploadResult, error)

	// Inventory returns every item ordered by ID
	Inventory(ctx context.Context) ([]Item, error)

	// Generate looks up the weather for city and recommends outfits
	Generate(ctx context.Context, city string) (*GenerateResult, error)

	// OpenImage returns the stored photograph for an item filename
	OpenImage(ctx context.Context, filename string) (io.ReadCloser, *Item, error)
}
