package implementations

import (
	"context"
	"image"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"wardrobe/internal/domain/wardrobe"
)

// MockRepository is a mock implementation of wardrobe.Repository
type MockRepository struct {
	mock.Mock
	nextID int
}

func (m *MockRepository) Create(ctx context.Context, item *wardrobe.Item) error {
	args := m.Called(ctx, item)
	// Simulate setting ID and timestamps like a real database would
	if args.Error(0) == nil {
		m.nextID++
		item.ID = m.nextID
		item.CreatedAt = time.Now()
	}
	return args.Error(0)
}

func (m *MockRepository) List(ctx context.Context) ([]wardrobe.Item, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]wardrobe.Item), args.Error(1)
}

func (m *MockRepository) GetByFilename(ctx context.Context, filename string) (*wardrobe.Item, error) {
	args := m.Called(ctx, filename)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wardrobe.Item), args.Error(1)
}

// MockStorage is a mock implementation of wardrobe.StorageService
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Store(ctx context.Context, filename, contentType string, data io.Reader, size int64) (string, error) {
	args := m.Called(ctx, filename, contentType, data, size)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) Retrieve(ctx context.Context, path string) (io.ReadCloser, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockStorage) Delete(ctx context.Context, path string) error {
	args := m.Called(ctx, path)
	return args.Error(0)
}

func (m *MockStorage) Exists(ctx context.Context, path string) (bool, error) {
	args := m.Called(ctx, path)
	return args.Bool(0), args.Error(1)
}

// MockClassifier is a mock implementation of wardrobe.Classifier
type MockClassifier struct {
	mock.Mock
}

func (m *MockClassifier) Classify(ctx context.Context, file wardrobe.UploadFile, img image.Image) (wardrobe.Classification, error) {
	args := m.Called(ctx, file, img)
	return args.Get(0).(wardrobe.Classification), args.Error(1)
}

// MockWeather is a mock implementation of wardrobe.WeatherProvider
type MockWeather struct {
	mock.Mock
}

func (m *MockWeather) Current(ctx context.Context, city string) (*wardrobe.Weather, error) {
	args := m.Called(ctx, city)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wardrobe.Weather), args.Error(1)
}

// MockCache is a mock implementation of wardrobe.CacheService
type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetInventory(ctx context.Context) ([]wardrobe.Item, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]wardrobe.Item), args.Error(1)
}

func (m *MockCache) SetInventory(ctx context.Context, items []wardrobe.Item) error {
	args := m.Called(ctx, items)
	return args.Error(0)
}

func (m *MockCache) InvalidateInventory(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCache) GetWeather(ctx context.Context, city string) (*wardrobe.Weather, error) {
	args := m.Called(ctx, city)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wardrobe.Weather), args.Error(1)
}

func (m *MockCache) SetWeather(ctx context.Context, city string, weather *wardrobe.Weather, ttl time.Duration) error {
	args := m.Called(ctx, city, weather, ttl)
	return args.Error(0)
}

func (m *MockCache) Health(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
