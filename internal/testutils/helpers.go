package testutils

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"wardrobe/internal/config"
	"wardrobe/internal/domain/wardrobe"
	"wardrobe/internal/observability"
	"wardrobe/internal/services"
)

// TestSuite wires a services.Container to real containers
type TestSuite struct {
	Containers *TestContainers
	Container  *services.Container
	Weather    *FakeWeatherServer
}

// SetupTestSuite starts the containers and builds the service container
// against them. Weather is served by a local fake OpenWeatherMap.
func SetupTestSuite(ctx context.Context) (*TestSuite, error) {
	containers, err := SetupTestContainers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to setup test containers: %w", err)
	}

	weather := NewFakeWeatherServer()

	cfg := &config.Config{
		Environment: "test",
		DatabaseURL: containers.DatabaseURL,
		Storage:     containers.StorageConfig,
		Cache:       config.CacheConfig{Enabled: true, Address: containers.RedisEndpoint},
		Weather: config.WeatherConfig{
			APIKey:         "test-key",
			BaseURL:        weather.URL(),
			RequestTimeout: 5 * time.Second,
			CacheTTL:       time.Minute,
		},
		Classifier: config.ClassifierConfig{Provider: config.ClassifierKeyword},
	}

	container, err := services.NewContainer(ctx, cfg, services.Infrastructure{
		DB:      containers.DB,
		Storage: containers.Storage,
		Redis:   containers.RedisClient,
		Logger:  observability.NewNopLogger(),
	})
	if err != nil {
		weather.Close()
		_ = containers.Cleanup(ctx) //nolint:errcheck // already failing
		return nil, fmt.Errorf("failed to create services container: %w", err)
	}

	return &TestSuite{
		Containers: containers,
		Container:  container,
		Weather:    weather,
	}, nil
}

// Cleanup cleans up all test resources
func (ts *TestSuite) Cleanup(ctx context.Context) error {
	ts.Weather.Close()
	return ts.Containers.Cleanup(ctx)
}

// ResetData clears the database, the bucket and the cache
func (ts *TestSuite) ResetData(ctx context.Context) error {
	if err := ts.Containers.ResetDatabase(ctx); err != nil {
		return err
	}
	if err := ts.Containers.CleanBucket(ctx); err != nil {
		return err
	}
	return ts.Containers.FlushRedis(ctx)
}

// SolidPNG encodes a w x h PNG filled with c
func SolidPNG(c color.Color, w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// PNGUpload builds an upload part holding a solid-colour PNG
func PNGUpload(filename string, c color.Color) wardrobe.UploadFile {
	return wardrobe.UploadFile{
		Filename:    filename,
		ContentType: "image/png",
		Data:        SolidPNG(c, 16, 16),
	}
}

// FakeWeatherServer answers OpenWeatherMap current-weather requests from a
// table of cities. Unknown cities get a 404 like the real API.
type FakeWeatherServer struct {
	server *httptest.Server

	mu     sync.Mutex
	cities map[string]wardrobe.Weather
	calls  int
}

// NewFakeWeatherServer starts the fake
func NewFakeWeatherServer() *FakeWeatherServer {
	f := &FakeWeatherServer{cities: make(map[string]wardrobe.Weather)}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	return f
}

// URL is the base URL to configure the weather client with
func (f *FakeWeatherServer) URL() string {
	return f.server.URL
}

// Close stops the server
func (f *FakeWeatherServer) Close() {
	f.server.Close()
}

// Set registers the weather reported for a city query
func (f *FakeWeatherServer) Set(query string, w wardrobe.Weather) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cities[query] = w
}

// Calls returns how many requests reached the fake
func (f *FakeWeatherServer) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *FakeWeatherServer) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.calls++
	weather, ok := f.cities[r.URL.Query().Get("q")]
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"cod":"404","message":"city not found"}`))
		return
	}

	_, _ = fmt.Fprintf(w, `{"name":%q,"main":{"temp":%g},"weather":[{"main":%q}]}`,
		weather.City, weather.Temp, weather.Description)
}
