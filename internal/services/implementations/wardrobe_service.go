package implementations

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"wardrobe/internal/domain/wardrobe"
	"wardrobe/internal/observability"
)

// Dependencies wires the collaborators of WardrobeService. Cache and Metrics may be nil.
type Dependencies struct {
	Repository  wardrobe.Repository
	Storage     wardrobe.StorageService
	Decoder     wardrobe.ImageDecoder
	Classifier  wardrobe.Classifier
	Colors      wardrobe.ColorExtractor
	Weather     wardrobe.WeatherProvider
	Recommender wardrobe.Recommender
	Cache       wardrobe.CacheService
	Metrics     *observability.WardrobeMetrics
	Logger      *observability.Logger

	// WeatherTTL is how long a city's weather stays cached
	WeatherTTL time.Duration
}

// WardrobeService implements wardrobe.Service
type WardrobeService struct {
	repo        wardrobe.Repository
	storage     wardrobe.StorageService
	decoder     wardrobe.ImageDecoder
	classifier  wardrobe.Classifier
	colors      wardrobe.ColorExtractor
	weather     wardrobe.WeatherProvider
	recommender wardrobe.Recommender
	cache       wardrobe.CacheService // can be nil
	metrics     *observability.WardrobeMetrics
	logger      *observability.Logger
	weatherTTL  time.Duration
	now         func() time.Time
}

var _ wardrobe.Service = (*WardrobeService)(nil)

// NewWardrobeService creates a new wardrobe service implementation
func NewWardrobeService(deps Dependencies) *WardrobeService {
	logger := deps.Logger
	if logger == nil {
		logger = observability.NewNopLogger()
	}

	return &WardrobeService{
		repo:        deps.Repository,
		storage:     deps.Storage,
		decoder:     deps.Decoder,
		classifier:  deps.Classifier,
		colors:      deps.Colors,
		weather:     deps.Weather,
		recommender: deps.Recommender,
		cache:       deps.Cache,
		metrics:     deps.Metrics,
		logger:      logger.With("wardrobe_service"),
		weatherTTL:  deps.WeatherTTL,
		now:         time.Now,
	}
}

// Upload stores, classifies and analyses each file in order. The first
// failing file aborts the request with a *wardrobe.FileError; files
// committed before it stay committed.
func (s *WardrobeService) Upload(ctx context.Context, files []wardrobe.UploadFile) (*wardrobe.UploadResult, error) {
	if len(files) == 0 {
		return nil, wardrobe.ErrNoFiles
	}

	items := make([]wardrobe.Item, 0, len(files))
	defer func() {
		if len(items) > 0 {
			s.invalidateInventory(ctx)
		}
	}()

	for _, file := range files {
		if file.Filename == "" {
			continue
		}

		item, err := s.processFile(ctx, file)
		if err != nil {
			reason := "processing"
			if errors.Is(err, wardrobe.ErrUnsupportedImage) {
				reason = "unsupported"
			}
			s.metrics.UploadFailed(ctx, reason)
			s.logger.Error(ctx).
				Err(err).
				Str("filename", file.Filename).
				Int("committed", len(items)).
				Msg("Failed to process upload")
			return nil, &wardrobe.FileError{Filename: file.Filename, Err: err}
		}

		s.metrics.ItemUploaded(ctx, item.Category.String())
		s.logger.Info(ctx).
			Int("id", item.ID).
			Str("filename", item.Filename).
			Str("category", item.Category.String()).
			Strs("colors", item.Colors).
			Msg("Item uploaded")
		items = append(items, *item)
	}

	return &wardrobe.UploadResult{
		Message: wardrobe.UploadSuccessMessage,
		Items:   items,
	}, nil
}

func (s *WardrobeService) processFile(ctx context.Context, file wardrobe.UploadFile) (*wardrobe.Item, error) {
	contentType := s.decoder.DetectContentType(file.ContentType, file.Data)
	// Downstream consumers see the detected type, not the declared header
	file.ContentType = contentType

	img, err := s.decoder.Decode(ctx, file.Data, contentType)
	if err != nil {
		return nil, err
	}

	filename := generateUniqueFilename(secureFilename(file.Filename), s.now())
	storagePath, err := s.storage.Store(ctx, filename, contentType, bytes.NewReader(file.Data), int64(len(file.Data)))
	if err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	item, err := s.analyse(ctx, file, img)
	if err != nil {
		s.cleanupStorage(ctx, storagePath)
		return nil, err
	}

	item.Filename = filename
	item.StoragePath = storagePath
	item.ContentType = contentType
	item.FileSize = int64(len(file.Data))

	if err := item.Validate(); err != nil {
		s.cleanupStorage(ctx, storagePath)
		return nil, fmt.Errorf("item validation failed: %w", err)
	}

	if err := s.repo.Create(ctx, item); err != nil {
		s.cleanupStorage(ctx, storagePath)
		return nil, fmt.Errorf("failed to save item to database: %w", err)
	}

	return item, nil
}

// analyse runs classification and colour extraction concurrently
func (s *WardrobeService) analyse(ctx context.Context, file wardrobe.UploadFile, img image.Image) (*wardrobe.Item, error) {
	var (
		classification wardrobe.Classification
		colors         []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := s.classifier.Classify(gctx, file, img)
		if err != nil {
			return fmt.Errorf("classification failed: %w", err)
		}
		classification = c
		return nil
	})
	g.Go(func() error {
		colors = s.colors.DominantColors(gctx, img)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	category := classification.Category
	if !category.Valid() {
		category = wardrobe.CategoryForLabel(classification.Label)
	}
	if len(colors) == 0 {
		colors = append([]string(nil), wardrobe.FallbackColors...)
	}

	return &wardrobe.Item{
		Category: category,
		Label:    classification.Label,
		Colors:   colors,
	}, nil
}

func (s *WardrobeService) cleanupStorage(ctx context.Context, storagePath string) {
	// The request context may already be cancelled
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if err := s.storage.Delete(cleanupCtx, storagePath); err != nil {
		s.logger.Warn(ctx).Err(err).Str("path", storagePath).Msg("Failed to remove stored image")
	}
}

func (s *WardrobeService) invalidateInventory(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateInventory(context.WithoutCancel(ctx)); err != nil {
		s.logger.Warn(ctx).Err(err).Msg("Failed to invalidate inventory cache")
	}
}

// Inventory returns every item ordered by ID, from cache when possible
func (s *WardrobeService) Inventory(ctx context.Context) ([]wardrobe.Item, error) {
	if s.cache != nil {
		if items, err := s.cache.GetInventory(ctx); err == nil {
			return items, nil
		} else if !errors.Is(err, wardrobe.ErrCacheMiss) && !errors.Is(err, wardrobe.ErrCacheUnavailable) {
			s.logger.Warn(ctx).Err(err).Msg("Inventory cache read failed")
		}
	}

	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetInventory(ctx, items); err != nil {
			s.logger.Warn(ctx).Err(err).Msg("Failed to cache inventory")
		}
	}

	return items, nil
}

// Generate looks up the weather for city and recommends outfits from the inventory
func (s *WardrobeService) Generate(ctx context.Context, city string) (*wardrobe.GenerateResult, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, wardrobe.ErrCityRequired
	}

	weather, err := s.currentWeather(ctx, city)
	if err != nil {
		return nil, err
	}

	items, err := s.Inventory(ctx)
	if err != nil {
		return nil, err
	}

	outfits := s.recommender.Recommend(items, *weather)
	if outfits == nil {
		outfits = []wardrobe.Outfit{}
	}

	s.metrics.OutfitsGenerated(ctx, len(outfits), weather.Condition())
	s.logger.Info(ctx).
		Str("city", weather.City).
		Float64("temp", weather.Temp).
		Str("description", weather.Description).
		Int("outfits", len(outfits)).
		Msg("Outfits generated")

	return &wardrobe.GenerateResult{
		Outfits: outfits,
		Weather: *weather,
	}, nil
}

func (s *WardrobeService) currentWeather(ctx context.Context, city string) (*wardrobe.Weather, error) {
	start := s.now()

	if s.cache != nil {
		if weather, err := s.cache.GetWeather(ctx, city); err == nil {
			s.metrics.WeatherLookup(ctx, time.Since(start), "cache", nil)
			return weather, nil
		}
	}

	weather, err := s.weather.Current(ctx, city)
	s.metrics.WeatherLookup(ctx, time.Since(start), "api", err)
	if err != nil {
		if !errors.Is(err, wardrobe.ErrWeatherUnavailable) && !errors.Is(err, wardrobe.ErrCityRequired) {
			err = fmt.Errorf("%w: %s: %w", wardrobe.ErrWeatherUnavailable, city, err)
		}
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetWeather(ctx, city, weather, s.weatherTTL); err != nil {
			s.logger.Warn(ctx).Err(err).Str("city", city).Msg("Failed to cache weather")
		}
	}

	return weather, nil
}

// OpenImage returns the stored photograph for an item filename
func (s *WardrobeService) OpenImage(ctx context.Context, filename string) (io.ReadCloser, *wardrobe.Item, error) {
	if filename == "" || strings.ContainsAny(filename, `/\`) {
		return nil, nil, fmt.Errorf("%w: %s", wardrobe.ErrItemNotFound, filename)
	}

	item, err := s.repo.GetByFilename(ctx, filename)
	if err != nil {
		return nil, nil, err
	}

	exists, err := s.storage.Exists(ctx, item.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check stored image: %w", err)
	}
	if !exists {
		return nil, nil, fmt.Errorf("%w: %s has no stored image", wardrobe.ErrItemNotFound, filename)
	}

	rc, err := s.storage.Retrieve(ctx, item.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open stored image: %w", err)
	}

	return rc, item, nil
}
