package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// WardrobeMetrics holds the domain instruments of the wardrobe service.
// A nil *WardrobeMetrics records nothing.
type WardrobeMetrics struct {
	itemsUploaded    metric.Int64Counter
	uploadFailures   metric.Int64Counter
	outfitsGenerated metric.Int64Counter
	weatherLookup    metric.Float64Histogram
}

// NewWardrobeMetrics registers the domain instruments on meter
func NewWardrobeMetrics(meter metric.Meter) (*WardrobeMetrics, error) {
	itemsUploaded, err := meter.Int64Counter(
		"wardrobe.items.uploaded",
		metric.WithDescription("Clothing items stored, by category"),
		metric.WithUnit("{item}"),
	)
	if err != nil {
		return nil, err
	}

	uploadFailures, err := meter.Int64Counter(
		"wardrobe.items.upload_failures",
		metric.WithDescription("Files rejected or failed during upload processing"),
		metric.WithUnit("{file}"),
	)
	if err != nil {
		return nil, err
	}

	outfitsGenerated, err := meter.Int64Counter(
		"wardrobe.outfits.generated",
		metric.WithDescription("Outfits returned by the recommender"),
		metric.WithUnit("{outfit}"),
	)
	if err != nil {
		return nil, err
	}

	weatherLookup, err := meter.Float64Histogram(
		"wardrobe.weather.lookup.duration",
		metric.WithDescription("Latency of weather lookups including cache hits"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &WardrobeMetrics{
		itemsUploaded:    itemsUploaded,
		uploadFailures:   uploadFailures,
		outfitsGenerated: outfitsGenerated,
		weatherLookup:    weatherLookup,
	}, nil
}

func (m *WardrobeMetrics) ItemUploaded(ctx context.Context, category string) {
	if m == nil {
		return
	}
	m.itemsUploaded.Add(ctx, 1, metric.WithAttributes(attribute.String("wardrobe.category", category)))
}

func (m *WardrobeMetrics) UploadFailed(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.uploadFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("wardrobe.failure_reason", reason)))
}

func (m *WardrobeMetrics) OutfitsGenerated(ctx context.Context, count int, weatherLabel string) {
	if m == nil || count == 0 {
		return
	}
	m.outfitsGenerated.Add(ctx, int64(count), metric.WithAttributes(attribute.String("wardrobe.weather", weatherLabel)))
}

func (m *WardrobeMetrics) WeatherLookup(ctx context.Context, elapsed time.Duration, source string, err error) {
	if m == nil {
		return
	}
	m.weatherLookup.Record(ctx, elapsed.Seconds(), metric.WithAttributes(
		attribute.String("wardrobe.weather.source", source),
		attribute.Bool("error", err != nil),
	))
}
