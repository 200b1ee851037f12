// Package weather looks up current conditions from OpenWeatherMap.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"wardrobe/internal/config"
	"wardrobe/internal/domain/wardrobe"
	"wardrobe/internal/observability"
)

const (
	currentWeatherPath = "/data/2.5/weather"
	defaultRetryDelay  = 500 * time.Millisecond
	maxErrorBody       = 512
)

// Client queries the OpenWeatherMap current weather endpoint
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	attempts   uint
	retryDelay time.Duration
	logger     *observability.Logger
}

var _ wardrobe.WeatherProvider = (*Client)(nil)

// Option customises a Client
type Option func(*Client)

// WithHTTPClient replaces the instrumented default HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) { client.httpClient = c }
}

// WithRetryDelay sets the base delay between retries
func WithRetryDelay(d time.Duration) Option {
	return func(client *Client) { client.retryDelay = d }
}

// NewClient creates a weather client from configuration
func NewClient(cfg config.WeatherConfig, logger *observability.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = observability.NewNopLogger()
	}

	client := &Client{
		httpClient: &http.Client{
			Timeout:   cfg.RequestTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		attempts:   uint(max(cfg.MaxRetries, 0)) + 1,
		retryDelay: defaultRetryDelay,
		logger:     logger.With("weather"),
	}

	for _, opt := range opts {
		opt(client)
	}
	return client
}

type currentResponse struct {
	Name string `json:"name"`
	Main struct {
		Temp *float64 `json:"temp"`
	} `json:"main"`
	Weather []struct {
		Main string `json:"main"`
	} `json:"weather"`
}

// statusError is a non-2xx answer from the API
type statusError struct {
	Code int
	Body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("weather API returned %d: %s", e.Code, e.Body)
}

// Current returns the weather for city. Every failure wraps
// wardrobe.ErrWeatherUnavailable; only 5xx and transport errors are retried.
func (c *Client) Current(ctx context.Context, city string) (*wardrobe.Weather, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, wardrobe.ErrCityRequired
	}
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: API key not configured", wardrobe.ErrWeatherUnavailable)
	}

	weather, err := retry.DoWithData(
		func() (*wardrobe.Weather, error) {
			return c.fetch(ctx, city)
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Warn(ctx).
				Err(err).
				Str("city", city).
				Uint("attempt", n+1).
				Msg("Retrying weather lookup")
		}),
	)
	if err != nil {
		c.logger.Error(ctx).Err(err).Str("city", city).Msg("Weather lookup failed")
		return nil, fmt.Errorf("%w: %s: %w", wardrobe.ErrWeatherUnavailable, city, err)
	}

	return weather, nil
}

func (c *Client) fetch(ctx context.Context, city string) (*wardrobe.Weather, error) {
	query := url.Values{}
	query.Set("q", city)
	query.Set("appid", c.apiKey)
	query.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+currentWeatherPath+"?"+query.Encode(), nil)
	if err != nil {
		return nil, retry.Unrecoverable(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }() //nolint:errcheck // resource cleanup

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody)) //nolint:errcheck // best effort
		statusErr := &statusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, statusErr
		}
		return nil, retry.Unrecoverable(statusErr)
	}

	var payload currentResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, retry.Unrecoverable(fmt.Errorf("failed to decode weather response: %w", err))
	}

	return toWeather(city, payload)
}

func toWeather(requested string, payload currentResponse) (*wardrobe.Weather, error) {
	if payload.Main.Temp == nil {
		return nil, retry.Unrecoverable(errors.New("weather response has no temperature"))
	}
	if len(payload.Weather) == 0 {
		return nil, retry.Unrecoverable(errors.New("weather response has no conditions"))
	}

	name := payload.Name
	if name == "" {
		name = requested
	}

	return &wardrobe.Weather{
		City:        name,
		Temp:        *payload.Main.Temp,
		Description: strings.ToLower(payload.Weather[0].Main),
	}, nil
}
