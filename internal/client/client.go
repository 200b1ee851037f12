// Package client talks to the wardrobe REST API. It performs the same upload
// and generate flows as the browser front end.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"wardrobe/internal/domain/wardrobe"
	"wardrobe/internal/observability"
)

// Messages shown to the user verbatim
var (
	ErrNoImages     = errors.New("Please select image files only.") //nolint:staticcheck // user-facing message
	ErrCityRequired = errors.New("Please enter a city.")            //nolint:staticcheck // user-facing message
)

const (
	uploadFailedMessage    = "Upload failed"
	generateFailedMessage  = "Failed to generate outfits."
	inventoryFailedMessage = "Failed to load inventory."

	requestIDHeader = "X-Request-Id"
	defaultTimeout  = 2 * time.Minute
	maxErrorBody    = 64 << 10
)

// APIError is a non-2xx answer from the server
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// Client is a wardrobe API client
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *observability.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the traced default HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithLogger sets the logger used for request logs
func WithLogger(l *observability.Logger) Option {
	return func(cl *Client) {
		cl.logger = l
	}
}

// New creates a client for the server at baseURL
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server URL %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid server URL %q: missing host", baseURL)
	}

	c := &Client{
		baseURL: strings.TrimRight(u.String(), "/"),
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   defaultTimeout,
		},
		logger: observability.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("client")

	return c, nil
}

// Upload sends files as one multipart request, one "files" part per image
func (c *Client) Upload(ctx context.Context, files []ImageFile) (*wardrobe.UploadResult, error) {
	if len(files) == 0 {
		return nil, ErrNoImages
	}

	body, contentType, err := encodeUpload(files)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	var result wardrobe.UploadResult
	if err := c.do(req, uploadFailedMessage, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Inventory returns every item in the wardrobe
func (c *Client) Inventory(ctx context.Context) ([]wardrobe.Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/get_inventory", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var items []wardrobe.Item
	if err := c.do(req, inventoryFailedMessage, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []wardrobe.Item{}
	}
	return items, nil
}

// Generate asks for outfits suited to the current weather in city
func (c *Client) Generate(ctx context.Context, city string) (*wardrobe.GenerateResult, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, ErrCityRequired
	}

	payload, err := json.Marshal(map[string]string{"city": city})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var result wardrobe.GenerateResult
	if err := c.do(req, generateFailedMessage, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ImageURL is the absolute URL an item's photograph is served from
func (c *Client) ImageURL(item wardrobe.Item) string {
	return c.baseURL + item.URL()
}

// do sends req and decodes a 2xx JSON body into out. Other statuses become
// an *APIError carrying the server's message, or fallback when it has none.
func (c *Client) do(req *http.Request, fallback string, out interface{}) error {
	ctx := req.Context()
	requestID := uuid.NewString()
	req.Header.Set(requestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug(ctx).Err(err).Str("request_id", requestID).Str("url", req.URL.String()).Msg("Request failed")
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug(ctx).
		Str("request_id", requestID).
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("Request completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp, fallback)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", req.URL.Path, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response, fallback string) error {
	apiErr := &APIError{StatusCode: resp.StatusCode, Message: fallback}

	var body struct {
		Error string `json:"error"`
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err == nil && json.Unmarshal(data, &body) == nil && body.Error != "" {
		apiErr.Message = body.Error
	}
	return apiErr
}
