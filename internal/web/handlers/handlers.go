package handlers

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"

	"wardrobe/internal/domain/wardrobe"
	"wardrobe/internal/observability"
	"wardrobe/internal/web/assets"
)

const (
	defaultTitle          = "Smart Wardrobe"
	defaultMaxRequestSize = 64 << 20 // 64MB per upload request
	maxMemoryPerUpload    = 1 << 20  // 1MB in memory, the rest spills to disk
	maxJSONBodySize       = 1 << 20
)

// ReadinessCheck reports whether a dependency can serve traffic
type ReadinessCheck func(ctx context.Context) error

// Options configures the HTTP handler
type Options struct {
	// MaxRequestSize bounds the body of an upload request
	MaxRequestSize int64

	// AllowedTypes feeds the file picker's accept attribute
	AllowedTypes []string

	Title   string
	Version string

	// HTTPMetrics enables request metrics when set
	HTTPMetrics *observability.HTTPMetrics
}

// Handler serves the wardrobe web UI and REST API
type Handler struct {
	service        wardrobe.Service
	logger         *observability.Logger
	tracer         trace.Tracer
	httpMetrics    *observability.HTTPMetrics
	maxRequestSize int64
	title          string
	accept         string
	version        string
	index          *template.Template
	static         fs.FS
	readiness      map[string]ReadinessCheck
}

// New creates the HTTP handler for service
func New(service wardrobe.Service, opts Options, logger *observability.Logger) (*Handler, error) {
	if service == nil {
		return nil, errors.New("wardrobe service cannot be nil")
	}
	if logger == nil {
		logger = observability.NewNopLogger()
	}

	index, err := assets.IndexTemplate()
	if err != nil {
		return nil, fmt.Errorf("failed to parse index template: %w", err)
	}

	h := &Handler{
		service:        service,
		logger:         logger.With("http"),
		tracer:         observability.GetTracer(),
		httpMetrics:    opts.HTTPMetrics,
		maxRequestSize: opts.MaxRequestSize,
		title:          opts.Title,
		accept:         "image/*",
		version:        opts.Version,
		index:          index,
		static:         assets.Static(),
		readiness:      make(map[string]ReadinessCheck),
	}
	if h.maxRequestSize <= 0 {
		h.maxRequestSize = defaultMaxRequestSize
	}
	if h.title == "" {
		h.title = defaultTitle
	}
	if len(opts.AllowedTypes) > 0 {
		h.accept = strings.Join(opts.AllowedTypes, ",")
	}

	return h, nil
}

// AddReadinessCheck registers a dependency probed by /readyz
func (h *Handler) AddReadinessCheck(name string, check ReadinessCheck) {
	if check != nil {
		h.readiness[name] = check
	}
}

// Routes builds the router
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(observability.TracingMiddleware(h.tracer))
	if h.httpMetrics != nil {
		r.Use(observability.MetricsMiddleware(h.httpMetrics))
	}

	r.Get("/healthz", h.healthzHandler)
	r.Get("/readyz", h.readyzHandler)

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(h.static)))

	r.Get("/", h.indexHandler)
	r.Get("/uploads/{filename}", h.serveUploadHandler)
	r.Post("/upload", h.uploadHandler)
	r.Get("/get_inventory", h.inventoryHandler)
	r.Post("/generate", h.generateHandler)

	return r
}

type indexPage struct {
	Title  string
	Accept string
}

func (h *Handler) indexHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.index.Execute(w, indexPage{Title: h.title, Accept: h.accept}); err != nil {
		h.logger.Error(r.Context()).Err(err).Msg("Failed to render index page")
	}
}

// requestLogger logs one line per request with zerolog
func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		event := h.logger.Info(r.Context())
		if status >= http.StatusInternalServerError {
			event = h.logger.Error(r.Context())
		}
		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("remote_addr", r.RemoteAddr).
			Msg("HTTP request")
	})
}
