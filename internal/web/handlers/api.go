package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"wardrobe/internal/domain/wardrobe"
)

const (
	noFilePartMessage   = "No file part"
	cityRequiredMessage = "City is required"
)

// ErrorResponse is the body of every failed API call
type ErrorResponse struct {
	Error string `json:"error"`
}

type generateRequest struct {
	City string `json:"city"`
}

// inventoryHandler handles GET /get_inventory
func (h *Handler) inventoryHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	items, err := h.service.Inventory(ctx)
	if err != nil {
		h.logger.Error(ctx).Err(err).Msg("Failed to load inventory")
		status, message := errorResponse(err)
		writeError(w, status, message)
		return
	}

	if items == nil {
		items = []wardrobe.Item{}
	}
	writeJSON(w, http.StatusOK, items)
}

// generateHandler handles POST /generate with a JSON {"city": ...} body
func (h *Handler) generateHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GenerateOutfits", trace.WithSpanKind(trace.SpanKindServer))
	defer span.End()

	var req generateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBodySize)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request body")
		writeError(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	span.SetAttributes(attribute.String("weather.city", req.City))

	result, err := h.service.Generate(ctx, req.City)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generate failed")
		if errors.Is(err, wardrobe.ErrWeatherUnavailable) {
			h.logger.Warn(ctx).Err(err).Str("city", req.City).Msg("Weather lookup failed")
			writeError(w, http.StatusNotFound, fmt.Sprintf("Could not get weather for %s.", req.City))
			return
		}
		status, message := errorResponse(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error(ctx).Err(err).Str("city", req.City).Msg("Failed to generate outfits")
		}
		writeError(w, status, message)
		return
	}

	span.SetAttributes(attribute.Int("outfits.count", len(result.Outfits)))
	writeJSON(w, http.StatusOK, result)
}

// serveUploadHandler streams a stored photograph
func (h *Handler) serveUploadHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filename := chi.URLParam(r, "filename")

	rc, item, err := h.service.OpenImage(ctx, filename)
	if err != nil {
		status, message := errorResponse(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error(ctx).Err(err).Str("filename", filename).Msg("Failed to open stored image")
		}
		writeError(w, status, message)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", item.ContentType)
	if item.FileSize > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(item.FileSize, 10))
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn(ctx).Err(err).Str("filename", filename).Msg("Failed to stream stored image")
	}
}

// errorResponse maps a service error to a status code and client message
func errorResponse(err error) (int, string) {
	var fileErr *wardrobe.FileError
	switch {
	case errors.As(err, &fileErr):
		if errors.Is(fileErr, wardrobe.ErrUnsupportedImage) {
			return http.StatusBadRequest, fileErr.Error()
		}
		return http.StatusInternalServerError, fileErr.Error()
	case errors.Is(err, wardrobe.ErrNoFiles):
		return http.StatusBadRequest, noFilePartMessage
	case errors.Is(err, wardrobe.ErrCityRequired):
		return http.StatusBadRequest, cityRequiredMessage
	case errors.Is(err, wardrobe.ErrItemNotFound):
		return http.StatusNotFound, "Not found"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
