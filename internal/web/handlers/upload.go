package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"wardrobe/internal/domain/wardrobe"
)

const uploadField = "files"

// uploadHandler handles POST /upload with one or more "files" parts
func (h *Handler) uploadHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UploadItems", trace.WithSpanKind(trace.SpanKindServer))
	defer span.End()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxRequestSize)

	if err := r.ParseMultipartForm(maxMemoryPerUpload); err != nil {
		span.RecordError(err)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			span.SetStatus(codes.Error, "request too large")
			h.logger.Warn(ctx).Int64("limit", tooLarge.Limit).Msg("Upload request too large")
			writeError(w, http.StatusRequestEntityTooLarge, "Upload is too large.")
			return
		}
		span.SetStatus(codes.Error, "no multipart form")
		h.logger.Warn(ctx).Err(err).Msg("Upload request without multipart form")
		writeError(w, http.StatusBadRequest, noFilePartMessage)
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll() //nolint:errcheck // Cleanup operation
	}()

	files, err := readUploadFiles(r.MultipartForm)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read upload")
		h.logger.Error(ctx).Err(err).Msg("Failed to read uploaded files")
		writeError(w, http.StatusBadRequest, "Failed to read uploaded files.")
		return
	}

	span.SetAttributes(attribute.Int("upload.file_count", len(files)))

	result, err := h.service.Upload(ctx, files)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upload failed")
		status, message := errorResponse(err)
		writeError(w, status, message)
		return
	}

	span.SetAttributes(attribute.Int("upload.item_count", len(result.Items)))
	span.SetStatus(codes.Ok, "upload processed")

	if result.Items == nil {
		result.Items = []wardrobe.Item{}
	}
	writeJSON(w, http.StatusOK, result)
}

// readUploadFiles collects the "files" parts in request order. A file input
// submitted without a selection arrives as a value part with an empty file
// name; it is passed on so the service can skip it.
func readUploadFiles(form *multipart.Form) ([]wardrobe.UploadFile, error) {
	headers := form.File[uploadField]
	if len(headers) == 0 {
		if _, ok := form.Value[uploadField]; ok {
			return []wardrobe.UploadFile{{}}, nil
		}
		return nil, nil
	}

	files := make([]wardrobe.UploadFile, 0, len(headers))
	for _, fh := range headers {
		data, err := readPart(fh)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", fh.Filename, err)
		}
		files = append(files, wardrobe.UploadFile{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return files, nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}
