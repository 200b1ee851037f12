package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register gif decoder
	_ "image/jpeg" // register jpeg decoder
	_ "image/png"  // register png decoder
	"mime"
	"net/http"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register webp decoder

	"wardrobe/internal/domain/wardrobe"
)

// ImageProcessor validates and decodes uploaded photographs
type ImageProcessor struct {
	maxWidth  int
	maxHeight int
}

var _ wardrobe.ImageDecoder = (*ImageProcessor)(nil)

// NewImageProcessor creates a new image processor
func NewImageProcessor(maxWidth, maxHeight int) *ImageProcessor {
	if maxWidth <= 0 {
		maxWidth = 8000
	}
	if maxHeight <= 0 {
		maxHeight = 8000
	}

	return &ImageProcessor{
		maxWidth:  maxWidth,
		maxHeight: maxHeight,
	}
}

// DetectContentType prefers the declared part header when it names an image
// type and falls back to sniffing the leading bytes.
func (p *ImageProcessor) DetectContentType(declared string, data []byte) string {
	if mediaType, _, err := mime.ParseMediaType(declared); err == nil {
		mediaType = normalizeContentType(mediaType)
		if strings.HasPrefix(mediaType, "image/") {
			return mediaType
		}
	}

	sniffed := http.DetectContentType(data)
	if mediaType, _, err := mime.ParseMediaType(sniffed); err == nil {
		return normalizeContentType(mediaType)
	}
	return sniffed
}

// Decode decodes image bytes. Non-image content types give
// wardrobe.ErrUnsupportedImage; corrupt or oversized images give a plain error.
func (p *ImageProcessor) Decode(ctx context.Context, data []byte, contentType string) (image.Image, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("%w: %s", wardrobe.ErrUnsupportedImage, contentType)
	}
	if len(data) == 0 {
		return nil, errors.New("image data is empty")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("invalid image data: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("invalid image dimensions: %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.Width > p.maxWidth || cfg.Height > p.maxHeight {
		return nil, fmt.Errorf("image dimensions %dx%d exceed maximum allowed %dx%d",
			cfg.Width, cfg.Height, p.maxWidth, p.maxHeight)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

func normalizeContentType(ct string) string {
	ct = strings.ToLower(strings.TrimSpace(ct))
	if ct == "image/jpg" || ct == "image/pjpeg" {
		return "image/jpeg"
	}
	return ct
}

// downscale returns an NRGBA copy of img whose longest side is at most maxSide
func downscale(img image.Image, maxSide int) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	scale := 1.0
	if w > maxSide || h > maxSide {
		sx := float64(maxSide) / float64(w)
		sy := float64(maxSide) / float64(h)
		scale = sx
		if sy < sx {
			scale = sy
		}
	}

	dw := max(1, int(float64(w)*scale))
	dh := max(1, int(float64(h)*scale))
	dst := image.NewNRGBA(image.Rect(0, 0, dw, dh))

	if scale == 1.0 {
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
		return dst
	}

	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
