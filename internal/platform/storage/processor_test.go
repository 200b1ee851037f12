package storage

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wardrobe/internal/domain/wardrobe"
)

func solidImage(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestImageProcessor_DetectContentType(t *testing.T) {
	p := NewImageProcessor(0, 0)
	pngData := encodePNG(t, solidImage(2, 2, color.White))

	tests := []struct {
		name     string
		declared string
		data     []byte
		expected string
	}{
		{"declared image type wins", "image/webp", pngData, "image/webp"},
		{"jpg alias normalised", "image/jpg", pngData, "image/jpeg"},
		{"parameters stripped", "image/png; name=shirt.png", pngData, "image/png"},
		{"octet-stream is sniffed", "application/octet-stream", pngData, "image/png"},
		{"missing header is sniffed", "", pngData, "image/png"},
		{"text is not an image", "", []byte("hello wardrobe"), "text/plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, p.DetectContentType(tt.declared, tt.data))
		})
	}
}

func TestImageProcessor_Decode(t *testing.T) {
	ctx := context.Background()
	p := NewImageProcessor(0, 0)
	src := solidImage(8, 4, color.NRGBA{R: 200, G: 10, B: 10, A: 255})

	t.Run("png", func(t *testing.T) {
		img, err := p.Decode(ctx, encodePNG(t, src), "image/png")

		require.NoError(t, err)
		assert.Equal(t, 8, img.Bounds().Dx())
		assert.Equal(t, 4, img.Bounds().Dy())
	})

	t.Run("jpeg", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, jpeg.Encode(&buf, src, &jpeg.Options{Quality: 90}))

		img, err := p.Decode(ctx, buf.Bytes(), "image/jpeg")

		require.NoError(t, err)
		assert.Equal(t, 8, img.Bounds().Dx())
	})

	t.Run("gif", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, gif.Encode(&buf, src, nil))

		_, err := p.Decode(ctx, buf.Bytes(), "image/gif")

		assert.NoError(t, err)
	})

	t.Run("non-image content type", func(t *testing.T) {
		_, err := p.Decode(ctx, []byte("%PDF-1.4"), "application/pdf")

		assert.ErrorIs(t, err, wardrobe.ErrUnsupportedImage)
	})

	t.Run("corrupt image is not unsupported", func(t *testing.T) {
		_, err := p.Decode(ctx, []byte("definitely not a png"), "image/png")

		require.Error(t, err)
		assert.NotErrorIs(t, err, wardrobe.ErrUnsupportedImage)
	})

	t.Run("empty data", func(t *testing.T) {
		_, err := p.Decode(ctx, nil, "image/png")

		assert.Error(t, err)
	})

	t.Run("dimensions over the limit", func(t *testing.T) {
		small := NewImageProcessor(4, 4)

		_, err := small.Decode(ctx, encodePNG(t, src), "image/png")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "exceed maximum")
	})

	t.Run("cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := p.Decode(cancelled, encodePNG(t, src), "image/png")

		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestDownscale(t *testing.T) {
	t.Run("keeps small images as is", func(t *testing.T) {
		out := downscale(solidImage(10, 20, color.Black), 64)

		assert.Equal(t, image.Rect(0, 0, 10, 20), out.Bounds())
	})

	t.Run("preserves aspect ratio", func(t *testing.T) {
		out := downscale(solidImage(256, 128, color.Black), 64)

		assert.Equal(t, 64, out.Bounds().Dx())
		assert.Equal(t, 32, out.Bounds().Dy())
	})

	t.Run("never collapses to zero", func(t *testing.T) {
		out := downscale(solidImage(1000, 2, color.Black), 64)

		assert.Equal(t, 64, out.Bounds().Dx())
		assert.Equal(t, 1, out.Bounds().Dy())
	})
}
