package client

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestCollectImages(t *testing.T) {
	dir := t.TempDir()
	data := pngBytes(t)

	tee := writeFile(t, dir, "tee.png", data)
	noExt := writeFile(t, dir, "scan", data)
	notes := writeFile(t, dir, "notes.txt", []byte("hello"))

	images, err := CollectImages([]string{tee, notes, noExt})
	require.NoError(t, err)
	require.Len(t, images, 2)

	assert.Equal(t, "tee.png", images[0].Name)
	assert.Equal(t, "image/png", images[0].ContentType)
	assert.Equal(t, data, images[0].Data)

	// No extension, detected from content
	assert.Equal(t, "scan", images[1].Name)
	assert.Equal(t, "image/png", images[1].ContentType)
}

func TestCollectImages_Directory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.png", pngBytes(t))
	writeFile(t, dir, "b.txt", []byte("text"))
	writeFile(t, dir, ".hidden.png", pngBytes(t))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o700))

	images, err := CollectImages([]string{dir})
	require.NoError(t, err)
	require.Len(t, images, 1)
	assert.Equal(t, "a.png", images[0].Name)
}

func TestCollectImages_NoImages(t *testing.T) {
	dir := t.TempDir()
	notes := writeFile(t, dir, "notes.txt", []byte("hello"))

	_, err := CollectImages([]string{notes})
	assert.ErrorIs(t, err, ErrNoImages)

	_, err = CollectImages(nil)
	assert.ErrorIs(t, err, ErrNoImages)
}

func TestCollectImages_MissingFile(t *testing.T) {
	_, err := CollectImages([]string{filepath.Join(t.TempDir(), "missing.png")})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoImages)
}

func TestImageContentType(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     []byte
		expected string
	}{
		{name: "jpeg by extension", filename: "a.JPG", data: nil, expected: "image/jpeg"},
		{name: "webp by extension", filename: "a.webp", data: nil, expected: "image/webp"},
		{name: "text", filename: "a.txt", data: []byte("plain text"), expected: ""},
		{name: "gif by content", filename: "a.bin", data: []byte("GIF89a......"), expected: "image/gif"},
		{name: "empty", filename: "a", data: nil, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, imageContentType(tt.filename, tt.data))
		})
	}
}

func TestEncodeUpload(t *testing.T) {
	body, contentType, err := encodeUpload([]ImageFile{
		{Name: "a.png", ContentType: "image/png", Data: []byte("A")},
		{Name: "b.gif", ContentType: "image/gif", Data: []byte("B")},
	})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, "/upload", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", contentType)

	mr, err := req.MultipartReader()
	require.NoError(t, err)

	var names []string
	for {
		part, err := mr.NextPart()
		if err != nil {
			break
		}
		assert.Equal(t, "files", part.FormName())
		names = append(names, part.FileName())
		_ = part.Close()
	}
	assert.Equal(t, []string{"a.png", "b.gif"}, names)

}
