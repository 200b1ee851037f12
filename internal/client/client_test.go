package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wardrobe/internal/domain/wardrobe"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return c
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{name: "http", url: "http://localhost:8080"},
		{name: "trailing slash", url: "https://wardrobe.example.com/"},
		{name: "no scheme", url: "localhost:8080", wantErr: true},
		{name: "ftp", url: "ftp://example.com", wantErr: true},
		{name: "empty", url: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.False(t, strings.HasSuffix(c.baseURL, "/"))
		})
	}
}

func TestClient_Upload(t *testing.T) {
	// Given
	var gotRequestID string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/upload", r.URL.Path)
		gotRequestID = r.Header.Get(requestIDHeader)

		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		parts := r.MultipartForm.File["files"]
		if !assert.Len(t, parts, 2) {
			return
		}
		assert.Equal(t, "tee.png", parts[0].Filename)
		assert.Equal(t, "image/png", parts[0].Header.Get("Content-Type"))
		assert.Equal(t, `my "jeans".jpg`, parts[1].Filename)

		f, err := parts[0].Open()
		if assert.NoError(t, err) {
			data, _ := io.ReadAll(f)
			assert.Equal(t, "png-bytes", string(data))
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message": "Files uploaded and processed successfully!", "items": [
			{"id": 7, "filename": "tee_0badf00d.png", "category": "top", "colors": ["#ffffff"]}
		]}`))
	})

	// When
	result, err := c.Upload(context.Background(), []ImageFile{
		{Name: "tee.png", ContentType: "image/png", Data: []byte("png-bytes")},
		{Name: `my "jeans".jpg`, ContentType: "image/jpeg", Data: []byte("jpeg-bytes")},
	})

	// Then
	require.NoError(t, err)
	assert.Equal(t, wardrobe.UploadSuccessMessage, result.Message)
	require.Len(t, result.Items, 1)
	assert.Equal(t, 7, result.Items[0].ID)
	assert.Equal(t, wardrobe.CategoryTop, result.Items[0].Category)
	assert.Len(t, gotRequestID, 36)
}

func TestClient_Upload_NoFiles(t *testing.T) {
	c, err := New("http://localhost:8080")
	require.NoError(t, err)

	_, err = c.Upload(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoImages)
	assert.Equal(t, "Please select image files only.", err.Error())
}

func TestClient_Upload_Errors(t *testing.T) {
	tests := []struct {
		name            string
		status          int
		body            string
		expectedMessage string
	}{
		{
			name:            "server message",
			status:          http.StatusInternalServerError,
			body:            `{"error": "Failed to process file tee.png."}`,
			expectedMessage: "Failed to process file tee.png.",
		},
		{
			name:            "no message",
			status:          http.StatusBadGateway,
			body:            `<html>bad gateway</html>`,
			expectedMessage: "Upload failed",
		},
		{
			name:            "empty error field",
			status:          http.StatusBadRequest,
			body:            `{"error": ""}`,
			expectedMessage: "Upload failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := c.Upload(context.Background(), []ImageFile{{Name: "tee.png", ContentType: "image/png", Data: []byte("x")}})

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.expectedMessage, apiErr.Error())
		})
	}
}

func TestClient_Inventory(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/get_inventory", r.URL.Path)
		_, _ = w.Write([]byte(`[
			{"id": 1, "filename": "tee.png", "category": "top", "colors": ["#ffffff"]},
			{"id": 2, "filename": "boots.png", "category": "shoes", "colors": ["#000000", "#5a3b22"]}
		]`))
	})

	items, err := c.Inventory(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "boots.png", items[1].Filename)
	assert.Equal(t, []string{"#000000", "#5a3b22"}, items[1].Colors)
	assert.Equal(t, c.baseURL+"/uploads/boots.png", c.ImageURL(items[1]))
}

func TestClient_Inventory_NullBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`null`))
	})

	items, err := c.Inventory(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestClient_Generate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/generate", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]string{"city": "Oslo"}, body)

		_, _ = w.Write([]byte(`{
			"weather": {"city": "Oslo", "temp": 3.2, "description": "rain"},
			"outfits": [{"label": "Outfit for Cold Weather (Don't forget an umbrella!)",
				"top": {"id": 1, "filename": "sweater.png", "category": "top", "colors": ["#808080"]},
				"outerwear": {"id": 4, "filename": "coat.png", "category": "outerwear", "colors": ["#000000"]}}]
		}`))
	})

	result, err := c.Generate(context.Background(), "  Oslo ")
	require.NoError(t, err)
	assert.Equal(t, wardrobe.Weather{City: "Oslo", Temp: 3.2, Description: "rain"}, result.Weather)
	require.Len(t, result.Outfits, 1)
	assert.NotNil(t, result.Outfits[0].Outerwear)
	assert.Nil(t, result.Outfits[0].Bottom)
}

func TestClient_Generate_Errors(t *testing.T) {
	t.Run("empty city is rejected locally", func(t *testing.T) {
		called := false
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) { called = true })

		_, err := c.Generate(context.Background(), "   ")
		assert.ErrorIs(t, err, ErrCityRequired)
		assert.Equal(t, "Please enter a city.", err.Error())
		assert.False(t, called)
	})

	t.Run("weather not found", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error": "Could not get weather for Atlantis."}`))
		})

		_, err := c.Generate(context.Background(), "Atlantis")
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
		assert.Equal(t, "Could not get weather for Atlantis.", apiErr.Message)
	})

	t.Run("fallback message", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		_, err := c.Generate(context.Background(), "Paris")
		assert.EqualError(t, err, "Failed to generate outfits.")
	})
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	_, err = c.Inventory(context.Background())
	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}
