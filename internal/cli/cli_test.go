package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"wardrobe/internal/client"
	"wardrobe/internal/domain/wardrobe"
	"wardrobe/internal/observability"
)

// MockAPI is a mock implementation of API
type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) Upload(ctx context.Context, files []client.ImageFile) (*wardrobe.UploadResult, error) {
	args := m.Called(ctx, files)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wardrobe.UploadResult), args.Error(1)
}

func (m *MockAPI) Inventory(ctx context.Context) ([]wardrobe.Item, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]wardrobe.Item), args.Error(1)
}

func (m *MockAPI) Generate(ctx context.Context, city string) (*wardrobe.GenerateResult, error) {
	args := m.Called(ctx, city)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wardrobe.GenerateResult), args.Error(1)
}

func (m *MockAPI) ImageURL(item wardrobe.Item) string {
	return "http://wardrobe.test" + item.URL()
}

type result struct {
	code   int
	stdout string
	stderr string
	server string
}

func run(t *testing.T, api *MockAPI, args ...string) result {
	t.Helper()

	var server string
	cmd := NewRootCommand(Config{
		NewAPI: func(serverURL string, _ *observability.Logger) (API, error) {
			server = serverURL
			return api, nil
		},
	})

	var stdout, stderr bytes.Buffer
	code := Execute(context.Background(), cmd, args, &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String(), server: server}
}

func TestNewRootCommand_Structure(t *testing.T) {
	cmd := NewRootCommand(Config{})

	assert.Equal(t, "wardrobe", cmd.Use)
	assert.NotNil(t, cmd.PersistentFlags().Lookup("server"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("log-level"))

	uses := make([]string, 0, len(cmd.Commands()))
	for _, sub := range cmd.Commands() {
		uses = append(uses, sub.Name())
	}
	assert.ElementsMatch(t, []string{"upload", "inventory", "generate"}, uses)
}

func TestServerFlag(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		t.Setenv(serverEnv, "")
		api := &MockAPI{}
		api.On("Inventory", mock.Anything).Return([]wardrobe.Item{}, nil)

		res := run(t, api, "inventory")
		assert.Equal(t, 0, res.code)
		assert.Equal(t, defaultServer, res.server)
	})

	t.Run("from environment", func(t *testing.T) {
		t.Setenv(serverEnv, "http://closet:9000")
		api := &MockAPI{}
		api.On("Inventory", mock.Anything).Return([]wardrobe.Item{}, nil)

		res := run(t, api, "inventory")
		assert.Equal(t, "http://closet:9000", res.server)
	})

	t.Run("flag wins", func(t *testing.T) {
		t.Setenv(serverEnv, "http://closet:9000")
		api := &MockAPI{}
		api.On("Inventory", mock.Anything).Return([]wardrobe.Item{}, nil)

		res := run(t, api, "--server", "http://other:1234", "inventory")
		assert.Equal(t, "http://other:1234", res.server)
	})
}

func TestInventoryCommand(t *testing.T) {
	api := &MockAPI{}
	api.On("Inventory", mock.Anything).Return([]wardrobe.Item{
		{ID: 1, Filename: "tee.png", Category: wardrobe.CategoryTop, Colors: []string{"#ffffff"}},
	}, nil)

	res := run(t, api, "inventory")

	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "http://wardrobe.test/uploads/tee.png")
	assert.Contains(t, res.stdout, "top")
}

func TestUploadCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tee.gif")
	require.NoError(t, os.WriteFile(path, []byte("GIF89a-not-really"), 0o600))

	t.Run("uploads images", func(t *testing.T) {
		api := &MockAPI{}
		api.On("Upload", mock.Anything, mock.MatchedBy(func(files []client.ImageFile) bool {
			return len(files) == 1 && files[0].Name == "tee.gif" && files[0].ContentType == "image/gif"
		})).Return(&wardrobe.UploadResult{
			Message: wardrobe.UploadSuccessMessage,
			Items:   []wardrobe.Item{{ID: 3, Filename: "tee_12345678.gif", Category: wardrobe.CategoryTop}},
		}, nil)

		res := run(t, api, "upload", path)

		require.Equal(t, 0, res.code, res.stderr)
		assert.Contains(t, res.stdout, "Uploading 1 item(s)...")
		assert.Contains(t, res.stdout, wardrobe.UploadSuccessMessage)
		assert.Contains(t, res.stdout, "tee_12345678.gif")
		api.AssertExpectations(t)
	})

	t.Run("no images", func(t *testing.T) {
		notes := filepath.Join(dir, "notes.txt")
		require.NoError(t, os.WriteFile(notes, []byte("hello"), 0o600))
		api := &MockAPI{}

		res := run(t, api, "upload", notes)

		assert.Equal(t, 1, res.code)
		assert.Contains(t, res.stderr, "Error: Please select image files only.")
		api.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
	})

	t.Run("server error message", func(t *testing.T) {
		api := &MockAPI{}
		api.On("Upload", mock.Anything, mock.Anything).
			Return(nil, &client.APIError{StatusCode: 500, Message: "Failed to process file tee.gif."})

		res := run(t, api, "upload", path)

		assert.Equal(t, 1, res.code)
		assert.Contains(t, res.stderr, "Error: Failed to process file tee.gif.")
	})

	t.Run("requires a path", func(t *testing.T) {
		res := run(t, &MockAPI{}, "upload")
		assert.Equal(t, 1, res.code)
	})
}

func TestGenerateCommand(t *testing.T) {
	outfits := &wardrobe.GenerateResult{
		Weather: wardrobe.Weather{City: "Paris", Temp: 21, Description: "clear"},
		Outfits: []wardrobe.Outfit{},
	}

	t.Run("city flag", func(t *testing.T) {
		api := &MockAPI{}
		api.On("Generate", mock.Anything, "Paris").Return(outfits, nil)

		res := run(t, api, "generate", "--city", "Paris")

		require.Equal(t, 0, res.code, res.stderr)
		assert.Contains(t, res.stdout, "Paris: 21°C, clear")
		assert.Contains(t, res.stdout, "Couldn't generate outfits.")
	})

	t.Run("positional city", func(t *testing.T) {
		api := &MockAPI{}
		api.On("Generate", mock.Anything, "New York").Return(outfits, nil)

		res := run(t, api, "generate", "New York")
		assert.Equal(t, 0, res.code, res.stderr)
		api.AssertExpectations(t)
	})

	t.Run("missing city", func(t *testing.T) {
		api := &MockAPI{}
		api.On("Generate", mock.Anything, "").Return(nil, client.ErrCityRequired)

		res := run(t, api, "generate")
		assert.Equal(t, 1, res.code)
		assert.Contains(t, res.stderr, "Error: Please enter a city.")
	})

	t.Run("transport failure", func(t *testing.T) {
		api := &MockAPI{}
		api.On("Generate", mock.Anything, "Paris").Return(nil, errors.New("connection refused"))

		res := run(t, api, "generate", "-c", "Paris")
		assert.Equal(t, 1, res.code)
		assert.Contains(t, res.stderr, "Error: connection refused")
	})
}
