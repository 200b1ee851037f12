// Package classifier assigns garment labels to clothing photographs.
package classifier

import (
	"context"
	"errors"
	"fmt"
	"image"
	"slices"
	"strings"

	"google.golang.org/genai"

	"wardrobe/internal/config"
	"wardrobe/internal/domain/wardrobe"
	"wardrobe/internal/observability"
)

const (
	defaultGeminiModel = "gemini-2.5-flash"
	enumMIMEType       = "text/x.enum"
	classifyPrompt     = "Classify the single clothing item in this photograph. " +
		"Answer with exactly one garment label."
)

// contentGenerator is the subset of *genai.Models used for classification
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiClassifier asks Gemini to pick one of wardrobe.Labels for a photograph
type GeminiClassifier struct {
	models contentGenerator
	model  string
	logger *observability.Logger
}

var _ wardrobe.Classifier = (*GeminiClassifier)(nil)

// NewGeminiClassifier creates a Gemini-backed classifier
func NewGeminiClassifier(ctx context.Context, cfg config.ClassifierConfig, logger *observability.Logger) (*GeminiClassifier, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, errors.New("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return newGeminiClassifier(client.Models, cfg.Model, logger), nil
}

func newGeminiClassifier(models contentGenerator, model string, logger *observability.Logger) *GeminiClassifier {
	if model == "" {
		model = defaultGeminiModel
	}
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &GeminiClassifier{
		models: models,
		model:  model,
		logger: logger.With("classifier"),
	}
}

// Classify sends the image bytes with an enum response schema
func (g *GeminiClassifier) Classify(ctx context.Context, file wardrobe.UploadFile, _ image.Image) (wardrobe.Classification, error) {
	if len(file.Data) == 0 {
		return wardrobe.Classification{}, errors.New("image data is empty")
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(file.Data, file.ContentType),
			genai.NewPartFromText(classifyPrompt),
		}, genai.RoleUser),
	}

	resp, err := g.models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0),
		ResponseMIMEType: enumMIMEType,
		ResponseSchema: &genai.Schema{
			Type: genai.TypeString,
			Enum: slices.Clone(wardrobe.Labels),
		},
	})
	if err != nil {
		return wardrobe.Classification{}, fmt.Errorf("gemini classification failed: %w", err)
	}
	if resp == nil {
		return wardrobe.Classification{}, errors.New("gemini returned no response")
	}

	label := normalizeLabel(resp.Text())
	if !slices.Contains(wardrobe.Labels, label) {
		g.logger.Warn(ctx).
			Str("filename", file.Filename).
			Str("answer", label).
			Msg("Gemini answered with an unknown label")
	}

	return wardrobe.Classification{
		Label:    label,
		Category: wardrobe.CategoryForLabel(label),
	}, nil
}

func normalizeLabel(answer string) string {
	return strings.ToLower(strings.Trim(strings.TrimSpace(answer), `"'.`))
}

// New selects the classifier named by cfg.Provider
func New(ctx context.Context, cfg config.ClassifierConfig, logger *observability.Logger) (wardrobe.Classifier, error) {
	switch cfg.Provider {
	case config.ClassifierGemini:
		return NewGeminiClassifier(ctx, cfg, logger)
	case config.ClassifierKeyword, "":
		return NewKeywordClassifier(), nil
	default:
		return nil, fmt.Errorf("unknown classifier provider %q", cfg.Provider)
	}
}
