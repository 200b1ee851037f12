package classifier

import (
	"context"
	"image"
	"path/filepath"
	"sort"
	"strings"

	"wardrobe/internal/domain/wardrobe"
)

// synonyms maps common filename words onto known labels
var synonyms = map[string]string{
	"tee":      "t-shirt",
	"tshirt":   "t-shirt",
	"jumper":   "sweater",
	"pullover": "sweater",
	"trousers": "pants",
	"chinos":   "pants",
	"denim":    "jeans",
	"parka":    "coat",
	"raincoat": "coat",
	"sneaker":  "sneakers",
	"trainers": "sneakers",
	"boot":     "boots",
	"sandal":   "sandals",
	"romper":   "jumpsuit",
}

// KeywordClassifier labels a photograph by the garment words in its filename
type KeywordClassifier struct {
	keywords []keyword
}

type keyword struct {
	word  string
	label string
}

var _ wardrobe.Classifier = (*KeywordClassifier)(nil)

// NewKeywordClassifier builds a classifier over wardrobe.Labels and common synonyms
func NewKeywordClassifier() *KeywordClassifier {
	keywords := make([]keyword, 0, len(wardrobe.Labels)+len(synonyms))
	for _, label := range wardrobe.Labels {
		keywords = append(keywords, keyword{word: label, label: label})
	}
	for word, label := range synonyms {
		keywords = append(keywords, keyword{word: word, label: label})
	}

	// Longest first so "t-shirt" wins over "shirt"
	sort.Slice(keywords, func(i, j int) bool {
		if len(keywords[i].word) != len(keywords[j].word) {
			return len(keywords[i].word) > len(keywords[j].word)
		}
		return keywords[i].word < keywords[j].word
	})

	return &KeywordClassifier{keywords: keywords}
}

// Classify never fails; unmatched names are one-piece
func (k *KeywordClassifier) Classify(_ context.Context, file wardrobe.UploadFile, _ image.Image) (wardrobe.Classification, error) {
	label := k.Match(file.Filename)
	return wardrobe.Classification{
		Label:    label,
		Category: wardrobe.CategoryForLabel(label),
	}, nil
}

// Match returns the longest known garment word in filename, or ""
func (k *KeywordClassifier) Match(filename string) string {
	name := strings.ToLower(strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)))
	name = strings.NewReplacer("_", " ", ".", " ").Replace(name)

	for _, kw := range k.keywords {
		if strings.Contains(name, kw.word) {
			return kw.label
		}
	}
	return ""
}
