package implementations

import (
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"wardrobe/internal/domain/wardrobe"
)

// OutfitsPerRequest is how many outfits a recommendation produces
const OutfitsPerRequest = 3

// Outfit labels
const (
	LabelCasual    = "Casual Outfit"
	LabelWarm      = "Outfit for Warm Weather"
	LabelCold      = "Outfit for Cold Weather"
	UmbrellaNotice = " (Don't forget an umbrella!)"
)

// RandomRecommender picks random pieces per slot following the weather rules
type RandomRecommender struct {
	mu  sync.Mutex
	rng *rand.Rand
}

var _ wardrobe.Recommender = (*RandomRecommender)(nil)

// NewRecommender creates a recommender. A nil source is seeded from the clock.
func NewRecommender(src rand.Source) *RandomRecommender {
	if src == nil {
		seed := uint64(time.Now().UnixNano())
		src = rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	}
	return &RandomRecommender{rng: rand.New(src)}
}

// Recommend returns OutfitsPerRequest outfits, or none when the inventory
// lacks a top, a bottom or a pair of shoes.
func (r *RandomRecommender) Recommend(items []wardrobe.Item, weather wardrobe.Weather) []wardrobe.Outfit {
	byCategory := make(map[wardrobe.Category][]*wardrobe.Item)
	for i := range items {
		item := items[i]
		byCategory[item.Category] = append(byCategory[item.Category], &item)
	}

	tops := byCategory[wardrobe.CategoryTop]
	bottoms := byCategory[wardrobe.CategoryBottom]
	shoes := byCategory[wardrobe.CategoryShoes]
	outerwear := byCategory[wardrobe.CategoryOuterwear]

	if len(tops) == 0 || len(bottoms) == 0 || len(shoes) == 0 {
		return []wardrobe.Outfit{}
	}

	var jackets []*wardrobe.Item
	for _, item := range outerwear {
		if strings.Contains(strings.ToLower(item.Filename), "jacket") {
			jackets = append(jackets, item)
		}
	}

	label := outfitLabel(weather)

	r.mu.Lock()
	defer r.mu.Unlock()

	outfits := make([]wardrobe.Outfit, 0, OutfitsPerRequest)
	for i := 0; i < OutfitsPerRequest; i++ {
		outfit := wardrobe.Outfit{
			Label:  label,
			Top:    r.pick(tops),
			Bottom: r.pick(bottoms),
			Shoes:  r.pick(shoes),
		}

		switch {
		case weather.IsCold() && len(outerwear) > 0:
			outfit.Outerwear = r.pick(outerwear)
		case weather.IsRainy() && len(jackets) > 0:
			outfit.Outerwear = r.pick(jackets)
		case weather.IsRainy() && len(outerwear) > 0:
			outfit.Outerwear = r.pick(outerwear)
		}

		outfits = append(outfits, outfit)
	}

	return outfits
}

func (r *RandomRecommender) pick(items []*wardrobe.Item) *wardrobe.Item {
	return items[r.rng.IntN(len(items))]
}

func outfitLabel(weather wardrobe.Weather) string {
	label := LabelCasual
	switch {
	case weather.IsWarm():
		label = LabelWarm
	case weather.IsCold():
		label = LabelCold
	}
	if weather.IsRainy() {
		label += UmbrellaNotice
	}
	return label
}
