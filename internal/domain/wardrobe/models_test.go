package wardrobe

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItem_Validate(t *testing.T) {
	tests := []struct {
		name          string
		item          *Item
		expectedError error
	}{
		{
			name: "valid item",
			item: &Item{
				ID:          1,
				Filename:    "tee_1a2b3c4d.jpg",
				StoragePath: "tee_1a2b3c4d.jpg",
				ContentType: "image/jpeg",
				FileSize:    2048,
				Category:    CategoryTop,
				Colors:      []string{"#112233", "#ffffff"},
				CreatedAt:   time.Now(),
			},
		},
		{
			name:          "empty filename",
			item:          &Item{Category: CategoryTop, Colors: FallbackColors},
			expectedError: ErrInvalidItem,
		},
		{
			name:          "filename with path separator",
			item:          &Item{Filename: "../etc/passwd", Category: CategoryTop, Colors: FallbackColors},
			expectedError: ErrInvalidItem,
		},
		{
			name:          "filename too long",
			item:          &Item{Filename: strings.Repeat("a", MaxFilenameLen+1), Category: CategoryTop, Colors: FallbackColors},
			expectedError: ErrInvalidItem,
		},
		{
			name:          "unknown category",
			item:          &Item{Filename: "hat.png", Category: "hat", Colors: FallbackColors},
			expectedError: ErrInvalidItem,
		},
		{
			name:          "no colours",
			item:          &Item{Filename: "hat.png", Category: CategoryOnePiece},
			expectedError: ErrInvalidItem,
		},
		{
			name:          "colour not hex",
			item:          &Item{Filename: "hat.png", Category: CategoryOnePiece, Colors: []string{"red"}},
			expectedError: ErrInvalidItem,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.item.Validate()
			if tt.expectedError == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.expectedError)
		})
	}
}

func TestItem_JSONView(t *testing.T) {
	// Given an item with server-side fields populated
	item := Item{
		ID:          7,
		Filename:    "boots_0badf00d.png",
		StoragePath: "boots_0badf00d.png",
		ContentType: "image/png",
		FileSize:    999,
		Category:    CategoryShoes,
		Colors:      []string{"#000000"},
		CreatedAt:   time.Now(),
	}

	// When it is serialised
	data, err := json.Marshal(item)
	require.NoError(t, err)

	// Then only the client view is exposed
	var view map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &view))
	assert.Len(t, view, 4)
	assert.Equal(t, float64(7), view["id"])
	assert.Equal(t, "boots_0badf00d.png", view["filename"])
	assert.Equal(t, "shoes", view["category"])
	assert.Equal(t, []interface{}{"#000000"}, view["colors"])
	assert.Equal(t, "/uploads/boots_0badf00d.png", item.URL())
}

func TestCategoryForLabel(t *testing.T) {
	expected := map[string]Category{
		"t-shirt":  CategoryTop,
		"hoodie":   CategoryTop,
		"jeans":    CategoryBottom,
		"skirt":    CategoryBottom,
		"dress":    CategoryOnePiece,
		"jumpsuit": CategoryOnePiece,
		"blazer":   CategoryOuterwear,
		"coat":     CategoryOuterwear,
		"heels":    CategoryShoes,
		"Sneakers": CategoryShoes,
		"scarf":    CategoryOnePiece,
		"":         CategoryOnePiece,
	}

	for label, category := range expected {
		t.Run(label, func(t *testing.T) {
			assert.Equal(t, category, CategoryForLabel(label))
		})
	}

	for _, label := range Labels {
		assert.True(t, CategoryForLabel(label).Valid(), "label %s maps to an invalid category", label)
	}
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory(" Outerwear ")
	require.NoError(t, err)
	assert.Equal(t, CategoryOuterwear, c)

	_, err = ParseCategory("accessory")
	assert.ErrorIs(t, err, ErrInvalidItem)
}

func TestWeather_Conditions(t *testing.T) {
	tests := []struct {
		name      string
		weather   Weather
		warm      bool
		cold      bool
		rainy     bool
		condition string
	}{
		{"hot and clear", Weather{Temp: 25, Description: "clear"}, true, false, false, "warm"},
		{"cold rain", Weather{Temp: 5, Description: "rain"}, false, true, true, "cold"},
		{"exactly 14 is casual", Weather{Temp: 14, Description: "clouds"}, false, false, false, "casual"},
		{"exactly 15 is casual", Weather{Temp: 15, Description: "drizzle"}, false, false, false, "casual"},
		{"between 14 and 15", Weather{Temp: 14.5, Description: "light rain"}, false, false, true, "casual"},
		{"just above 15", Weather{Temp: 15.01, Description: "Thunderstorm"}, true, false, false, "warm"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.warm, tt.weather.IsWarm())
			assert.Equal(t, tt.cold, tt.weather.IsCold())
			assert.Equal(t, tt.rainy, tt.weather.IsRainy())
			assert.Equal(t, tt.condition, tt.weather.Condition())
		})
	}
}

func TestOutfit_PiecesAndJSON(t *testing.T) {
	top := &Item{ID: 1, Filename: "tee.jpg", Category: CategoryTop, Colors: FallbackColors}
	shoes := &Item{ID: 2, Filename: "boots.jpg", Category: CategoryShoes, Colors: FallbackColors}
	coat := &Item{ID: 3, Filename: "coat.jpg", Category: CategoryOuterwear, Colors: FallbackColors}

	outfit := Outfit{Label: "Casual Outfit", Top: top, Shoes: shoes, Outerwear: coat}

	pieces := outfit.Pieces()
	require.Len(t, pieces, 3)
	assert.Equal(t, CategoryTop, pieces[0].Slot)
	assert.Equal(t, CategoryOuterwear, pieces[1].Slot)
	assert.Equal(t, CategoryShoes, pieces[2].Slot)

	data, err := json.Marshal(outfit)
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"bottom"`)
	assert.Contains(t, string(data), `"label":"Casual Outfit"`)
}

func TestFileError(t *testing.T) {
	failed := &FileError{Filename: "shirt.jpg", Err: errors.New("decode failed")}
	assert.Equal(t, "Failed to process file shirt.jpg.", failed.Error())

	unsupported := &FileError{Filename: "notes.txt", Err: ErrUnsupportedImage}
	assert.Equal(t, "Unsupported image type for file notes.txt.", unsupported.Error())
	assert.ErrorIs(t, unsupported, ErrUnsupportedImage)
}
