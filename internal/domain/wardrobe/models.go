package wardrobe

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// Category is the coarse garment slot an item fills in an outfit
type Category string

const (
	CategoryTop       Category = "top"
	CategoryBottom    Category = "bottom"
	CategoryOuterwear Category = "outerwear"
	CategoryShoes     Category = "shoes"
	CategoryOnePiece  Category = "one-piece"
)

// Categories lists every category in outfit display order
var Categories = []Category{CategoryTop, CategoryBottom, CategoryOuterwear, CategoryShoes, CategoryOnePiece}

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string {
	return string(c)
}

// ParseCategory converts a stored category string back into a Category
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: unknown category %q", ErrInvalidItem, s)
	}
	return c, nil
}

// Labels are the fine-grained garment names a classifier chooses from
var Labels = []string{
	"t-shirt", "shirt", "blouse", "sweater", "cardigan", "hoodie",
	"jeans", "pants", "shorts", "skirt",
	"dress", "jumpsuit",
	"jacket", "coat", "blazer",
	"sneakers", "boots", "sandals", "heels",
}

var labelCategories = map[string]Category{
	"t-shirt":  CategoryTop,
	"shirt":    CategoryTop,
	"blouse":   CategoryTop,
	"sweater":  CategoryTop,
	"cardigan": CategoryTop,
	"hoodie":   CategoryTop,
	"jeans":    CategoryBottom,
	"pants":    CategoryBottom,
	"shorts":   CategoryBottom,
	"skirt":    CategoryBottom,
	"jacket":   CategoryOuterwear,
	"coat":     CategoryOuterwear,
	"blazer":   CategoryOuterwear,
	"sneakers": CategoryShoes,
	"boots":    CategoryShoes,
	"sandals":  CategoryShoes,
	"heels":    CategoryShoes,
}

// CategoryForLabel maps a garment label to its category. Dresses,
// jumpsuits and anything unrecognised are one-piece.
func CategoryForLabel(label string) Category {
	if c, ok := labelCategories[strings.ToLower(strings.TrimSpace(label))]; ok {
		return c
	}
	return CategoryOnePiece
}

// Item is a stored clothing photograph. Only id, filename, category and
// colors are part of the JSON view served to clients.
type Item struct {
	ID          int       `json:"id" db:"id"`
	Filename    string    `json:"filename" db:"filename"`
	StoragePath string    `json:"-" db:"storage_path"`
	ContentType string    `json:"-" db:"content_type"`
	FileSize    int64     `json:"-" db:"file_size"`
	Category    Category  `json:"category" db:"category"`
	Label       string    `json:"-" db:"label"`
	Colors      []string  `json:"colors" db:"colors"`
	CreatedAt   time.Time `json:"-" db:"created_at"`
}

// FallbackColors is reported when dominant colours cannot be extracted
var FallbackColors = []string{"#ffffff", "#000000"}

const MaxFilenameLen = 255

var hexColor = regexp.MustCompile(`^#[0-9a-f]{6}$`)

// Domain errors
var (
	ErrInvalidItem        = errors.New("invalid item")
	ErrItemNotFound       = errors.New("item not found")
	ErrCityRequired       = errors.New("city is required")
	ErrWeatherUnavailable = errors.New("weather unavailable")
	ErrUnsupportedImage   = errors.New("unsupported image type")
	ErrNoFiles            = errors.New("no file part")
	ErrCacheMiss          = errors.New("not found in cache")
	ErrCacheUnavailable   = errors.New("cache unavailable")
)

// Validate checks an item before it is persisted
func (i *Item) Validate() error {
	if i.Filename == "" {
		return fmt.Errorf("%w: filename cannot be empty", ErrInvalidItem)
	}
	if len(i.Filename) > MaxFilenameLen {
		return fmt.Errorf("%w: filename too long (max %d characters)", ErrInvalidItem, MaxFilenameLen)
	}
	if !utf8.ValidString(i.Filename) || strings.ContainsAny(i.Filename, `/\`) {
		return fmt.Errorf("%w: filename %q is not a plain file name", ErrInvalidItem, i.Filename)
	}
	if !i.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidItem, i.Category)
	}
	if len(i.Colors) == 0 {
		return fmt.Errorf("%w: at least one colour is required", ErrInvalidItem)
	}
	for _, c := range i.Colors {
		if !hexColor.MatchString(c) {
			return fmt.Errorf("%w: colour %q is not #rrggbb", ErrInvalidItem, c)
		}
	}
	return nil
}

// URL is the path the item's image is served from
func (i *Item) URL() string {
	return "/uploads/" + i.Filename
}

// Weather is the current condition for a city, temperature in Celsius
type Weather struct {
	City        string  `json:"city"`
	Temp        float64 `json:"temp"`
	Description string  `json:"description"`
}

func (w Weather) IsWarm() bool {
	return w.Temp > 15
}

func (w Weather) IsCold() bool {
	return w.Temp < 14
}

func (w Weather) IsRainy() bool {
	return strings.Contains(strings.ToLower(w.Description), "rain")
}

// Condition summarises the temperature band as warm, cold or casual
func (w Weather) Condition() string {
	switch {
	case w.IsCold():
		return "cold"
	case w.IsWarm():
		return "warm"
	default:
		return "casual"
	}
}

// Outfit is one recommendation. Empty slots are omitted from JSON.
type Outfit struct {
	Label     string `json:"label"`
	Top       *Item  `json:"top,omitempty"`
	Bottom    *Item  `json:"bottom,omitempty"`
	Outerwear *Item  `json:"outerwear,omitempty"`
	Shoes     *Item  `json:"shoes,omitempty"`
}

// Piece is a filled outfit slot
type Piece struct {
	Slot Category
	Item *Item
}

// Pieces returns the filled slots in display order: top, bottom, outerwear, shoes
func (o Outfit) Pieces() []Piece {
	slots := []Piece{
		{Slot: CategoryTop, Item: o.Top},
		{Slot: CategoryBottom, Item: o.Bottom},
		{Slot: CategoryOuterwear, Item: o.Outerwear},
		{Slot: CategoryShoes, Item: o.Shoes},
	}

	pieces := make([]Piece, 0, len(slots))
	for _, p := range slots {
		if p.Item != nil {
			pieces = append(pieces, p)
		}
	}
	return pieces
}

// UploadFile is one part of an upload request
type UploadFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// UploadResult is returned once every file of a request has been stored
type UploadResult struct {
	Message string `json:"message"`
	Items   []Item `json:"items"`
}

// UploadSuccessMessage is the message reported after a successful upload
const UploadSuccessMessage = "Files uploaded and processed successfully!"

// GenerateResult pairs the weather used with the outfits built for it
type GenerateResult struct {
	Outfits []Outfit `json:"outfits"`
	Weather Weather  `json:"weather"`
}

// Classification is a classifier's verdict for one image
type Classification struct {
	Label    string
	Category Category
}

// FileError reports which file of an upload request failed. Its message is
// suitable for returning to the client.
type FileError struct {
	Filename string
	Err      error
}

func (e *FileError) Error() string {
	if errors.Is(e.Err, ErrUnsupportedImage) {
		return fmt.Sprintf("Unsupported image type for file %s.", e.Filename)
	}
	return fmt.Sprintf("Failed to process file %s.", e.Filename)
}

func (e *FileError) Unwrap() error {
	return e.Err
}
