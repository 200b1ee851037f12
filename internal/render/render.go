// Package render draws the wardrobe inventory and outfit recommendations for
// the terminal.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"wardrobe/internal/domain/wardrobe"
)

const (
	// NoOutfitsMessage is shown when the recommender could not build an outfit
	NoOutfitsMessage = "Couldn't generate outfits. Try uploading more items (especially tops, bottoms, and shoes)!"

	// EmptyInventoryMessage is shown for a wardrobe without items
	EmptyInventoryMessage = "Your wardrobe is empty. Upload some photos to get started."

	defaultColumns = 3
	swatch         = "■"
)

var (
	accent = lipgloss.Color("#8c6a4f")
	muted  = lipgloss.Color("#6b6b6b")
)

// Styles holds the lipgloss styles used by a Renderer
type Styles struct {
	Title   lipgloss.Style
	Card    lipgloss.Style
	Tag     lipgloss.Style
	Muted   lipgloss.Style
	Bold    lipgloss.Style
	Error   lipgloss.Style
	Heading lipgloss.Style
	Outfit  lipgloss.Style
	Weather lipgloss.Style
}

// DefaultStyles returns the wardrobe palette
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().Bold(true).Foreground(accent).MarginBottom(1),
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Padding(0, 1).
			MarginRight(1),
		Tag:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffffff")).Background(accent).Padding(0, 1),
		Muted:   lipgloss.NewStyle().Foreground(muted),
		Bold:    lipgloss.NewStyle().Bold(true),
		Error:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#e53935")),
		Heading: lipgloss.NewStyle().Bold(true).Underline(true),
		Outfit: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(accent).
			Padding(0, 1).
			MarginBottom(1),
		Weather: lipgloss.NewStyle().Bold(true),
	}
}

// Renderer turns API results into terminal text
type Renderer struct {
	styles   Styles
	columns  int
	imageURL func(wardrobe.Item) string
}

// New creates a renderer. imageURL resolves where an item's photo is served;
// nil uses the relative /uploads/<filename> path.
func New(imageURL func(wardrobe.Item) string) *Renderer {
	if imageURL == nil {
		imageURL = func(item wardrobe.Item) string { return item.URL() }
	}
	return &Renderer{
		styles:   DefaultStyles(),
		columns:  defaultColumns,
		imageURL: imageURL,
	}
}

// UploadStatus is the progress line printed before an upload starts
func UploadStatus(n int) string {
	return fmt.Sprintf("Uploading %d item(s)...", n)
}

// WeatherLine formats weather as "<city>: <temp>°C, <description>"
func WeatherLine(w wardrobe.Weather) string {
	return fmt.Sprintf("%s: %s°C, %s", w.City, strconv.FormatFloat(w.Temp, 'f', -1, 64), w.Description)
}

// Error formats a failure as "Error: <message>"; API errors carry the server message
func (r *Renderer) Error(err error) string {
	return r.styles.Error.Render("Error: " + err.Error())
}

// Inventory renders items as a grid of cards
func (r *Renderer) Inventory(items []wardrobe.Item) string {
	if len(items) == 0 {
		return r.styles.Muted.Render(EmptyInventoryMessage)
	}

	cards := make([]string, 0, len(items))
	for _, item := range items {
		cards = append(cards, r.itemCard(item, ""))
	}

	var rows []string
	for start := 0; start < len(cards); start += r.columns {
		end := min(start+r.columns, len(cards))
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards[start:end]...))
	}

	title := r.styles.Title.Render(fmt.Sprintf("Inventory (%d)", len(items)))
	return lipgloss.JoinVertical(lipgloss.Left, append([]string{title}, rows...)...)
}

// UploadResult renders the server message followed by the new items
func (r *Renderer) UploadResult(result *wardrobe.UploadResult) string {
	if len(result.Items) == 0 {
		return result.Message
	}
	return result.Message + "\n\n" + r.Inventory(result.Items)
}

// Results renders the weather summary and one card per outfit
func (r *Renderer) Results(result *wardrobe.GenerateResult) string {
	var sb strings.Builder

	sb.WriteString(r.styles.Weather.Render(WeatherLine(result.Weather)))
	sb.WriteString("\n\n")

	if len(result.Outfits) == 0 {
		sb.WriteString(NoOutfitsMessage)
		return sb.String()
	}

	cards := make([]string, 0, len(result.Outfits))
	for _, outfit := range result.Outfits {
		cards = append(cards, r.outfitCard(outfit))
	}
	sb.WriteString(lipgloss.JoinVertical(lipgloss.Left, cards...))
	return sb.String()
}

func (r *Renderer) outfitCard(outfit wardrobe.Outfit) string {
	pieces := outfit.Pieces()
	cards := make([]string, 0, len(pieces))
	for _, p := range pieces {
		cards = append(cards, r.itemCard(*p.Item, p.Slot.String()))
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		r.styles.Heading.Render(outfit.Label),
		lipgloss.JoinHorizontal(lipgloss.Top, cards...),
	)
	return r.styles.Outfit.Render(body)
}

// itemCard shows an item's image URL, category tag and colour swatches
func (r *Renderer) itemCard(item wardrobe.Item, slot string) string {
	lines := make([]string, 0, 4)
	if slot != "" {
		lines = append(lines, r.styles.Bold.Render(slot))
	}
	lines = append(lines,
		r.styles.Muted.Render(r.imageURL(item)),
		r.styles.Tag.Render(item.Category.String()),
	)
	if sw := r.swatches(item.Colors); sw != "" {
		lines = append(lines, sw)
	}
	return r.styles.Card.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (r *Renderer) swatches(colors []string) string {
	parts := make([]string, 0, len(colors))
	for _, c := range colors {
		parts = append(parts, lipgloss.NewStyle().Foreground(lipgloss.Color(c)).Render(swatch))
	}
	return strings.Join(parts, " ")
}
