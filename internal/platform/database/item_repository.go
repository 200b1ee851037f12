package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"wardrobe/internal/domain/wardrobe"
)

const itemColumns = `id, filename, storage_path, content_type, file_size, category, label, colors, created_at`

// ItemRepository persists clothing items in the clothing_items table
type ItemRepository struct {
	db *sql.DB
}

// NewItemRepository creates a new ItemRepository
func NewItemRepository(db *sql.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

var _ wardrobe.Repository = (*ItemRepository)(nil)

// Create inserts an item and fills in its ID and CreatedAt
func (r *ItemRepository) Create(ctx context.Context, item *wardrobe.Item) error {
	query := `
		INSERT INTO clothing_items (
			filename, storage_path, content_type, file_size, category, label, colors
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		item.Filename,
		item.StoragePath,
		item.ContentType,
		item.FileSize,
		string(item.Category),
		item.Label,
		ColorList(item.Colors),
	).Scan(&item.ID, &item.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("%w: %s", ErrDuplicateFilename, item.Filename)
		}
		return fmt.Errorf("failed to insert item %s: %w", item.Filename, err)
	}

	return nil
}

// List returns every item ordered by ID
func (r *ItemRepository) List(ctx context.Context) ([]wardrobe.Item, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+itemColumns+` FROM clothing_items ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer func() { _ = rows.Close() }() //nolint:errcheck // resource cleanup

	items := make([]wardrobe.Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}

	return items, rows.Err()
}

// GetByFilename returns wardrobe.ErrItemNotFound when nothing matches
func (r *ItemRepository) GetByFilename(ctx context.Context, filename string) (*wardrobe.Item, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM clothing_items WHERE filename = $1`, filename)

	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", wardrobe.ErrItemNotFound, filename)
	}
	return item, err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(row rowScanner) (*wardrobe.Item, error) {
	var (
		item     wardrobe.Item
		category string
		colors   ColorList
	)

	if err := row.Scan(
		&item.ID,
		&item.Filename,
		&item.StoragePath,
		&item.ContentType,
		&item.FileSize,
		&category,
		&item.Label,
		&colors,
		&item.CreatedAt,
	); err != nil {
		return nil, err
	}

	parsed, err := wardrobe.ParseCategory(category)
	if err != nil {
		return nil, fmt.Errorf("item %d: %w", item.ID, err)
	}
	item.Category = parsed
	item.Colors = colors

	return &item, nil
}
