package database

import "errors"

var (
	ErrMissingDatabaseURL = errors.New("database URL is required")
	ErrMigrationFailed    = errors.New("migration failed")
	ErrDuplicateFilename  = errors.New("an item with this filename already exists")
)
