package database

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ColorList stores hex colours as a JSONB array
type ColorList []string

// Value implements the driver.Valuer interface for storing to database
func (c ColorList) Value() (driver.Value, error) {
	if c == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(c))
}

// Scan implements the sql.Scanner interface for loading from database
func (c *ColorList) Scan(value interface{}) error {
	if value == nil {
		*c = ColorList{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into ColorList", value)
	}

	var colors []string
	if err := json.Unmarshal(raw, &colors); err != nil {
		return fmt.Errorf("failed to decode colors: %w", err)
	}
	*c = colors
	return nil
}
