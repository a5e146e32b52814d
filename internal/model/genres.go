package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// Genres is the ordered list of genre names attached to a venue or artist.
// It is stored as a JSON array in a single text column so the same schema
// works on MySQL and SQLite.
type Genres []string

// Value implements driver.Valuer.  A nil list is stored as "[]".
func (g Genres) Value() (driver.Value, error) {
	if g == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(g))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for text and blob columns.
func (g *Genres) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*g = Genres{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("genres: unsupported column type %T", src)
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		*g = Genres{}
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("genres: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	*g = out
	return nil
}

// String joins the genres for display.
func (g Genres) String() string { return strings.Join(g, ", ") }
