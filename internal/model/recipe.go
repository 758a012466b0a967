package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Recipe is a single recipe as returned by the chat-completion API
type Recipe struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Ingredients []string `json:"ingredients"`
	Steps       []string `json:"steps"`
}

// PlaceholderTitle is shown on every card before the first search completes
const PlaceholderTitle = "Loading..."

// DefaultRecipes returns the three placeholder cards the board starts with
func DefaultRecipes() []Recipe {
	recipes := make([]Recipe, 3)
	for i := range recipes {
		recipes[i] = Recipe{
			Title:       PlaceholderTitle,
			Ingredients: []string{},
			Steps:       []string{},
		}
	}
	return recipes
}

// Clone returns a deep copy so callers can't mutate shared slices
func (r Recipe) Clone() Recipe {
	out := r
	out.Ingredients = cloneStrings(r.Ingredients)
	out.Steps = cloneStrings(r.Steps)
	return out
}

// cloneStrings keeps nil and empty apart so JSON output stays the same
func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append(make([]string, 0, len(in)), in...)
}

// CloneRecipes deep-copies a recipe list
func CloneRecipes(in []Recipe) []Recipe {
	if in == nil {
		return nil
	}
	out := make([]Recipe, len(in))
	for i, r := range in {
		out[i] = r.Clone()
	}
	return out
}

// JSONBStringArray is a custom type for handling string arrays in JSONB
type JSONBStringArray []string

// Value implements the driver.Valuer interface
func (a JSONBStringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface
func (a *JSONBStringArray) Scan(value interface{}) error {
	if value == nil {
		*a = JSONBStringArray{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for JSONBStringArray", value)
	}

	return json.Unmarshal(bytes, a)
}

// CookbookEntry is one saved recipe in the database-backed cookbook.
// The autoincrement ID preserves append order.
type CookbookEntry struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time        `json:"created_at"`
	Title       string           `gorm:"size:255;not null" json:"title"`
	Description string           `gorm:"type:text" json:"description"`
	Ingredients JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"ingredients"`
	Steps       JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"steps"`
}

// NewCookbookEntry converts a recipe into a row
func NewCookbookEntry(r Recipe) *CookbookEntry {
	return &CookbookEntry{
		Title:       r.Title,
		Description: r.Description,
		Ingredients: JSONBStringArray(append([]string{}, r.Ingredients...)),
		Steps:       JSONBStringArray(append([]string{}, r.Steps...)),
	}
}

// Recipe converts the row back into a recipe
func (e *CookbookEntry) Recipe() Recipe {
	return Recipe{
		Title:       e.Title,
		Description: e.Description,
		Ingredients: append([]string{}, e.Ingredients...),
		Steps:       append([]string{}, e.Steps...),
	}
}
