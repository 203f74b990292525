package model

import (
	"fmt"
	"strings"
)

// Item represents an inventory line-item with a tracked quantity.
type Item struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Quantity    int    `json:"quantity"`
}

// Insert policies for new items. The only key on items is the generated id,
// so a new row never conflicts and both policies insert it; InsertReplace
// differs only if a unique column is added to the table.
const (
	InsertStrict  = "strict"
	InsertReplace = "replace"
)

// SanitizeItem trims the name and description and truncates the name to limit.
func SanitizeItem(item Item, limit int) Item {
	item.Name = Sanitize(item.Name, limit)
	item.Description = strings.TrimSpace(item.Description)
	return item
}

// ValidateItem checks the name and quantity of an item.
func ValidateItem(item Item, limit int) error {
	if item.Name == "" {
		return fmt.Errorf("%w: item name is required", ErrInvalidInput)
	}
	if limit > 0 && runeLen(item.Name) > limit {
		return fmt.Errorf("%w: item name longer than %d characters", ErrInvalidInput, limit)
	}
	if item.Quantity < 0 {
		return fmt.Errorf("%w: quantity must not be negative", ErrInvalidInput)
	}
	return nil
}
