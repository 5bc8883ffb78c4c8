package enums

import "fmt"

// MenuCategory groups menu items for the customer-facing menu.
type MenuCategory string

const (
	MenuCategoryStarters  MenuCategory = "starters"
	MenuCategoryMains     MenuCategory = "mains"
	MenuCategoryDesserts  MenuCategory = "desserts"
	MenuCategoryBeverages MenuCategory = "beverages"
)

var validMenuCategories = []MenuCategory{
	MenuCategoryStarters,
	MenuCategoryMains,
	MenuCategoryDesserts,
	MenuCategoryBeverages,
}

// String implements fmt.Stringer.
func (c MenuCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known MenuCategory.
func (c MenuCategory) IsValid() bool {
	for _, candidate := range validMenuCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseMenuCategory converts raw input into a MenuCategory.
func ParseMenuCategory(value string) (MenuCategory, error) {
	for _, candidate := range validMenuCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid menu category %q", value)
}
