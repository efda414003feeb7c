package enums

import "fmt"

// ItemCategory groups catalog items on the inventory board.
type ItemCategory string

const (
	ItemCategoryPhones      ItemCategory = "Phones"
	ItemCategoryAccessories ItemCategory = "Accessories"
	ItemCategorySpareParts  ItemCategory = "Spare Parts"
)

var validItemCategories = []ItemCategory{
	ItemCategoryPhones,
	ItemCategoryAccessories,
	ItemCategorySpareParts,
}

// String implements fmt.Stringer.
func (c ItemCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ItemCategory.
func (c ItemCategory) IsValid() bool {
	for _, candidate := range validItemCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseItemCategory converts raw input into an ItemCategory.
func ParseItemCategory(value string) (ItemCategory, error) {
	for _, candidate := range validItemCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid item category %q", value)
}
