// Package models defines the entity records and recommendation types shared
// across the retrieval core.
package models

import "fmt"

// Category identifies one of the per-kind vector index partitions.
type Category string

const (
	CategoryHousing     Category = "housing"
	CategoryMarketplace Category = "marketplace"
	CategoryStudyGroups Category = "study_groups"
	CategoryRoommate    Category = "roommate"
)

// AllCategories lists every category in rebuild order.
func AllCategories() []Category {
	return []Category{CategoryHousing, CategoryMarketplace, CategoryStudyGroups, CategoryRoommate}
}

// ParseCategory validates a category name from user input (API path, CLI flag).
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryHousing, CategoryMarketplace, CategoryStudyGroups, CategoryRoommate:
		return Category(s), nil
	default:
		return "", fmt.Errorf("unknown category: %q (supported: housing, marketplace, study_groups, roommate)", s)
	}
}
