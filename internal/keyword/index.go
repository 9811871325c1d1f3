// Package keyword provides Bleve-backed keyword search over listings, items
// and study groups. The roommate category is deliberately absent: profiles
// are matched by similarity only, never by free-text search.
package keyword

import (
	"context"

	"github.com/universeapp/universe/internal/models"
)

// Result is a single keyword search hit.
type Result struct {
	ID    int64   `json:"id"`
	Score float64 `json:"score"`
}

// SearchOptions tunes query behavior. The zero value gives a plain match
// query.
type SearchOptions struct {
	// FuzzyEnabled turns on typo tolerance per term.
	FuzzyEnabled bool
	// Fuzziness is the edit distance for fuzzy matching; 0 means the default.
	Fuzziness int
}

// Index defines keyword search operations over the content categories.
type Index interface {
	IndexListing(ctx context.Context, l *models.Listing) error
	IndexItem(ctx context.Context, it *models.Item) error
	IndexGroup(ctx context.Context, g *models.StudyGroup) error
	Delete(ctx context.Context, cat models.Category, id int64) error
	Search(ctx context.Context, cat models.Category, query string, limit int, opts *SearchOptions) ([]Result, error)
	DocCount(cat models.Category) (uint64, error)
	Close() error
}
