// Package cli provides output helpers for the Universe command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/universeapp/universe/internal/keyword"
	"github.com/universeapp/universe/internal/models"
)

// OutputFormat selects how CLI results are rendered.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseFormat validates an -output flag value.
func ParseFormat(s string) (OutputFormat, error) {
	switch s {
	case "", "text":
		return OutputText, nil
	case "json":
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text or json", s)
	}
}

// RecommendationList pairs a category with its ranked results for output.
type RecommendationList struct {
	Category        models.Category         `json:"category"`
	Recommendations []models.Recommendation `json:"recommendations"`
}

// WriteRecommendations writes a recommendation list to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteRecommendations(w io.Writer, list *RecommendationList, format OutputFormat) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	}
	if len(list.Recommendations) == 0 {
		fmt.Fprintf(w, "No %s recommendations\n", list.Category)
		return nil
	}
	fmt.Fprintf(w, "Top %d %s recommendations:\n", len(list.Recommendations), list.Category)
	for i, rec := range list.Recommendations {
		fmt.Fprintf(w, "%3d. id=%-8d score=%.4f\n", i+1, rec.ID, rec.Score)
	}
	return nil
}

// SearchResultList pairs a keyword query with its hits for output.
type SearchResultList struct {
	Category models.Category  `json:"category"`
	Query    string           `json:"query"`
	Results  []keyword.Result `json:"results"`
}

// WriteSearchResults writes keyword search results to w in the given format.
func WriteSearchResults(w io.Writer, list *SearchResultList, format OutputFormat) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	}
	if len(list.Results) == 0 {
		fmt.Fprintf(w, "No %s results for %q\n", list.Category, list.Query)
		return nil
	}
	fmt.Fprintf(w, "Found %d %s result(s) for %q:\n", len(list.Results), list.Category, list.Query)
	for i, res := range list.Results {
		fmt.Fprintf(w, "%3d. id=%-8d score=%.4f\n", i+1, res.ID, res.Score)
	}
	return nil
}
