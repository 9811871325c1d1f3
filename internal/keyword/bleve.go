package keyword

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	blevequery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/universeapp/universe/internal/models"
)

// contentCategories are the categories with a keyword index.
var contentCategories = []models.Category{
	models.CategoryHousing,
	models.CategoryMarketplace,
	models.CategoryStudyGroups,
}

// bleveDoc is the indexed shape of every record. Title carries the listing
// title or group name, Body the description, Tags the remaining searchable
// fields of that category (address and city, item type, subject area and
// course code).
type bleveDoc struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Tags  string `json:"tags"`
}

// BleveIndex implements Index with one Bleve index per content category.
type BleveIndex struct {
	indexes map[models.Category]bleve.Index
}

// NewBleveIndex creates or opens the per-category indexes under dir.
// Existing indexes are reused; remove the directory to force a full
// re-index after a mapping change.
func NewBleveIndex(dir string) (*BleveIndex, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create keyword index directory: %w", err)
	}

	im := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) so a query like
	// "chem" matches the exact word; the English analyzer stems
	// "chemistry" -> "chemistri" and the two stop matching.
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("title", textFieldMapping)
	docMapping.AddFieldMappingsAt("body", textFieldMapping)
	docMapping.AddFieldMappingsAt("tags", textFieldMapping)
	im.DefaultMapping = docMapping

	b := &BleveIndex{indexes: make(map[models.Category]bleve.Index, len(contentCategories))}
	for _, cat := range contentCategories {
		path := filepath.Join(dir, string(cat)+".bleve")
		var idx bleve.Index
		var err error
		if _, statErr := os.Stat(path); statErr == nil {
			idx, err = bleve.Open(path)
		} else {
			idx, err = bleve.New(path, im)
		}
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("failed to open %s keyword index: %w", cat, err)
		}
		b.indexes[cat] = idx
	}
	return b, nil
}

func (b *BleveIndex) indexFor(cat models.Category) (bleve.Index, error) {
	idx, ok := b.indexes[cat]
	if !ok {
		return nil, fmt.Errorf("no keyword index for category %q", cat)
	}
	return idx, nil
}

// IndexListing adds or replaces a housing listing.
func (b *BleveIndex) IndexListing(ctx context.Context, l *models.Listing) error {
	idx, err := b.indexFor(models.CategoryHousing)
	if err != nil {
		return err
	}
	return idx.Index(strconv.FormatInt(l.ID, 10), bleveDoc{
		Title: l.Title,
		Body:  l.Description,
		Tags:  strings.TrimSpace(l.Address + " " + l.City),
	})
}

// IndexItem adds or replaces a marketplace item.
func (b *BleveIndex) IndexItem(ctx context.Context, it *models.Item) error {
	idx, err := b.indexFor(models.CategoryMarketplace)
	if err != nil {
		return err
	}
	return idx.Index(strconv.FormatInt(it.ID, 10), bleveDoc{
		Title: it.Title,
		Body:  it.Description,
		Tags:  it.ItemType,
	})
}

// IndexGroup adds or replaces a study group.
func (b *BleveIndex) IndexGroup(ctx context.Context, g *models.StudyGroup) error {
	idx, err := b.indexFor(models.CategoryStudyGroups)
	if err != nil {
		return err
	}
	return idx.Index(strconv.FormatInt(g.ID, 10), bleveDoc{
		Title: g.Name,
		Body:  g.Description,
		Tags:  strings.TrimSpace(g.SubjectArea + " " + g.CourseCode),
	})
}

// Delete removes a record from its category index. Deleting an absent ID is
// not an error.
func (b *BleveIndex) Delete(ctx context.Context, cat models.Category, id int64) error {
	idx, err := b.indexFor(cat)
	if err != nil {
		return err
	}
	return idx.Delete(strconv.FormatInt(id, 10))
}

// Search runs a match query over the category's index and returns up to
// limit results. With opts.FuzzyEnabled each term tolerates typos up to the
// configured edit distance.
func (b *BleveIndex) Search(ctx context.Context, cat models.Category, query string, limit int, opts *SearchOptions) ([]Result, error) {
	idx, err := b.indexFor(cat)
	if err != nil {
		return nil, err
	}

	var q blevequery.Query
	if opts != nil && opts.FuzzyEnabled {
		fuzziness := opts.Fuzziness
		if fuzziness <= 0 {
			fuzziness = 2
		}
		q = buildFuzzyQuery(query, fuzziness)
	} else {
		q = bleve.NewMatchQuery(query)
	}

	req := bleve.NewSearchRequest(q)
	req.Size = limit
	results, err := idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("keyword search failed: %w", err)
	}

	out := make([]Result, 0, len(results.Hits))
	for _, hit := range results.Hits {
		id, err := strconv.ParseInt(hit.ID, 10, 64)
		if err != nil {
			continue
		}
		out = append(out, Result{ID: id, Score: hit.Score})
	}
	return out, nil
}

// buildFuzzyQuery creates a disjunction of per-term fuzzy queries, matching
// if any term matches.
func buildFuzzyQuery(query string, fuzziness int) blevequery.Query {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return bleve.NewMatchQuery(query)
	}
	queries := make([]blevequery.Query, 0, len(terms))
	for _, term := range terms {
		fq := bleve.NewFuzzyQuery(term)
		fq.SetFuzziness(fuzziness)
		queries = append(queries, fq)
	}
	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewDisjunctionQuery(queries...)
}

// DocCount returns the number of records in a category's index.
func (b *BleveIndex) DocCount(cat models.Category) (uint64, error) {
	idx, err := b.indexFor(cat)
	if err != nil {
		return 0, err
	}
	return idx.DocCount()
}

// Close closes every category index.
func (b *BleveIndex) Close() error {
	var firstErr error
	for _, idx := range b.indexes {
		if err := idx.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
