// Package indexer rebuilds the per-category vector indexes from the eligible
// record sets. Rebuilds are full, not incremental: every rebuild reprocesses
// the whole eligible set for its category.
package indexer

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/universeapp/universe/internal/embedding"
	"github.com/universeapp/universe/internal/keyword"
	"github.com/universeapp/universe/internal/models"
	"github.com/universeapp/universe/internal/repo"
	"github.com/universeapp/universe/internal/textproj"
	"github.com/universeapp/universe/internal/vector"
)

// Rebuilder fetches eligible records, projects them to text, embeds them and
// writes the per-category vector indexes.
type Rebuilder struct {
	repo      repo.Repository
	embedder  embedding.Embedder
	store     *vector.Store
	keyword   keyword.Index // optional; nil skips keyword re-indexing
	batchSize int
	logger    *zap.Logger
}

func NewRebuilder(r repo.Repository, e embedding.Embedder, store *vector.Store, kw keyword.Index, batchSize int, logger *zap.Logger) *Rebuilder {
	if batchSize <= 0 {
		batchSize = 32
	}
	return &Rebuilder{repo: r, embedder: e, store: store, keyword: kw, batchSize: batchSize, logger: logger}
}

// Rebuild regenerates one category's vector index. An empty eligible set is
// logged and skipped, leaving any existing index in place.
func (rb *Rebuilder) Rebuild(ctx context.Context, cat models.Category) error {
	texts, ids, err := rb.collect(ctx, cat)
	if err != nil {
		return fmt.Errorf("failed to collect %s records: %w", cat, err)
	}
	if len(ids) == 0 {
		rb.logger.Info("no eligible records, skipping index rebuild",
			zap.String("category", string(cat)))
		return nil
	}

	vectors, err := rb.embedAll(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed %s records: %w", cat, err)
	}

	if err := rb.store.Build(cat, vectors, ids); err != nil {
		return fmt.Errorf("failed to build %s index: %w", cat, err)
	}
	rb.logger.Info("vector index rebuilt",
		zap.String("category", string(cat)),
		zap.Int("records", len(ids)))
	return nil
}

// RebuildAll regenerates every category's vector index, refreshes the
// keyword indexes, and drops all cached vector indexes so the new artifacts
// take effect immediately.
func (rb *Rebuilder) RebuildAll(ctx context.Context) error {
	for _, cat := range models.AllCategories() {
		if err := rb.Rebuild(ctx, cat); err != nil {
			return err
		}
	}
	if rb.keyword != nil {
		if err := keyword.RebuildAll(ctx, rb.repo, rb.keyword); err != nil {
			return fmt.Errorf("failed to rebuild keyword indexes: %w", err)
		}
	}
	rb.store.InvalidateAll()
	return nil
}

// collect returns the projected text and ID of every eligible record in a
// category. The roommate category is keyed by user ID, not profile ID.
func (rb *Rebuilder) collect(ctx context.Context, cat models.Category) ([]string, []int64, error) {
	switch cat {
	case models.CategoryHousing:
		listings, err := rb.repo.ListAvailableListings(ctx)
		if err != nil {
			return nil, nil, err
		}
		texts := make([]string, len(listings))
		ids := make([]int64, len(listings))
		for i, l := range listings {
			texts[i] = textproj.ListingText(l)
			ids[i] = l.ID
		}
		return texts, ids, nil

	case models.CategoryMarketplace:
		items, err := rb.repo.ListUnsoldItems(ctx)
		if err != nil {
			return nil, nil, err
		}
		texts := make([]string, len(items))
		ids := make([]int64, len(items))
		for i, it := range items {
			texts[i] = textproj.ItemText(it)
			ids[i] = it.ID
		}
		return texts, ids, nil

	case models.CategoryStudyGroups:
		groups, err := rb.repo.ListActiveStudyGroups(ctx)
		if err != nil {
			return nil, nil, err
		}
		texts := make([]string, len(groups))
		ids := make([]int64, len(groups))
		for i, g := range groups {
			texts[i] = textproj.GroupText(g)
			ids[i] = g.ID
		}
		return texts, ids, nil

	case models.CategoryRoommate:
		profiles, err := rb.repo.ListProfiles(ctx)
		if err != nil {
			return nil, nil, err
		}
		texts := make([]string, len(profiles))
		ids := make([]int64, len(profiles))
		for i, p := range profiles {
			rp, err := rb.repo.GetRoommateProfile(ctx, p.UserID)
			if errors.Is(err, repo.ErrNotFound) {
				rp = nil
			} else if err != nil {
				return nil, nil, err
			}
			texts[i] = textproj.ProfileText(p, rp)
			ids[i] = p.UserID
		}
		return texts, ids, nil

	default:
		return nil, nil, fmt.Errorf("unknown category %q", cat)
	}
}

func (rb *Rebuilder) embedAll(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += rb.batchSize {
		end := start + rb.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := rb.embedder.EmbedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, batch...)
	}
	return vectors, nil
}
