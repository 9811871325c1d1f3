// Package recommend implements the recommendation pipeline: cold-start
// detection, semantic retrieval over the vector index store, hybrid
// rule-based filtering, and recency fallbacks.
package recommend

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/universeapp/universe/internal/config"
	"github.com/universeapp/universe/internal/embedding"
	"github.com/universeapp/universe/internal/models"
	"github.com/universeapp/universe/internal/repo"
	"github.com/universeapp/universe/internal/textproj"
	"github.com/universeapp/universe/internal/vector"
)

// Service produces per-category recommendations for a user.
type Service struct {
	repo     repo.Repository
	embedder embedding.Embedder
	store    *vector.Store
	cfg      config.RecommendConfig
	logger   *zap.Logger
}

func NewService(r repo.Repository, e embedding.Embedder, store *vector.Store, cfg config.RecommendConfig, logger *zap.Logger) *Service {
	return &Service{repo: r, embedder: e, store: store, cfg: cfg, logger: logger}
}

// Recommend returns up to topK (id, score) pairs for a user in a category,
// ordered by descending similarity. Cold-start users and categories without
// a usable index get the recency fallback with score 0.0. Only an embedding
// failure or a repository error is fatal for the request.
func (s *Service) Recommend(ctx context.Context, cat models.Category, userID int64, topK int) ([]models.Recommendation, error) {
	topK = s.clampTopK(topK)

	p, err := s.repo.GetProfileByUserID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		s.logger.Debug("recommendation fallback",
			zap.String("category", string(cat)),
			zap.Int64("user_id", userID),
			zap.String("reason", "no profile"))
		return s.fallback(ctx, cat, userID, topK)
	}
	if err != nil {
		return nil, err
	}

	rp, err := s.repo.GetRoommateProfile(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		rp = nil
	} else if err != nil {
		return nil, err
	}

	if IsColdStart(p, rp) {
		s.logger.Debug("recommendation fallback",
			zap.String("category", string(cat)),
			zap.Int64("user_id", userID),
			zap.String("reason", "cold start"))
		return s.fallback(ctx, cat, userID, topK)
	}

	queryVec, err := s.embedder.Embed(ctx, textproj.ProfileText(p, rp))
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	// Roommate search excludes the requesting user and needs no
	// over-fetch because no post-filter trims it. Content categories
	// over-fetch to absorb hybrid filter losses.
	var hits []vector.Hit
	if cat == models.CategoryRoommate {
		hits, err = s.store.Search(cat, queryVec, topK, map[int64]struct{}{userID: {}})
	} else {
		hits, err = s.store.Search(cat, queryVec, topK*s.cfg.OverfetchMultiplier, nil)
	}
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		s.logger.Debug("recommendation fallback",
			zap.String("category", string(cat)),
			zap.Int64("user_id", userID),
			zap.String("reason", "empty index"))
		return s.fallback(ctx, cat, userID, topK)
	}

	if cat == models.CategoryRoommate {
		out := make([]models.Recommendation, 0, topK)
		for _, h := range hits {
			out = append(out, models.Recommendation{ID: h.ID, Score: h.Score})
			if len(out) == topK {
				break
			}
		}
		return out, nil
	}

	return s.filterAndRank(ctx, cat, hits, rp, topK)
}

// filterAndRank hydrates the hit records, applies the category's hybrid
// filter, and truncates to topK. Hits arrive sorted by score descending and
// filtering preserves that order; records deleted since the last rebuild are
// simply dropped.
func (s *Service) filterAndRank(ctx context.Context, cat models.Category, hits []vector.Hit, rp *models.RoommateProfile, topK int) ([]models.Recommendation, error) {
	ids := make([]int64, len(hits))
	for i, h := range hits {
		ids[i] = h.ID
	}

	keep := make(map[int64]bool, len(ids))
	switch cat {
	case models.CategoryHousing:
		listings, err := s.repo.GetListingsByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for id, l := range listings {
			keep[id] = passesHousingFilter(l, rp, s.cfg.BudgetSlackPercent)
		}
	case models.CategoryMarketplace:
		items, err := s.repo.GetItemsByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for id, it := range items {
			keep[id] = passesMarketplaceFilter(it)
		}
	case models.CategoryStudyGroups:
		groups, err := s.repo.GetStudyGroupsByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for id, g := range groups {
			keep[id] = passesStudyGroupFilter(g)
		}
	default:
		return nil, fmt.Errorf("no hybrid filter for category %q", cat)
	}

	out := make([]models.Recommendation, 0, topK)
	for _, h := range hits {
		if !keep[h.ID] {
			continue
		}
		out = append(out, models.Recommendation{ID: h.ID, Score: h.Score})
		if len(out) == topK {
			break
		}
	}
	return out, nil
}

// fallback returns the most recent eligible records with the sentinel score
// 0.0, preserving recency order. For the roommate category it returns the
// most recently joined other users.
func (s *Service) fallback(ctx context.Context, cat models.Category, userID int64, topK int) ([]models.Recommendation, error) {
	switch cat {
	case models.CategoryHousing:
		listings, err := s.repo.ListRecentListings(ctx, topK)
		if err != nil {
			return nil, err
		}
		out := make([]models.Recommendation, len(listings))
		for i, l := range listings {
			out[i] = models.Recommendation{ID: l.ID, Score: 0.0}
		}
		return out, nil
	case models.CategoryMarketplace:
		items, err := s.repo.ListRecentItems(ctx, topK)
		if err != nil {
			return nil, err
		}
		out := make([]models.Recommendation, len(items))
		for i, it := range items {
			out[i] = models.Recommendation{ID: it.ID, Score: 0.0}
		}
		return out, nil
	case models.CategoryStudyGroups:
		groups, err := s.repo.ListRecentStudyGroups(ctx, topK)
		if err != nil {
			return nil, err
		}
		out := make([]models.Recommendation, len(groups))
		for i, g := range groups {
			out[i] = models.Recommendation{ID: g.ID, Score: 0.0}
		}
		return out, nil
	case models.CategoryRoommate:
		profiles, err := s.repo.ListRecentProfiles(ctx, topK, userID)
		if err != nil {
			return nil, err
		}
		out := make([]models.Recommendation, len(profiles))
		for i, p := range profiles {
			out[i] = models.Recommendation{ID: p.UserID, Score: 0.0}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown category %q", cat)
	}
}

func (s *Service) clampTopK(topK int) int {
	if topK <= 0 {
		topK = s.cfg.DefaultLimit
	}
	if s.cfg.MaxLimit > 0 && topK > s.cfg.MaxLimit {
		topK = s.cfg.MaxLimit
	}
	return topK
}
