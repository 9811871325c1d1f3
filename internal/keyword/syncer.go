package keyword

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/universeapp/universe/internal/events"
	"github.com/universeapp/universe/internal/models"
	"github.com/universeapp/universe/internal/repo"
)

// Syncer keeps the keyword indexes in step with record mutations. A record
// that becomes ineligible (sold, unavailable, inactive) is removed, so
// keyword search never surfaces records the recommender would filter out.
type Syncer struct {
	bus    *events.Bus
	repo   repo.Repository
	index  Index
	logger *zap.Logger
}

func NewSyncer(bus *events.Bus, r repo.Repository, index Index, logger *zap.Logger) *Syncer {
	return &Syncer{bus: bus, repo: r, index: index, logger: logger}
}

// Start subscribes to the content entity kinds. It returns after
// subscriptions are registered; syncing runs until ctx is cancelled.
func (s *Syncer) Start(ctx context.Context) error {
	for _, kind := range []events.Kind{events.KindListing, events.KindItem, events.KindStudyGroup} {
		ch, err := s.bus.Subscribe(ctx, kind)
		if err != nil {
			return err
		}
		go s.run(ctx, ch)
	}
	return nil
}

func (s *Syncer) run(ctx context.Context, ch <-chan events.Event) {
	for ev := range ch {
		if err := s.apply(ctx, ev); err != nil {
			s.logger.Warn("keyword sync failed",
				zap.String("kind", string(ev.Kind)),
				zap.Int64("entity_id", ev.EntityID),
				zap.Error(err))
		}
	}
}

func (s *Syncer) apply(ctx context.Context, ev events.Event) error {
	cat := ev.Kind.Category()
	if ev.Op == events.OpDeleted {
		return s.index.Delete(ctx, cat, ev.EntityID)
	}

	switch ev.Kind {
	case events.KindListing:
		l, err := s.repo.GetListing(ctx, ev.EntityID)
		if errors.Is(err, repo.ErrNotFound) {
			return s.index.Delete(ctx, cat, ev.EntityID)
		}
		if err != nil {
			return err
		}
		if !l.IsAvailable {
			return s.index.Delete(ctx, cat, ev.EntityID)
		}
		return s.index.IndexListing(ctx, l)

	case events.KindItem:
		it, err := s.repo.GetItem(ctx, ev.EntityID)
		if errors.Is(err, repo.ErrNotFound) {
			return s.index.Delete(ctx, cat, ev.EntityID)
		}
		if err != nil {
			return err
		}
		if it.IsSold {
			return s.index.Delete(ctx, cat, ev.EntityID)
		}
		return s.index.IndexItem(ctx, it)

	case events.KindStudyGroup:
		g, err := s.repo.GetStudyGroup(ctx, ev.EntityID)
		if errors.Is(err, repo.ErrNotFound) {
			return s.index.Delete(ctx, cat, ev.EntityID)
		}
		if err != nil {
			return err
		}
		if !g.IsActive {
			return s.index.Delete(ctx, cat, ev.EntityID)
		}
		return s.index.IndexGroup(ctx, g)
	}
	return nil
}

// RebuildAll re-indexes every eligible record of every content category.
func RebuildAll(ctx context.Context, r repo.Repository, index Index) error {
	listings, err := r.ListAvailableListings(ctx)
	if err != nil {
		return err
	}
	for _, l := range listings {
		if err := index.IndexListing(ctx, l); err != nil {
			return err
		}
	}

	items, err := r.ListUnsoldItems(ctx)
	if err != nil {
		return err
	}
	for _, it := range items {
		if err := index.IndexItem(ctx, it); err != nil {
			return err
		}
	}

	groups, err := r.ListActiveStudyGroups(ctx)
	if err != nil {
		return err
	}
	for _, g := range groups {
		if err := index.IndexGroup(ctx, g); err != nil {
			return err
		}
	}
	return nil
}

// SearchableCategory reports whether cat has a keyword index.
func SearchableCategory(cat models.Category) bool {
	for _, c := range contentCategories {
		if c == cat {
			return true
		}
	}
	return false
}
