package events

import (
	"context"

	"go.uber.org/zap"

	"github.com/universeapp/universe/internal/vector"
)

// Invalidator drops cached vector indexes when the records behind them
// change. A dropped index is reloaded from disk on the next search, so a
// stale cache never outlives the mutation that made it stale.
type Invalidator struct {
	bus    *Bus
	store  *vector.Store
	logger *zap.Logger
}

func NewInvalidator(bus *Bus, store *vector.Store, logger *zap.Logger) *Invalidator {
	return &Invalidator{bus: bus, store: store, logger: logger}
}

// Start subscribes to every entity kind and invalidates the matching
// category on each event. It returns after subscriptions are registered;
// handling runs until ctx is cancelled.
func (inv *Invalidator) Start(ctx context.Context) error {
	for _, kind := range AllKinds() {
		ch, err := inv.bus.Subscribe(ctx, kind)
		if err != nil {
			return err
		}
		go inv.run(ch)
	}
	return nil
}

func (inv *Invalidator) run(ch <-chan Event) {
	for ev := range ch {
		cat := ev.Kind.Category()
		if cat == "" {
			continue
		}
		inv.store.Invalidate(cat)
		inv.logger.Debug("invalidated vector index cache",
			zap.String("category", string(cat)),
			zap.String("kind", string(ev.Kind)),
			zap.String("op", string(ev.Op)),
			zap.Int64("entity_id", ev.EntityID))
	}
}
