// Package events carries record-mutation notifications from the repository to
// the components that must react to them: the vector index cache invalidator
// and the keyword index syncer.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"

	"github.com/universeapp/universe/internal/models"
)

// Kind identifies a mutable entity kind.
type Kind string

const (
	KindListing         Kind = "listing"
	KindItem            Kind = "item"
	KindStudyGroup      Kind = "study_group"
	KindProfile         Kind = "profile"
	KindRoommateProfile Kind = "roommate_profile"
)

// AllKinds lists every mutable entity kind.
func AllKinds() []Kind {
	return []Kind{KindListing, KindItem, KindStudyGroup, KindProfile, KindRoommateProfile}
}

// Category returns the index category affected by mutations of this kind.
// Both profile kinds map to the roommate index, matching what the roommate
// index is built from.
func (k Kind) Category() models.Category {
	switch k {
	case KindListing:
		return models.CategoryHousing
	case KindItem:
		return models.CategoryMarketplace
	case KindStudyGroup:
		return models.CategoryStudyGroups
	case KindProfile, KindRoommateProfile:
		return models.CategoryRoommate
	default:
		return ""
	}
}

// Op is the mutation operation type.
type Op string

const (
	OpCreated Op = "created"
	OpUpdated Op = "updated"
	OpDeleted Op = "deleted"
)

// Event is a single record mutation.
type Event struct {
	Kind     Kind  `json:"kind"`
	Op       Op    `json:"op"`
	EntityID int64 `json:"entity_id"`
}

func topicFor(k Kind) string {
	return "records." + string(k)
}

// Bus is an in-process publish/subscribe channel for mutation events.
type Bus struct {
	pubsub *gochannel.GoChannel
}

// NewBus creates a bus. Subscribers registered after an event was published do
// not see it; mutation events are fire-and-forget signals, not a log.
func NewBus() *Bus {
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{}),
	}
}

// Publish emits a mutation event. Failure to publish is returned to the
// caller but must not roll back the mutation itself.
func (b *Bus) Publish(ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := message.NewMessage(uuid.NewString(), payload)
	if err := b.pubsub.Publish(topicFor(ev.Kind), msg); err != nil {
		return fmt.Errorf("publish %s event: %w", ev.Kind, err)
	}
	return nil
}

// Subscribe returns a channel of events for one entity kind. The channel
// closes when ctx is cancelled or the bus is closed.
func (b *Bus) Subscribe(ctx context.Context, kind Kind) (<-chan Event, error) {
	msgs, err := b.pubsub.Subscribe(ctx, topicFor(kind))
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", kind, err)
	}
	out := make(chan Event)
	go func() {
		defer close(out)
		for msg := range msgs {
			var ev Event
			if err := json.Unmarshal(msg.Payload, &ev); err != nil {
				msg.Ack()
				continue
			}
			msg.Ack()
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Close shuts down the bus and all subscriber channels.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}
