package events

import (
	"context"
	"testing"
	"time"

	"github.com/universeapp/universe/internal/models"
)

func TestKindCategory(t *testing.T) {
	cases := []struct {
		kind Kind
		want models.Category
	}{
		{KindListing, models.CategoryHousing},
		{KindItem, models.CategoryMarketplace},
		{KindStudyGroup, models.CategoryStudyGroups},
		{KindProfile, models.CategoryRoommate},
		{KindRoommateProfile, models.CategoryRoommate},
		{Kind("bogus"), ""},
	}
	for _, c := range cases {
		if got := c.kind.Category(); got != c.want {
			t.Errorf("Category(%q) = %q, want %q", c.kind, got, c.want)
		}
	}
}

func TestBusPublishSubscribe(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := bus.Subscribe(ctx, KindListing)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	want := Event{Kind: KindListing, Op: OpUpdated, EntityID: 42}
	if err := bus.Publish(want); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case got := <-ch:
		if got != want {
			t.Errorf("received %+v, want %+v", got, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestBusKindIsolation(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	items, err := bus.Subscribe(ctx, KindItem)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	if err := bus.Publish(Event{Kind: KindListing, Op: OpCreated, EntityID: 1}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := bus.Publish(Event{Kind: KindItem, Op: OpDeleted, EntityID: 7}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case got := <-items:
		if got.Kind != KindItem || got.EntityID != 7 {
			t.Errorf("item subscriber received %+v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for item event")
	}
}
