package repo

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/universeapp/universe/internal/events"
	"github.com/universeapp/universe/internal/models"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	r, err := NewSQLiteRepository(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestSQLiteRepository_ListingCRUD(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	l := &models.Listing{
		PostedBy:    7,
		Title:       "Room near campus",
		Description: "Sunny room",
		City:        "Austin",
		RentPrice:   800,
		Bedrooms:    1,
		Bathrooms:   1,
		IsAvailable: true,
	}
	if err := r.CreateListing(ctx, l); err != nil {
		t.Fatal(err)
	}
	if l.ID == 0 {
		t.Fatal("ID should be assigned")
	}
	if l.PostedDate.IsZero() {
		t.Error("PostedDate should be set")
	}

	got, err := r.GetListing(ctx, l.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Room near campus" || got.RentPrice != 800 {
		t.Errorf("got %+v", got)
	}

	l.RentPrice = 850
	if err := r.UpdateListing(ctx, l); err != nil {
		t.Fatal(err)
	}
	got, _ = r.GetListing(ctx, l.ID)
	if got.RentPrice != 850 {
		t.Errorf("expected 850, got %v", got.RentPrice)
	}

	if err := r.DeleteListing(ctx, l.ID); err != nil {
		t.Fatal(err)
	}
	_, err = r.GetListing(ctx, l.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteRepository_ListAvailableListings(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	for i, avail := range []bool{true, false, true} {
		l := &models.Listing{PostedBy: 1, Title: "L", RentPrice: float64(500 + i), IsAvailable: avail}
		if err := r.CreateListing(ctx, l); err != nil {
			t.Fatal(err)
		}
	}

	avail, err := r.ListAvailableListings(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(avail) != 2 {
		t.Fatalf("expected 2 available, got %d", len(avail))
	}
	for _, l := range avail {
		if !l.IsAvailable {
			t.Errorf("listing %d is not available", l.ID)
		}
	}
}

func TestSQLiteRepository_ListRecentListingsNewestFirst(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 5; i++ {
		l := &models.Listing{PostedBy: 1, Title: "L", IsAvailable: true}
		if err := r.CreateListing(ctx, l); err != nil {
			t.Fatal(err)
		}
		ids = append(ids, l.ID)
	}

	// Newest overall but unavailable; recency must skip it.
	leased := &models.Listing{PostedBy: 1, Title: "leased", IsAvailable: false}
	if err := r.CreateListing(ctx, leased); err != nil {
		t.Fatal(err)
	}

	recent, err := r.ListRecentListings(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 3 {
		t.Fatalf("expected 3, got %d", len(recent))
	}
	for i, l := range recent {
		want := ids[len(ids)-1-i]
		if l.ID != want {
			t.Errorf("position %d: got id %d, want %d", i, l.ID, want)
		}
		if l.ID == leased.ID {
			t.Errorf("unavailable listing %d surfaced in recency list", leased.ID)
		}
	}
}

func TestSQLiteRepository_ItemEligibility(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	sold := &models.Item{Seller: 1, Title: "Old desk", IsSold: true}
	unsold := &models.Item{Seller: 1, Title: "Lamp", Price: 20}
	if err := r.CreateItem(ctx, sold); err != nil {
		t.Fatal(err)
	}
	if err := r.CreateItem(ctx, unsold); err != nil {
		t.Fatal(err)
	}

	items, err := r.ListUnsoldItems(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].ID != unsold.ID {
		t.Errorf("expected only unsold item, got %+v", items)
	}

	unsold.IsSold = true
	if err := r.UpdateItem(ctx, unsold); err != nil {
		t.Fatal(err)
	}
	items, _ = r.ListUnsoldItems(ctx)
	if len(items) != 0 {
		t.Errorf("expected no unsold items, got %d", len(items))
	}
}

func TestSQLiteRepository_GroupMembership(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	g := &models.StudyGroup{Creator: 1, Name: "Algorithms", MaxMembers: 3, IsActive: true}
	if err := r.CreateStudyGroup(ctx, g); err != nil {
		t.Fatal(err)
	}
	if g.MemberCount != 1 {
		t.Errorf("creator should be enrolled, count = %d", g.MemberCount)
	}

	if err := r.AddGroupMember(ctx, g.ID, 2); err != nil {
		t.Fatal(err)
	}
	if err := r.AddGroupMember(ctx, g.ID, 3); err != nil {
		t.Fatal(err)
	}
	if err := r.AddGroupMember(ctx, g.ID, 3); err == nil {
		t.Error("double enrollment should fail")
	}

	got, err := r.GetStudyGroup(ctx, g.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.MemberCount != 3 {
		t.Errorf("expected 3 members, got %d", got.MemberCount)
	}
	if !got.IsFull() {
		t.Error("group at max_members should be full")
	}

	if err := r.RemoveGroupMember(ctx, g.ID, 3); err != nil {
		t.Fatal(err)
	}
	got, _ = r.GetStudyGroup(ctx, g.ID)
	if got.IsFull() {
		t.Error("group below max_members should not be full")
	}
}

func TestSQLiteRepository_Profiles(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	p := &models.Profile{
		UserID:      10,
		FirstName:   "Dana",
		LastName:    "Kim",
		CourseMajor: "CS",
		Bio:         "Third year, into systems programming",
	}
	if err := r.CreateProfile(ctx, p); err != nil {
		t.Fatal(err)
	}

	got, err := r.GetProfileByUserID(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != p.ID || got.FirstName != "Dana" {
		t.Errorf("got %+v", got)
	}

	_, err = r.GetRoommateProfile(ctx, 10)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing roommate profile, got %v", err)
	}

	moveIn := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	rp := &models.RoommateProfile{
		UserID:          10,
		SleepHabits:     "early_bird",
		MaxRentBudget:   900,
		PreferredMoveIn: &moveIn,
	}
	if err := r.UpsertRoommateProfile(ctx, rp); err != nil {
		t.Fatal(err)
	}

	gotRP, err := r.GetRoommateProfile(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if gotRP.MaxRentBudget != 900 || gotRP.SleepHabits != "early_bird" {
		t.Errorf("got %+v", gotRP)
	}
	if gotRP.PreferredMoveIn == nil || !gotRP.PreferredMoveIn.Equal(moveIn) {
		t.Errorf("move-in date not preserved: %v", gotRP.PreferredMoveIn)
	}

	rp.MaxRentBudget = 950
	if err := r.UpsertRoommateProfile(ctx, rp); err != nil {
		t.Fatal(err)
	}
	gotRP, _ = r.GetRoommateProfile(ctx, 10)
	if gotRP.MaxRentBudget != 950 {
		t.Errorf("upsert should replace budget, got %v", gotRP.MaxRentBudget)
	}
}

func TestSQLiteRepository_ListRecentProfilesExcludesUser(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	for userID := int64(1); userID <= 4; userID++ {
		p := &models.Profile{UserID: userID, FirstName: "U"}
		if err := r.CreateProfile(ctx, p); err != nil {
			t.Fatal(err)
		}
	}

	recent, err := r.ListRecentProfiles(ctx, 10, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 3 {
		t.Fatalf("expected 3 profiles, got %d", len(recent))
	}
	for _, p := range recent {
		if p.UserID == 2 {
			t.Error("excluded user present in results")
		}
	}
}

func TestSQLiteRepository_GetByIDs(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	a := &models.Item{Seller: 1, Title: "A"}
	b := &models.Item{Seller: 1, Title: "B"}
	if err := r.CreateItem(ctx, a); err != nil {
		t.Fatal(err)
	}
	if err := r.CreateItem(ctx, b); err != nil {
		t.Fatal(err)
	}

	got, err := r.GetItemsByIDs(ctx, []int64{a.ID, b.ID, 9999})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 items, got %d", len(got))
	}
	if got[a.ID].Title != "A" || got[b.ID].Title != "B" {
		t.Errorf("got %+v", got)
	}

	empty, err := r.GetItemsByIDs(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(empty) != 0 {
		t.Errorf("expected empty map, got %d entries", len(empty))
	}
}

func TestSQLiteRepository_MutationsPublishEvents(t *testing.T) {
	bus := events.NewBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := bus.Subscribe(ctx, events.KindListing)
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "events.db")
	r, err := NewSQLiteRepository(path, bus)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	l := &models.Listing{PostedBy: 1, Title: "L", IsAvailable: true}
	if err := r.CreateListing(ctx, l); err != nil {
		t.Fatal(err)
	}

	select {
	case ev := <-ch:
		if ev.Kind != events.KindListing || ev.Op != events.OpCreated || ev.EntityID != l.ID {
			t.Errorf("unexpected event %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for mutation event")
	}
}
