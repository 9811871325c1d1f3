package indexer

import (
	"context"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/universeapp/universe/internal/embedding"
	"github.com/universeapp/universe/internal/models"
	"github.com/universeapp/universe/internal/repo"
	"github.com/universeapp/universe/internal/vector"
)

const testDims = 32

func newTestEnv(t *testing.T) (*repo.SQLiteRepository, *Rebuilder, *vector.Store) {
	t.Helper()
	dir := t.TempDir()
	r, err := repo.NewSQLiteRepository(filepath.Join(dir, "test.db"), nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { r.Close() })

	store := vector.NewStore(filepath.Join(dir, "indexes"), testDims)
	embedder := embedding.NewMockEmbedder(testDims)
	rb := NewRebuilder(r, embedder, store, nil, 8, zap.NewNop())
	return r, rb, store
}

func TestRebuilder_HousingIndexesOnlyAvailable(t *testing.T) {
	r, rb, store := newTestEnv(t)
	ctx := context.Background()

	avail := &models.Listing{PostedBy: 1, Title: "Near campus", IsAvailable: true}
	gone := &models.Listing{PostedBy: 1, Title: "Taken", IsAvailable: false}
	if err := r.CreateListing(ctx, avail); err != nil {
		t.Fatal(err)
	}
	if err := r.CreateListing(ctx, gone); err != nil {
		t.Fatal(err)
	}

	if err := rb.Rebuild(ctx, models.CategoryHousing); err != nil {
		t.Fatal(err)
	}
	if got := store.Size(models.CategoryHousing); got != 1 {
		t.Errorf("expected 1 indexed listing, got %d", got)
	}
}

func TestRebuilder_EmptyCategorySkipped(t *testing.T) {
	_, rb, store := newTestEnv(t)
	ctx := context.Background()

	if err := rb.Rebuild(ctx, models.CategoryMarketplace); err != nil {
		t.Fatal(err)
	}
	if got := store.Size(models.CategoryMarketplace); got != 0 {
		t.Errorf("expected no index, got size %d", got)
	}
}

func TestRebuilder_RoommateKeyedByUserID(t *testing.T) {
	r, rb, store := newTestEnv(t)
	ctx := context.Background()

	p := &models.Profile{UserID: 77, FirstName: "A", Bio: "likes quiet evenings and hiking"}
	if err := r.CreateProfile(ctx, p); err != nil {
		t.Fatal(err)
	}
	// profile row id differs from user id
	if p.ID == p.UserID {
		t.Fatalf("test requires distinct profile and user ids, both %d", p.ID)
	}

	if err := rb.Rebuild(ctx, models.CategoryRoommate); err != nil {
		t.Fatal(err)
	}

	embedder := embedding.NewMockEmbedder(testDims)
	vec, err := embedder.Embed(ctx, "quiet evenings")
	if err != nil {
		t.Fatal(err)
	}
	hits, err := store.Search(models.CategoryRoommate, vec, 5, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].ID != 77 {
		t.Errorf("expected hit keyed by user id 77, got %+v", hits)
	}
}

func TestRebuilder_RebuildAll(t *testing.T) {
	r, rb, store := newTestEnv(t)
	ctx := context.Background()

	if err := r.CreateListing(ctx, &models.Listing{PostedBy: 1, Title: "L", IsAvailable: true}); err != nil {
		t.Fatal(err)
	}
	if err := r.CreateItem(ctx, &models.Item{Seller: 1, Title: "I"}); err != nil {
		t.Fatal(err)
	}
	if err := r.CreateStudyGroup(ctx, &models.StudyGroup{Creator: 1, Name: "G", IsActive: true}); err != nil {
		t.Fatal(err)
	}
	if err := r.CreateProfile(ctx, &models.Profile{UserID: 5}); err != nil {
		t.Fatal(err)
	}

	if err := rb.RebuildAll(ctx); err != nil {
		t.Fatal(err)
	}
	for _, cat := range models.AllCategories() {
		if got := store.Size(cat); got != 1 {
			t.Errorf("category %s: expected size 1, got %d", cat, got)
		}
	}
}
