package vector

import (
	"os"
	"testing"

	"github.com/universeapp/universe/internal/models"
)

func unitVecs() ([][]float32, []int64) {
	vecs := [][]float32{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
	return vecs, []int64{1, 2, 3}
}

func TestStoreBuildSearch(t *testing.T) {
	s := NewStore(t.TempDir(), 3)
	vecs, ids := unitVecs()
	if err := s.Build(models.CategoryHousing, vecs, ids); err != nil {
		t.Fatal(err)
	}

	hits, err := s.Search(models.CategoryHousing, []float32{0, 1, 0}, 2, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].ID != 2 {
		t.Errorf("top hit = %d, want 2", hits[0].ID)
	}
}

func TestStoreSearchNeverExceedsTopK(t *testing.T) {
	s := NewStore(t.TempDir(), 3)
	vecs, ids := unitVecs()
	if err := s.Build(models.CategoryMarketplace, vecs, ids); err != nil {
		t.Fatal(err)
	}
	hits, err := s.Search(models.CategoryMarketplace, []float32{1, 0, 0}, 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) > 1 {
		t.Errorf("got %d hits, want at most 1", len(hits))
	}
}

func TestStoreSearchExcludes(t *testing.T) {
	s := NewStore(t.TempDir(), 3)
	vecs, ids := unitVecs()
	if err := s.Build(models.CategoryRoommate, vecs, ids); err != nil {
		t.Fatal(err)
	}

	// id 1's own vector is its nearest neighbor; exclusion must suppress it.
	hits, err := s.Search(models.CategoryRoommate, []float32{1, 0, 0}, 3, map[int64]struct{}{1: {}})
	if err != nil {
		t.Fatal(err)
	}
	for _, h := range hits {
		if h.ID == 1 {
			t.Fatal("excluded id returned")
		}
	}
	if len(hits) != 2 {
		t.Errorf("expected 2 hits after exclusion, got %d", len(hits))
	}
}

func TestStoreSearchNoIndex(t *testing.T) {
	s := NewStore(t.TempDir(), 3)
	hits, err := s.Search(models.CategoryStudyGroups, []float32{1, 0, 0}, 5, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Errorf("expected no hits without an index, got %d", len(hits))
	}
}

func TestStoreBuildEmptyIsNoOp(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir, 3)
	vecs, ids := unitVecs()
	if err := s.Build(models.CategoryHousing, vecs, ids); err != nil {
		t.Fatal(err)
	}

	// Empty build must not crash and must leave the existing index alone.
	if err := s.Build(models.CategoryHousing, nil, nil); err != nil {
		t.Fatal(err)
	}
	hits, err := s.Search(models.CategoryHousing, []float32{1, 0, 0}, 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].ID != 1 {
		t.Errorf("existing index disturbed by empty build: %+v", hits)
	}
}

func TestStoreBuildCountMismatch(t *testing.T) {
	s := NewStore(t.TempDir(), 3)
	err := s.Build(models.CategoryHousing, [][]float32{{1, 0, 0}}, []int64{1, 2})
	if err == nil {
		t.Fatal("expected error for mismatched counts")
	}
	// Nothing may have been written.
	if s.Size(models.CategoryHousing) != 0 {
		t.Error("index exists after failed build")
	}
}

func TestStoreInvalidateReloads(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir, 3)
	vecs, ids := unitVecs()
	if err := s.Build(models.CategoryHousing, vecs, ids); err != nil {
		t.Fatal(err)
	}

	// Idempotent: two invalidations behave like one.
	s.Invalidate(models.CategoryHousing)
	s.Invalidate(models.CategoryHousing)

	hits, err := s.Search(models.CategoryHousing, []float32{0, 0, 1}, 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].ID != 3 {
		t.Errorf("reload after invalidate failed: %+v", hits)
	}
}

func TestStoreColdProcessRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir, 3)
	vecs, ids := unitVecs()
	if err := s.Build(models.CategoryMarketplace, vecs, ids); err != nil {
		t.Fatal(err)
	}
	warm, err := s.Search(models.CategoryMarketplace, []float32{0, 1, 0}, 3, nil)
	if err != nil {
		t.Fatal(err)
	}

	// A fresh store over the same dir simulates a process restart.
	fresh := NewStore(dir, 3)
	cold, err := fresh.Search(models.CategoryMarketplace, []float32{0, 1, 0}, 3, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(cold) != len(warm) {
		t.Fatalf("cold=%d warm=%d results", len(cold), len(warm))
	}
	for i := range warm {
		if cold[i].ID != warm[i].ID || cold[i].Score != warm[i].Score {
			t.Errorf("result %d differs: cold=%+v warm=%+v", i, cold[i], warm[i])
		}
	}
	if fresh.Size(models.CategoryMarketplace) != 3 {
		t.Errorf("cold size = %d", fresh.Size(models.CategoryMarketplace))
	}
}

func TestStoreCorruptFilesTreatedAsAbsent(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir, 3)
	vecs, ids := unitVecs()
	if err := s.Build(models.CategoryHousing, vecs, ids); err != nil {
		t.Fatal(err)
	}
	s.Invalidate(models.CategoryHousing)
	if err := os.WriteFile(s.vectorPath(models.CategoryHousing), []byte("garbage"), 0644); err != nil {
		t.Fatal(err)
	}

	hits, err := s.Search(models.CategoryHousing, []float32{1, 0, 0}, 3, nil)
	if err != nil {
		t.Fatalf("corrupt index must not error the request: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("expected no hits from corrupt index, got %d", len(hits))
	}
}

func TestCategoryForFile(t *testing.T) {
	cat, ok := CategoryForFile("housing.index")
	if !ok || cat != models.CategoryHousing {
		t.Errorf("housing.index -> %v %v", cat, ok)
	}
	cat, ok = CategoryForFile("study_groups.ids")
	if !ok || cat != models.CategoryStudyGroups {
		t.Errorf("study_groups.ids -> %v %v", cat, ok)
	}
	if _, ok := CategoryForFile("random.txt"); ok {
		t.Error("random.txt should not map to a category")
	}
	if _, ok := CategoryForFile("bogus.index"); ok {
		t.Error("bogus.index should not map to a category")
	}
}
