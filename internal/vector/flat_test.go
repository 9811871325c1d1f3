package vector

import "testing"

func TestFlatIndexSearch(t *testing.T) {
	vecs := [][]float32{
		{1, 0, 0},
		{0.9, 0.1, 0},
		{0, 1, 0},
	}
	idx, err := NewFlatIndex(3, vecs, []int64{10, 20, 30})
	if err != nil {
		t.Fatal(err)
	}
	if idx.Size() != 3 {
		t.Errorf("Size = %d", idx.Size())
	}

	hits, err := idx.Search([]float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].ID != 10 {
		t.Errorf("top hit should be 10, got %d", hits[0].ID)
	}
	if hits[0].Score < hits[1].Score {
		t.Error("hits not sorted by score descending")
	}
}

func TestFlatIndexSelfSimilarity(t *testing.T) {
	// A stored unit vector queried with itself must come back first with
	// score ~1.0.
	vecs := [][]float32{
		{0, 1, 0},
		{1, 0, 0},
	}
	idx, err := NewFlatIndex(3, vecs, []int64{1, 2})
	if err != nil {
		t.Fatal(err)
	}
	hits, err := idx.Search([]float32{1, 0, 0}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if hits[0].ID != 2 {
		t.Fatalf("expected id 2 first, got %d", hits[0].ID)
	}
	if hits[0].Score < 0.999 || hits[0].Score > 1.001 {
		t.Errorf("self-similarity score = %f, want ~1.0", hits[0].Score)
	}
}

func TestFlatIndexCountMismatch(t *testing.T) {
	if _, err := NewFlatIndex(2, [][]float32{{1, 0}}, []int64{1, 2}); err == nil {
		t.Error("expected error for vector/id count mismatch")
	}
}

func TestFlatIndexDimensionMismatch(t *testing.T) {
	if _, err := NewFlatIndex(3, [][]float32{{1, 0}}, []int64{1}); err == nil {
		t.Error("expected error for wrong vector dimension")
	}

	idx, err := NewFlatIndex(2, [][]float32{{1, 0}}, []int64{1})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := idx.Search([]float32{1, 0, 0}, 1); err == nil {
		t.Error("expected error for wrong query dimension")
	}
}

func TestFlatIndexKLargerThanSize(t *testing.T) {
	idx, err := NewFlatIndex(2, [][]float32{{1, 0}}, []int64{7})
	if err != nil {
		t.Fatal(err)
	}
	hits, err := idx.Search([]float32{1, 0}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Errorf("expected 1 hit, got %d", len(hits))
	}
}
