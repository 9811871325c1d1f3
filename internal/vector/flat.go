// Package vector provides the flat inner-product index and the per-category
// index store used for semantic retrieval.
package vector

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/universeapp/universe/pkg/utils"
)

// Hit is a single nearest-neighbor result.
type Hit struct {
	ID    int64
	Score float64 // inner product; equals cosine similarity for unit vectors
}

// FlatIndex is a flat (exhaustive) inner-product index over a fixed set of
// vectors with a parallel entity-id list. The i-th vector always corresponds
// to the i-th id; the two are built and persisted together. A FlatIndex is
// immutable after construction.
type FlatIndex struct {
	dimensions int
	ids        []int64
	vectors    [][]float32
}

// NewFlatIndex builds an index over vectors with the given parallel ids.
// Returns an error if the counts differ or any vector has the wrong dimension.
func NewFlatIndex(dimensions int, vectors [][]float32, ids []int64) (*FlatIndex, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	if len(vectors) != len(ids) {
		return nil, fmt.Errorf("vector/id count mismatch: %d vectors, %d ids", len(vectors), len(ids))
	}
	stored := make([][]float32, len(vectors))
	for i, v := range vectors {
		if len(v) != dimensions {
			return nil, fmt.Errorf("vector %d dimension mismatch: got %d, expected %d", i, len(v), dimensions)
		}
		vec := make([]float32, dimensions)
		copy(vec, v)
		stored[i] = vec
	}
	storedIDs := make([]int64, len(ids))
	copy(storedIDs, ids)
	return &FlatIndex{dimensions: dimensions, ids: storedIDs, vectors: stored}, nil
}

// Search returns the top-k entries by inner product, descending. Ties keep
// insertion order (stable sort).
func (f *FlatIndex) Search(query []float32, k int) ([]Hit, error) {
	if len(query) != f.dimensions {
		return nil, fmt.Errorf("query dimension mismatch: got %d, expected %d", len(query), f.dimensions)
	}
	if k <= 0 || len(f.ids) == 0 {
		return nil, nil
	}
	hits := make([]Hit, len(f.ids))
	for i, vec := range f.vectors {
		hits[i] = Hit{ID: f.ids[i], Score: utils.InnerProduct(query, vec)}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}

// Size returns the number of stored vectors.
func (f *FlatIndex) Size() int {
	return len(f.ids)
}

// IDs returns the stored entity-id list in index order.
func (f *FlatIndex) IDs() []int64 {
	out := make([]int64, len(f.ids))
	copy(out, f.ids)
	return out
}

// save writes the vectors and the id list as two separate files. Format of
// the vector file: dimensions (u32), count (u32), then count*dimensions
// float32 LE. Format of the id file: count (u32), then count int64 LE.
func (f *FlatIndex) save(vecPath, idPath string) error {
	if err := os.MkdirAll(filepath.Dir(vecPath), 0755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}

	vf, err := os.Create(vecPath)
	if err != nil {
		return fmt.Errorf("create vector file: %w", err)
	}
	defer vf.Close()
	if err := binary.Write(vf, binary.LittleEndian, uint32(f.dimensions)); err != nil {
		return fmt.Errorf("write dimensions: %w", err)
	}
	if err := binary.Write(vf, binary.LittleEndian, uint32(len(f.ids))); err != nil {
		return fmt.Errorf("write count: %w", err)
	}
	buf := make([]byte, f.dimensions*4)
	for _, vec := range f.vectors {
		for i, v := range vec {
			binary.LittleEndian.PutUint32(buf[i*4:(i+1)*4], math.Float32bits(v))
		}
		if _, err := vf.Write(buf); err != nil {
			return fmt.Errorf("write vector: %w", err)
		}
	}

	idf, err := os.Create(idPath)
	if err != nil {
		return fmt.Errorf("create id file: %w", err)
	}
	defer idf.Close()
	if err := binary.Write(idf, binary.LittleEndian, uint32(len(f.ids))); err != nil {
		return fmt.Errorf("write id count: %w", err)
	}
	for _, id := range f.ids {
		if err := binary.Write(idf, binary.LittleEndian, id); err != nil {
			return fmt.Errorf("write id: %w", err)
		}
	}
	return nil
}

// loadFlatIndex reads an index from its two files. Both files must exist and
// agree on the entry count.
func loadFlatIndex(vecPath, idPath string, dimensions int) (*FlatIndex, error) {
	vf, err := os.Open(vecPath)
	if err != nil {
		return nil, fmt.Errorf("open vector file: %w", err)
	}
	defer vf.Close()

	var dim, n uint32
	if err := binary.Read(vf, binary.LittleEndian, &dim); err != nil {
		return nil, fmt.Errorf("read dimensions: %w", err)
	}
	if int(dim) != dimensions {
		return nil, fmt.Errorf("dimension mismatch: file has %d, store expects %d", dim, dimensions)
	}
	if err := binary.Read(vf, binary.LittleEndian, &n); err != nil {
		return nil, fmt.Errorf("read count: %w", err)
	}
	vectors := make([][]float32, 0, n)
	buf := make([]byte, dimensions*4)
	for i := uint32(0); i < n; i++ {
		if _, err := io.ReadFull(vf, buf); err != nil {
			return nil, fmt.Errorf("read vector %d: %w", i, err)
		}
		vec := make([]float32, dimensions)
		for j := range vec {
			vec[j] = math.Float32frombits(binary.LittleEndian.Uint32(buf[j*4 : (j+1)*4]))
		}
		vectors = append(vectors, vec)
	}

	idf, err := os.Open(idPath)
	if err != nil {
		return nil, fmt.Errorf("open id file: %w", err)
	}
	defer idf.Close()

	var idCount uint32
	if err := binary.Read(idf, binary.LittleEndian, &idCount); err != nil {
		return nil, fmt.Errorf("read id count: %w", err)
	}
	if idCount != n {
		return nil, fmt.Errorf("id/vector count mismatch: %d ids, %d vectors", idCount, n)
	}
	ids := make([]int64, idCount)
	for i := range ids {
		if err := binary.Read(idf, binary.LittleEndian, &ids[i]); err != nil {
			return nil, fmt.Errorf("read id %d: %w", i, err)
		}
	}

	return &FlatIndex{dimensions: dimensions, ids: ids, vectors: vectors}, nil
}
