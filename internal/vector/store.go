package vector

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/universeapp/universe/internal/models"
)

// extraCandidates is added to the internal search size on top of the
// exclusion count so exclusions cannot starve the result set.
const extraCandidates = 5

// Store owns the persisted per-category flat indexes and their process-wide
// in-memory cache. Build and Invalidate serialize against Search per
// category; operations on different categories do not block each other.
type Store struct {
	dir        string
	dimensions int
	logger     *zap.Logger

	mu      sync.Mutex
	entries map[models.Category]*storeEntry
}

// storeEntry holds the cached index for one category. index == nil with
// loaded == true means "looked on disk, nothing there".
type storeEntry struct {
	mu     sync.RWMutex
	loaded bool
	index  *FlatIndex
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets a logger for load/build events.
func WithLogger(l *zap.Logger) StoreOption {
	return func(s *Store) { s.logger = l }
}

// NewStore creates a store persisting indexes under dir.
func NewStore(dir string, dimensions int, opts ...StoreOption) *Store {
	s := &Store{
		dir:        dir,
		dimensions: dimensions,
		logger:     zap.NewNop(),
		entries:    make(map[models.Category]*storeEntry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the directory holding the persisted index files.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) vectorPath(cat models.Category) string {
	return filepath.Join(s.dir, string(cat)+".index")
}

func (s *Store) idPath(cat models.Category) string {
	return filepath.Join(s.dir, string(cat)+".ids")
}

// CategoryForFile maps a persisted index file name back to its category.
// Used by the index-directory watcher to invalidate on external rebuilds.
func CategoryForFile(name string) (models.Category, bool) {
	ext := filepath.Ext(name)
	if ext != ".index" && ext != ".ids" {
		return "", false
	}
	cat, err := models.ParseCategory(name[:len(name)-len(ext)])
	if err != nil {
		return "", false
	}
	return cat, true
}

func (s *Store) entry(cat models.Category) *storeEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[cat]
	if !ok {
		e = &storeEntry{}
		s.entries[cat] = e
	}
	return e
}

// Build constructs a fresh flat index for category from vectors and their
// parallel ids, persists both artifacts, and atomically replaces the cached
// entry. A mismatched vector/id count is an error and nothing is written.
// An empty input is a no-op: no files are touched and any existing index
// stays in place.
func (s *Store) Build(cat models.Category, vectors [][]float32, ids []int64) error {
	if len(vectors) != len(ids) {
		return fmt.Errorf("build %s: vector/id count mismatch: %d vectors, %d ids", cat, len(vectors), len(ids))
	}
	if len(vectors) == 0 {
		s.logger.Info("skipping empty index build", zap.String("category", string(cat)))
		return nil
	}

	idx, err := NewFlatIndex(s.dimensions, vectors, ids)
	if err != nil {
		return fmt.Errorf("build %s: %w", cat, err)
	}

	e := s.entry(cat)
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := idx.save(s.vectorPath(cat), s.idPath(cat)); err != nil {
		return fmt.Errorf("persist %s index: %w", cat, err)
	}
	e.index = idx
	e.loaded = true
	s.logger.Info("index built",
		zap.String("category", string(cat)),
		zap.Int("entries", idx.Size()),
	)
	return nil
}

// Search returns up to topK hits for query from the category's index,
// descending by score, never including an id in excludeIDs. Returns an empty
// result when no index exists. The index is asked for
// topK + len(excludeIDs) + 5 candidates (capped at its size) so exclusions
// do not shrink the final list.
func (s *Store) Search(cat models.Category, query []float32, topK int, excludeIDs map[int64]struct{}) ([]Hit, error) {
	if topK <= 0 {
		return nil, nil
	}
	e := s.entry(cat)

	e.mu.RLock()
	loaded, idx := e.loaded, e.index
	e.mu.RUnlock()
	if !loaded {
		idx = s.load(e, cat)
	}
	if idx == nil {
		return nil, nil
	}

	searchK := topK + len(excludeIDs) + extraCandidates
	if searchK > idx.Size() {
		searchK = idx.Size()
	}
	candidates, err := idx.Search(query, searchK)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", cat, err)
	}

	results := make([]Hit, 0, topK)
	for _, c := range candidates {
		if _, skip := excludeIDs[c.ID]; skip {
			continue
		}
		results = append(results, c)
		if len(results) >= topK {
			break
		}
	}
	return results, nil
}

// Size returns the entry count of the category's index, loading it if needed.
// Returns 0 when no index exists.
func (s *Store) Size(cat models.Category) int {
	e := s.entry(cat)
	e.mu.RLock()
	loaded, idx := e.loaded, e.index
	e.mu.RUnlock()
	if !loaded {
		idx = s.load(e, cat)
	}
	if idx == nil {
		return 0
	}
	return idx.Size()
}

// load reads the persisted index for cat into the cache entry. Absent files
// mean "no index"; corrupt files are logged and likewise treated as absent
// (an explicit rebuild recovers them).
func (s *Store) load(e *storeEntry, cat models.Category) *FlatIndex {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.loaded {
		return e.index
	}

	vecPath, idPath := s.vectorPath(cat), s.idPath(cat)
	if !fileExists(vecPath) || !fileExists(idPath) {
		e.index = nil
		e.loaded = true
		return nil
	}

	idx, err := loadFlatIndex(vecPath, idPath, s.dimensions)
	if err != nil {
		s.logger.Warn("failed to load persisted index, treating as absent",
			zap.String("category", string(cat)),
			zap.Error(err),
		)
		e.index = nil
		e.loaded = true
		return nil
	}

	e.index = idx
	e.loaded = true
	s.logger.Debug("index loaded from disk",
		zap.String("category", string(cat)),
		zap.Int("entries", idx.Size()),
	)
	return idx
}

// Invalidate evicts the cached entry for cat; the next Search reloads from
// disk. Durable files are untouched. Invalidating an uncached category is a
// no-op.
func (s *Store) Invalidate(cat models.Category) {
	e := s.entry(cat)
	e.mu.Lock()
	e.index = nil
	e.loaded = false
	e.mu.Unlock()
}

// InvalidateAll evicts every cached entry.
func (s *Store) InvalidateAll() {
	for _, cat := range models.AllCategories() {
		s.Invalidate(cat)
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
