package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/universeapp/universe/internal/keyword"
	"github.com/universeapp/universe/internal/models"
	"github.com/universeapp/universe/internal/repo"
)

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	cat, err := models.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	s.logger.Debug("recommendation request",
		zap.String("category", string(cat)),
		zap.Int64("user_id", userID),
		zap.Int("limit", limit))

	recs, err := s.recommender.Recommend(r.Context(), cat, userID, limit)
	if err != nil {
		s.logger.Error("recommendation failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if recs == nil {
		recs = []models.Recommendation{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"category":        cat,
		"recommendations": recs,
	})
}

func (s *Server) handleKeywordSearch(w http.ResponseWriter, r *http.Request) {
	cat, err := models.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !keyword.SearchableCategory(cat) {
		s.respondError(w, http.StatusBadRequest, "category has no keyword search")
		return
	}
	query := r.URL.Query().Get("q")
	if query == "" {
		s.respondError(w, http.StatusBadRequest, "q is required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 20
	}
	opts := &keyword.SearchOptions{
		FuzzyEnabled: r.URL.Query().Get("fuzzy") == "true",
	}

	results, err := s.keyword.Search(r.Context(), cat, query, limit, opts)
	if err != nil {
		s.logger.Error("keyword search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if results == nil {
		results = []keyword.Result{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"category": cat,
		"query":    query,
		"results":  results,
	})
}

func (s *Server) handleRebuild(w http.ResponseWriter, r *http.Request) {
	sel := r.URL.Query().Get("category")
	if sel == "" || sel == "all" {
		s.logger.Info("rebuilding all indexes")
		if err := s.rebuilder.RebuildAll(r.Context()); err != nil {
			s.logger.Error("rebuild failed", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.respondJSON(w, http.StatusOK, map[string]string{"status": "rebuilt", "category": "all"})
		return
	}

	cat, err := models.ParseCategory(sel)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Info("rebuilding index", zap.String("category", string(cat)))
	if err := s.rebuilder.Rebuild(r.Context(), cat); err != nil {
		s.logger.Error("rebuild failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.store.Invalidate(cat)
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "rebuilt", "category": string(cat)})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	counts, err := s.repo.CountRecords(r.Context())
	if err != nil {
		s.logger.Error("status: count records failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	indexSizes := make(map[string]int, len(models.AllCategories()))
	for _, cat := range models.AllCategories() {
		indexSizes[string(cat)] = s.store.Size(cat)
	}

	keywordCounts := make(map[string]uint64)
	for _, cat := range models.AllCategories() {
		if !keyword.SearchableCategory(cat) {
			continue
		}
		n, err := s.keyword.DocCount(cat)
		if err != nil {
			continue
		}
		keywordCounts[string(cat)] = n
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"records":            counts,
		"vector_index_sizes": indexSizes,
		"keyword_doc_counts": keywordCounts,
	})
}

// urlID parses the {id} path parameter.
func urlID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

// respondRepoError maps ErrNotFound to 404 and everything else to 500.
func (s *Server) respondRepoError(w http.ResponseWriter, err error) {
	if errors.Is(err, repo.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, err.Error())
		return
	}
	s.logger.Error("repository error", zap.Error(err))
	s.respondError(w, http.StatusInternalServerError, err.Error())
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
