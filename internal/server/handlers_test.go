package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/universeapp/universe/internal/config"
	"github.com/universeapp/universe/internal/embedding"
	"github.com/universeapp/universe/internal/indexer"
	"github.com/universeapp/universe/internal/keyword"
	"github.com/universeapp/universe/internal/models"
	"github.com/universeapp/universe/internal/recommend"
	"github.com/universeapp/universe/internal/repo"
	"github.com/universeapp/universe/internal/vector"
)

const testDims = 32

func newTestServer(t *testing.T) (*Server, *repo.SQLiteRepository) {
	t.Helper()
	dir := t.TempDir()
	logger := zap.NewNop()

	r, err := repo.NewSQLiteRepository(filepath.Join(dir, "test.db"), nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { r.Close() })

	kw, err := keyword.NewBleveIndex(filepath.Join(dir, "keyword"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { kw.Close() })

	store := vector.NewStore(filepath.Join(dir, "indexes"), testDims)
	embedder := embedding.NewMockEmbedder(testDims)
	rb := indexer.NewRebuilder(r, embedder, store, kw, 8, logger)
	svc := recommend.NewService(r, embedder, store, config.RecommendConfig{
		DefaultLimit:        10,
		MaxLimit:            50,
		OverfetchMultiplier: 3,
		BudgetSlackPercent:  20,
	}, logger)

	srv := NewServer(svc, rb, r, kw, store, &config.ServerConfig{Host: "127.0.0.1", Port: 0}, logger)
	return srv, r
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Router(), http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestListingCRUDRoundTrip(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Router()

	rec := doJSON(t, router, http.MethodPost, "/api/v1/listings", models.Listing{
		PostedBy:    1,
		Title:       "Studio downtown",
		RentPrice:   750,
		IsAvailable: true,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created models.Listing
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created.ID == 0 {
		t.Fatal("created listing has no id")
	}

	rec = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/listings/%d", created.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rec.Code)
	}

	created.RentPrice = 800
	rec = doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/v1/listings/%d", created.ID), created)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/v1/listings/%d", created.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/listings/%d", created.ID), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404, got %d", rec.Code)
	}
}

func TestRecommendationsEndpoint(t *testing.T) {
	srv, r := newTestServer(t)
	router := srv.Router()
	ctx := context.Background()

	if err := r.CreateProfile(ctx, &models.Profile{UserID: 1}); err != nil {
		t.Fatal(err)
	}
	if err := r.CreateItem(ctx, &models.Item{Seller: 2, Title: "Bike"}); err != nil {
		t.Fatal(err)
	}

	rec := doJSON(t, router, http.MethodGet, "/api/v1/recommendations/marketplace?user_id=1&limit=5", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Category        string                  `json:"category"`
		Recommendations []models.Recommendation `json:"recommendations"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Category != "marketplace" {
		t.Errorf("category = %q", resp.Category)
	}
	if len(resp.Recommendations) != 1 || resp.Recommendations[0].Score != 0.0 {
		t.Errorf("expected one fallback result, got %+v", resp.Recommendations)
	}
}

func TestRecommendationsValidation(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Router()

	rec := doJSON(t, router, http.MethodGet, "/api/v1/recommendations/unknown?user_id=1", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad category: expected 400, got %d", rec.Code)
	}
	rec = doJSON(t, router, http.MethodGet, "/api/v1/recommendations/housing", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing user_id: expected 400, got %d", rec.Code)
	}
}

func TestRebuildAndKeywordSearch(t *testing.T) {
	srv, r := newTestServer(t)
	router := srv.Router()
	ctx := context.Background()

	if err := r.CreateItem(ctx, &models.Item{Seller: 1, Title: "Acoustic guitar", Description: "Mint condition"}); err != nil {
		t.Fatal(err)
	}

	rec := doJSON(t, router, http.MethodPost, "/api/v1/admin/rebuild?category=all", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("rebuild: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/api/v1/marketplace/search?q=guitar", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("search: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Results []keyword.Result `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 1 {
		t.Errorf("expected 1 keyword hit, got %+v", resp.Results)
	}
}

func TestKeywordSearchValidation(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Router()

	rec := doJSON(t, router, http.MethodGet, "/api/v1/roommate/search?q=x", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("roommate search: expected 400, got %d", rec.Code)
	}
	rec = doJSON(t, router, http.MethodGet, "/api/v1/housing/search", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing q: expected 400, got %d", rec.Code)
	}
}

func TestJoinGroupFullConflict(t *testing.T) {
	srv, r := newTestServer(t)
	router := srv.Router()
	ctx := context.Background()

	g := &models.StudyGroup{Creator: 1, Name: "Tiny group", MaxMembers: 1, IsActive: true}
	if err := r.CreateStudyGroup(ctx, g); err != nil {
		t.Fatal(err)
	}

	rec := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/groups/%d/members/2", g.ID), nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("full group join: expected 409, got %d", rec.Code)
	}
}

func TestProfileAndRoommateEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Router()

	rec := doJSON(t, router, http.MethodPost, "/api/v1/profiles", models.Profile{UserID: 9, FirstName: "Ana"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create profile: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/api/v1/profiles/9/roommate", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing roommate profile: expected 404, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPut, "/api/v1/profiles/9/roommate", models.RoommateProfile{
		SleepHabits:   "night_owl",
		MaxRentBudget: 700,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("upsert roommate: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/api/v1/profiles/9/roommate", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get roommate: expected 200, got %d", rec.Code)
	}
	var rp models.RoommateProfile
	if err := json.Unmarshal(rec.Body.Bytes(), &rp); err != nil {
		t.Fatal(err)
	}
	if rp.UserID != 9 || rp.MaxRentBudget != 700 {
		t.Errorf("got %+v", rp)
	}
}

func TestStatusEndpoint(t *testing.T) {
	srv, r := newTestServer(t)
	router := srv.Router()

	if err := r.CreateItem(context.Background(), &models.Item{Seller: 1, Title: "I"}); err != nil {
		t.Fatal(err)
	}

	rec := doJSON(t, router, http.MethodGet, "/api/v1/status", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Records struct {
			Items int64 `json:"items"`
		} `json:"records"`
		VectorIndexSizes map[string]int `json:"vector_index_sizes"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Records.Items != 1 {
		t.Errorf("expected 1 item, got %d", resp.Records.Items)
	}
	if len(resp.VectorIndexSizes) != 4 {
		t.Errorf("expected 4 categories, got %v", resp.VectorIndexSizes)
	}
}
