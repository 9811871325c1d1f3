// Package server provides the HTTP API for Universe.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/universeapp/universe/internal/config"
	"github.com/universeapp/universe/internal/indexer"
	"github.com/universeapp/universe/internal/keyword"
	"github.com/universeapp/universe/internal/recommend"
	"github.com/universeapp/universe/internal/repo"
	"github.com/universeapp/universe/internal/vector"
)

// Server is the HTTP server for the Universe API.
type Server struct {
	recommender *recommend.Service
	rebuilder   *indexer.Rebuilder
	repo        repo.Repository
	keyword     keyword.Index
	store       *vector.Store
	config      *config.ServerConfig
	logger      *zap.Logger
	server      *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	recommender *recommend.Service,
	rebuilder *indexer.Rebuilder,
	r repo.Repository,
	kw keyword.Index,
	store *vector.Store,
	cfg *config.ServerConfig,
	logger *zap.Logger,
) *Server {
	return &Server{
		recommender: recommender,
		rebuilder:   rebuilder,
		repo:        r,
		keyword:     kw,
		store:       store,
		config:      cfg,
		logger:      logger,
	}
}

// Router builds the chi router with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Get("/api/v1/recommendations/{category}", s.handleRecommendations)
	r.Get("/api/v1/{category}/search", s.handleKeywordSearch)
	r.Post("/api/v1/admin/rebuild", s.handleRebuild)

	r.Post("/api/v1/listings", s.handleCreateListing)
	r.Get("/api/v1/listings/{id}", s.handleGetListing)
	r.Put("/api/v1/listings/{id}", s.handleUpdateListing)
	r.Delete("/api/v1/listings/{id}", s.handleDeleteListing)

	r.Post("/api/v1/items", s.handleCreateItem)
	r.Get("/api/v1/items/{id}", s.handleGetItem)
	r.Put("/api/v1/items/{id}", s.handleUpdateItem)
	r.Delete("/api/v1/items/{id}", s.handleDeleteItem)

	r.Post("/api/v1/groups", s.handleCreateGroup)
	r.Get("/api/v1/groups/{id}", s.handleGetGroup)
	r.Put("/api/v1/groups/{id}", s.handleUpdateGroup)
	r.Delete("/api/v1/groups/{id}", s.handleDeleteGroup)
	r.Post("/api/v1/groups/{id}/members/{userID}", s.handleJoinGroup)
	r.Delete("/api/v1/groups/{id}/members/{userID}", s.handleLeaveGroup)

	r.Post("/api/v1/profiles", s.handleCreateProfile)
	r.Get("/api/v1/profiles/{userID}", s.handleGetProfile)
	r.Put("/api/v1/profiles/{userID}", s.handleUpdateProfile)
	r.Put("/api/v1/profiles/{userID}/roommate", s.handleUpsertRoommateProfile)
	r.Get("/api/v1/profiles/{userID}/roommate", s.handleGetRoommateProfile)

	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/health", s.handleHealth)

	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
