// Package main is the Universe CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/universeapp/universe/internal/cli"
	"github.com/universeapp/universe/internal/config"
	"github.com/universeapp/universe/internal/embedding"
	"github.com/universeapp/universe/internal/events"
	"github.com/universeapp/universe/internal/indexer"
	"github.com/universeapp/universe/internal/keyword"
	"github.com/universeapp/universe/internal/models"
	"github.com/universeapp/universe/internal/recommend"
	"github.com/universeapp/universe/internal/repo"
	"github.com/universeapp/universe/internal/server"
	"github.com/universeapp/universe/internal/vector"
	"github.com/universeapp/universe/internal/watcher"
	"github.com/universeapp/universe/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/universe/config.yaml"

// defaultServerURL is where "universe server" listens under a default config,
// so the client subcommands dial the right port out of the box.
var defaultServerURL = func() string {
	var cfg config.Config
	config.ApplyDefaults(&cfg)
	return fmt.Sprintf("http://%s:%d", cfg.Server.Host, cfg.Server.Port)
}()

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if that exists it is used,
// so that "universe server" from the project dir uses the project's config.
// Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "recommend":
		runRecommend()
	case "search":
		runSearch()
	case "rebuild":
		runRebuild()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("universe version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (index invalidation, event handling, etc.)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	runCtx, runCancel := context.WithCancel(context.Background())
	defer runCancel()

	invalidator := events.NewInvalidator(components.Bus, components.Store, logger)
	if err := invalidator.Start(runCtx); err != nil {
		logger.Fatal("Failed to start vector invalidator", zap.Error(err))
	}
	syncer := keyword.NewSyncer(components.Bus, components.Repo, components.Keyword, logger)
	if err := syncer.Start(runCtx); err != nil {
		logger.Fatal("Failed to start keyword syncer", zap.Error(err))
	}

	// Picks up index artifacts rewritten by external builders.
	watchSvc := watcher.NewWatcher(components.Store.Dir(), components.Store.Invalidate, logger)
	if err := watchSvc.Start(runCtx); err != nil {
		logger.Fatal("Failed to start artifact watcher", zap.Error(err))
	}
	defer watchSvc.Stop()

	srv := server.NewServer(
		components.Recommender,
		components.Rebuilder,
		components.Repo,
		components.Keyword,
		components.Store,
		&cfg.Server,
		logger,
	)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	runCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func runRecommend() {
	fs := flag.NewFlagSet("recommend", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = use local storage directly)")
	userID := fs.Int64("user", 0, "user ID to recommend for (required)")
	category := fs.String("category", "", "category: housing, marketplace, study_groups, or roommate (required)")
	limit := fs.Int("limit", 0, "number of results (0 = server default)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	if *userID <= 0 || *category == "" {
		fmt.Println("Usage: universe recommend -user <id> -category <name> [flags]")
		fs.PrintDefaults()
		os.Exit(1)
	}
	cat, err := models.ParseCategory(*category)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	format, err := cli.ParseFormat(*outputFormat)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	var list *cli.RecommendationList
	if *serverURL != "" {
		list, err = recommendViaHTTP(*serverURL, cat, *userID, *limit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Recommend failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		logger, err := utils.NewLogger(cfg.Debug)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		components, err := initializeComponents(cfg, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		defer components.Close()

		recs, err := components.Recommender.Recommend(context.Background(), cat, *userID, *limit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Recommend failed: %v\n", err)
			os.Exit(1)
		}
		list = &cli.RecommendationList{Category: cat, Recommendations: recs}
	}

	if err := cli.WriteRecommendations(os.Stdout, list, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func recommendViaHTTP(serverURL string, cat models.Category, userID int64, limit int) (*cli.RecommendationList, error) {
	u := fmt.Sprintf("%s/api/v1/recommendations/%s?user_id=%d", serverURL, cat, userID)
	if limit > 0 {
		u += fmt.Sprintf("&limit=%d", limit)
	}
	resp, err := http.Get(u)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var list cli.RecommendationList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &list, nil
}

// searchArgsReorder moves any flags (and their values) that appear after the query
// to the front of the slice so that flag.Parse() sees them. Go's flag package
// stops at the first non-flag argument.
func searchArgsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = use local index directly)")
	category := fs.String("category", "", "category: housing, marketplace, or study_groups (required)")
	limit := fs.Int("limit", 20, "number of results")
	fuzzy := fs.Bool("fuzzy", false, "enable fuzzy matching for typo tolerance")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(searchArgsReorder(os.Args[2:]))

	query := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if *category == "" || query == "" {
		fmt.Println("Usage: universe search -category <name> [flags] <query>")
		fs.PrintDefaults()
		os.Exit(1)
	}
	cat, err := models.ParseCategory(*category)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if !keyword.SearchableCategory(cat) {
		fmt.Printf("Category %s has no keyword search\n", cat)
		os.Exit(1)
	}
	format, err := cli.ParseFormat(*outputFormat)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	var list *cli.SearchResultList
	if *serverURL != "" {
		list, err = searchViaHTTP(*serverURL, cat, query, *limit, *fuzzy)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		index, err := keyword.NewBleveIndex(cfg.Storage.KeywordIndexDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open keyword index: %v\n", err)
			os.Exit(1)
		}
		defer index.Close()

		results, err := index.Search(context.Background(), cat, query, *limit, &keyword.SearchOptions{FuzzyEnabled: *fuzzy})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
		list = &cli.SearchResultList{Category: cat, Query: query, Results: results}
	}

	if err := cli.WriteSearchResults(os.Stdout, list, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func searchViaHTTP(serverURL string, cat models.Category, query string, limit int, fuzzy bool) (*cli.SearchResultList, error) {
	u := fmt.Sprintf("%s/api/v1/%s/search?q=%s&limit=%d", serverURL, cat, url.QueryEscape(query), limit)
	if fuzzy {
		u += "&fuzzy=true"
	}
	resp, err := http.Get(u)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var list cli.SearchResultList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &list, nil
}

func runRebuild() {
	fs := flag.NewFlagSet("rebuild", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	category := fs.String("category", "all", "category to rebuild, or \"all\"")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	ctx := context.Background()
	if *category == "all" {
		if err := components.Rebuilder.RebuildAll(ctx); err != nil {
			fmt.Printf("Rebuild failed: %v\n", err)
			os.Exit(1)
		}
		for _, cat := range models.AllCategories() {
			fmt.Printf("%-14s %d vector(s)\n", cat+":", components.Store.Size(cat))
		}
		return
	}

	cat, err := models.ParseCategory(*category)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := components.Rebuilder.Rebuild(ctx, cat); err != nil {
		fmt.Printf("Rebuild failed: %v\n", err)
		os.Exit(1)
	}
	components.Store.Invalidate(cat)
	fmt.Printf("%-14s %d vector(s)\n", cat+":", components.Store.Size(cat))
}

// statusResponse is the shape of GET /api/v1/status response.
type statusResponse struct {
	Records          repo.Counts       `json:"records"`
	VectorIndexSizes map[string]int    `json:"vector_index_sizes"`
	KeywordDocCounts map[string]uint64 `json:"keyword_doc_counts"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = use local storage directly)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	var status statusResponse
	if *serverURL != "" {
		res, err := statusViaHTTP(*serverURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		status = *res
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		logger, err := utils.NewLogger(cfg.Debug)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		components, err := initializeComponents(cfg, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		defer components.Close()

		counts, err := components.Repo.CountRecords(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Count records failed: %v\n", err)
			os.Exit(1)
		}
		status.Records = *counts
		status.VectorIndexSizes = make(map[string]int)
		status.KeywordDocCounts = make(map[string]uint64)
		for _, cat := range models.AllCategories() {
			status.VectorIndexSizes[string(cat)] = components.Store.Size(cat)
			if !keyword.SearchableCategory(cat) {
				continue
			}
			if n, err := components.Keyword.DocCount(cat); err == nil {
				status.KeywordDocCounts[string(cat)] = n
			}
		}
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Printf("listings:      %d\n", status.Records.Listings)
		fmt.Printf("items:         %d\n", status.Records.Items)
		fmt.Printf("study_groups:  %d\n", status.Records.StudyGroups)
		fmt.Printf("profiles:      %d\n", status.Records.Profiles)
		fmt.Println()
		fmt.Println("# vector index sizes")
		for _, cat := range models.AllCategories() {
			fmt.Printf("%-14s %d\n", cat+":", status.VectorIndexSizes[string(cat)])
		}
		if len(status.KeywordDocCounts) > 0 {
			fmt.Println()
			fmt.Println("# keyword document counts")
			for _, cat := range models.AllCategories() {
				if n, ok := status.KeywordDocCounts[string(cat)]; ok {
					fmt.Printf("%-14s %d\n", cat+":", n)
				}
			}
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func statusViaHTTP(serverURL string) (*statusResponse, error) {
	resp, err := http.Get(serverURL + "/api/v1/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var s statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &s, nil
}

// Components holds initialized services.
type Components struct {
	Bus         *events.Bus
	Repo        repo.Repository
	Embedder    embedding.Embedder
	Store       *vector.Store
	Keyword     keyword.Index
	Rebuilder   *indexer.Rebuilder
	Recommender *recommend.Service
}

func (c *Components) Close() {
	if c.Repo != nil {
		_ = c.Repo.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.Keyword != nil {
		_ = c.Keyword.Close()
	}
	if c.Bus != nil {
		_ = c.Bus.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	bus := events.NewBus()

	store, err := repo.NewSQLiteRepository(cfg.Storage.DatabasePath, bus)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	embedder, err := embedding.New(
		cfg.Embedding.Backend,
		cfg.Embedding.ModelPath,
		cfg.Embedding.Dimensions,
		cfg.Embedding.MaxTokens,
		cfg.Embedding.CacheSize,
	)
	if err != nil {
		// The mock backend keeps the service usable without a model file.
		if cfg.Embedding.Backend != "mock" {
			logger.Warn("embedder unavailable, falling back to mock",
				zap.String("backend", cfg.Embedding.Backend),
				zap.Error(err))
			embedder = embedding.NewMockEmbedder(cfg.Embedding.Dimensions)
		} else {
			return nil, fmt.Errorf("failed to initialize embedder: %w", err)
		}
	}

	vectorStore := vector.NewStore(cfg.Storage.VectorIndexDir, cfg.Embedding.Dimensions, vector.WithLogger(logger))

	keywordIndex, err := keyword.NewBleveIndex(cfg.Storage.KeywordIndexDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize keyword index: %w", err)
	}

	rebuilder := indexer.NewRebuilder(store, embedder, vectorStore, keywordIndex, cfg.Embedding.BatchSize, logger)
	recommender := recommend.NewService(store, embedder, vectorStore, cfg.Recommend, logger)

	return &Components{
		Bus:         bus,
		Repo:        store,
		Embedder:    embedder,
		Store:       vectorStore,
		Keyword:     keywordIndex,
		Rebuilder:   rebuilder,
		Recommender: recommender,
	}, nil
}

func printUsage() {
	fmt.Println(`universe - Retrieval and ranking core for student recommendations

Usage:
  universe server [flags]             Start the HTTP server
  universe recommend [flags]          Get recommendations for a user
  universe search [flags] <query>     Keyword search within a category
  universe rebuild [flags]            Rebuild vector and keyword indexes
  universe status [flags]             Show record counts and index sizes
  universe version                    Show version
  universe help                       Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/universe/config.yaml)
  --debug            Enable debug logging (index invalidation, event handling, etc.)

Recommend Flags:
  --user int         User ID to recommend for (required)
  --category string  Category: housing, marketplace, study_groups, or roommate (required)
  --limit int        Number of results (default: server default)
  --server string    Server URL (default: http://localhost:8000). Use empty (--server "") for direct storage.
  --config string    Config file path (for direct storage mode)
  --output string    Output format: text or json (default: text)

Search Flags:
  --category string  Category: housing, marketplace, or study_groups (required)
  --limit int        Number of results (default: 20)
  --fuzzy            Enable fuzzy matching for typo tolerance
  --server string    Server URL (default: http://localhost:8000). Use empty (--server "") for direct index access.
  --config string    Config file path (for direct index mode)
  --output string    Output format: text or json (default: text)

Rebuild Flags:
  --config string    Config file path
  --category string  Category to rebuild, or "all" (default: all)

Status Flags:
  --config string    Config file path (for direct storage mode)
  --server string    Server URL (default: http://localhost:8000). Use empty (--server "") for direct storage.
  --output string    Output format: text or json (default: text)

Examples:
  universe server
  universe recommend --user 42 --category housing
  universe recommend --user 42 --category roommate --limit 5 --output json
  universe search --category marketplace used textbook
  universe search --category housing --fuzzy "studo apartment"
  universe rebuild --category study_groups
  universe status
  universe status --output json`)
}
