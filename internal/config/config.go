// Package config provides configuration loading and structs for the Universe server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Recommend RecommendConfig `yaml:"recommend"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds paths for the database and index directories.
type StorageConfig struct {
	DatabasePath    string `yaml:"database_path"`
	VectorIndexDir  string `yaml:"vector_index_dir"`
	KeywordIndexDir string `yaml:"keyword_index_dir"`
}

// EmbeddingConfig holds embedder settings. Backend selects the implementation:
// "onnx" (default, requires the model file and onnxruntime) or "mock"
// (deterministic, for development without a model).
type EmbeddingConfig struct {
	Backend    string `yaml:"backend"`
	ModelPath  string `yaml:"model_path"`
	Dimensions int    `yaml:"dimensions"`
	MaxTokens  int    `yaml:"max_tokens"`
	CacheSize  int    `yaml:"cache_size"`
	BatchSize  int    `yaml:"batch_size"`
}

// RecommendConfig holds recommendation pipeline settings.
type RecommendConfig struct {
	DefaultLimit int `yaml:"default_limit"`
	MaxLimit     int `yaml:"max_limit"`
	// OverfetchMultiplier is how many times top_k the content categories
	// request from the vector index to absorb hybrid-filter losses.
	OverfetchMultiplier int `yaml:"overfetch_multiplier"`
	// BudgetSlackPercent is how far over a user's stated rent budget a
	// listing may be and still pass the housing filter (20 = 120% of budget).
	BudgetSlackPercent int `yaml:"budget_slack_percent"`
}

// Load reads and parses the config file at path, applies defaults, and
// expands relative paths. Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.VectorIndexDir = expandPath(cfg.Storage.VectorIndexDir, configDir)
	cfg.Storage.KeywordIndexDir = expandPath(cfg.Storage.KeywordIndexDir, configDir)
	cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)

	return &cfg, nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative
// to configDir; other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
