package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  host: 0.0.0.0
  port: 9000
storage:
  database_path: ./data/universe.db
embedding:
  backend: mock
  dimensions: 8
recommend:
  default_limit: 5
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug {
		t.Error("debug should be true")
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.Embedding.Backend != "mock" || cfg.Embedding.Dimensions != 8 {
		t.Errorf("embedding = %+v", cfg.Embedding)
	}
	if cfg.Recommend.DefaultLimit != 5 {
		t.Errorf("default limit = %d", cfg.Recommend.DefaultLimit)
	}
	// "./" paths expand relative to the config dir.
	want := filepath.Join(dir, "data/universe.db")
	if cfg.Storage.DatabasePath != want {
		t.Errorf("database path = %q, want %q", cfg.Storage.DatabasePath, want)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config")
	}
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	ApplyDefaults(&cfg)
	if cfg.Server.Port != 8000 {
		t.Errorf("default port = %d", cfg.Server.Port)
	}
	if cfg.Embedding.Dimensions != 384 {
		t.Errorf("default dimensions = %d", cfg.Embedding.Dimensions)
	}
	if cfg.Embedding.Backend != "onnx" {
		t.Errorf("default backend = %q", cfg.Embedding.Backend)
	}
	if cfg.Recommend.OverfetchMultiplier != 3 {
		t.Errorf("default overfetch = %d", cfg.Recommend.OverfetchMultiplier)
	}
	if cfg.Recommend.BudgetSlackPercent != 20 {
		t.Errorf("default budget slack = %d", cfg.Recommend.BudgetSlackPercent)
	}
}

func TestApplyDefaultsKeepsExplicit(t *testing.T) {
	cfg := Config{Server: ServerConfig{Port: 1234}}
	ApplyDefaults(&cfg)
	if cfg.Server.Port != 1234 {
		t.Errorf("explicit port overwritten: %d", cfg.Server.Port)
	}
}
