package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/universe/data/db/universe.db"
	}
	if cfg.Storage.VectorIndexDir == "" {
		cfg.Storage.VectorIndexDir = "/usr/local/var/universe/data/indexes/vector"
	}
	if cfg.Storage.KeywordIndexDir == "" {
		cfg.Storage.KeywordIndexDir = "/usr/local/var/universe/data/indexes/keyword"
	}
	if cfg.Embedding.Backend == "" {
		cfg.Embedding.Backend = "onnx"
	}
	if cfg.Embedding.ModelPath == "" {
		cfg.Embedding.ModelPath = "/usr/local/var/universe/data/models/all-MiniLM-L6-v2.onnx"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Embedding.BatchSize == 0 {
		cfg.Embedding.BatchSize = 32
	}
	if cfg.Recommend.DefaultLimit == 0 {
		cfg.Recommend.DefaultLimit = 10
	}
	if cfg.Recommend.MaxLimit == 0 {
		cfg.Recommend.MaxLimit = 50
	}
	if cfg.Recommend.OverfetchMultiplier == 0 {
		cfg.Recommend.OverfetchMultiplier = 3
	}
	if cfg.Recommend.BudgetSlackPercent == 0 {
		cfg.Recommend.BudgetSlackPercent = 20
	}
}
