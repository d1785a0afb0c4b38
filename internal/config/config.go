package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port          int              `json:"port"`
	LogConfig     logger.LogConfig `json:"log_config"`
	Database      DatabaseConfig   `json:"database"`
	AI            AIConfig         `json:"ai"`
	Retrieval     RetrievalConfig  `json:"retrieval"`
	Ingest        IngestConfig     `json:"ingest"`
	FileStore     FileStoreConfig  `json:"file_store"`
	CORSAllowlist []string         `json:"cors_allowlist"`
	Jobs          JobsConfig       `json:"jobs"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	SSLMode  string `json:"sslmode"`
}

type AIEndpointConfig struct {
	Provider string      `json:"provider"`
	Model    string      `json:"model"`
	Data     interface{} `json:"data"`
}

type AIConfig struct {
	Chat     AIEndpointConfig `json:"chat"`
	Embed    AIEndpointConfig `json:"embed"`
	EmbedDim int              `json:"embed_dim"`
	Timeout  int              `json:"timeout"`
}

type RetrievalConfig struct {
	TopK         int `json:"top_k"`
	SuggestTopK  int `json:"suggest_top_k"`
	PerSourceCap int `json:"per_source_cap"`
	GlobalCap    int `json:"global_cap"`
}

type IngestConfig struct {
	ChunkSize     int `json:"chunk_size"`
	ChunkOverlap  int `json:"chunk_overlap"`
	MaxFileSizeMB int `json:"max_file_size_mb"`
}

type FileStoreConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type JobsConfig struct {
	EmbedCacheCleanupSpec string `json:"embed_cache_cleanup_spec"`
	EmbedCacheMaxAgeDays  int    `json:"embed_cache_max_age_days"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("port is required")
	}
	if cfg.Database.DSN == "" && cfg.Database.Host == "" {
		return nil, fmt.Errorf("database.dsn or database.host is required")
	}
	if cfg.AI.Chat.Provider == "" || cfg.AI.Chat.Model == "" {
		return nil, fmt.Errorf("ai.chat provider/model are required")
	}
	if cfg.AI.Embed.Provider == "" || cfg.AI.Embed.Model == "" {
		return nil, fmt.Errorf("ai.embed provider/model are required")
	}
	if cfg.AI.EmbedDim == 0 {
		cfg.AI.EmbedDim = 768
	}
	if cfg.AI.Timeout == 0 {
		cfg.AI.Timeout = 60
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 15
	}
	if cfg.Retrieval.SuggestTopK == 0 {
		cfg.Retrieval.SuggestTopK = 20
	}
	if cfg.Retrieval.PerSourceCap == 0 {
		cfg.Retrieval.PerSourceCap = 10
	}
	if cfg.Retrieval.GlobalCap == 0 {
		cfg.Retrieval.GlobalCap = 30
	}
	if cfg.Ingest.ChunkSize == 0 {
		cfg.Ingest.ChunkSize = 300
	}
	if cfg.Ingest.ChunkOverlap == 0 {
		cfg.Ingest.ChunkOverlap = 60
	}
	if cfg.Ingest.MaxFileSizeMB == 0 {
		cfg.Ingest.MaxFileSizeMB = 20
	}
	if cfg.FileStore.Type == "" {
		cfg.FileStore.Type = "local"
	}
	if cfg.Jobs.EmbedCacheCleanupSpec == "" {
		cfg.Jobs.EmbedCacheCleanupSpec = "0 3 * * *"
	}
	if cfg.Jobs.EmbedCacheMaxAgeDays == 0 {
		cfg.Jobs.EmbedCacheMaxAgeDays = 30
	}
	return &cfg, nil
}
