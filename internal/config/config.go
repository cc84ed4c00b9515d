package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Bind      string           `json:"bind"`
	Port      int              `json:"port"`
	LogConfig logger.LogConfig `json:"log_config"`
	Server    ServerConfig     `json:"server"`
	Database  DatabaseConfig   `json:"database"`
	AI        AIConfig         `json:"ai"`
	Embedding EmbeddingConfig  `json:"embedding"`
	Retrieval RetrievalConfig  `json:"retrieval"`
	FileStore FileStoreConfig  `json:"file_store"`
	CI        CIConfig         `json:"ci"`
	Cleanup   CleanupConfig    `json:"cleanup"`
}

// ServerConfig tunes the HTTP surface. An empty origin list allows every
// origin; a zero rate limit window disables throttling; a zero upload limit
// accepts files of any size.
type ServerConfig struct {
	CORSOrigins         []string `json:"cors_origins"`
	RateLimitWindowSecs int      `json:"rate_limit_window_secs"`
	MaxUploadMB         int      `json:"max_upload_mb"`
}

type DatabaseConfig struct {
	Driver   string `json:"driver"`
	Path     string `json:"path"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	SSLMode  string `json:"ssl_mode"`
	DSN      string `json:"dsn"`
}

// ProviderRef names one provider/model pair in a fallback chain. Data is
// passed through to the provider factory untouched.
type ProviderRef struct {
	Provider string      `json:"provider"`
	Model    string      `json:"model"`
	Data     interface{} `json:"data"`
}

type AIConfig struct {
	Providers []ProviderRef `json:"providers"`
	Timeout   int           `json:"timeout"`
}

type EmbeddingConfig struct {
	Providers []ProviderRef `json:"providers"`
	Dim       int           `json:"dim"`
	Cache     CacheConfig   `json:"cache"`
}

type CacheConfig struct {
	MemSize    int  `json:"mem_size"`
	MemTTLSecs int  `json:"mem_ttl_secs"`
	Persist    bool `json:"persist"`
}

type RetrievalConfig struct {
	ChunkSize      int    `json:"chunk_size"`
	ChunkOverlap   int    `json:"chunk_overlap"`
	Collection     string `json:"collection"`
	DefaultResults int    `json:"default_results"`
}

type FileStoreConfig struct {
	Type      string   `json:"type"`
	Dir       string   `json:"dir"`
	PublicURL string   `json:"public_url"`
	S3        S3Config `json:"s3"`
}

type S3Config struct {
	Endpoint  string `json:"endpoint"`
	SecretID  string `json:"secret_id"`
	SecretKey string `json:"secret_key"`
	Bucket    string `json:"bucket"`
	Region    string `json:"region"`
	Prefix    string `json:"prefix"`
	PublicURL string `json:"public_url"`
	UseSSL    bool   `json:"use_ssl"`
}

type CIConfig struct {
	BaseURL            string `json:"base_url"`
	TriggerTimeoutSecs int    `json:"trigger_timeout_secs"`
	PollTimeoutSecs    int    `json:"poll_timeout_secs"`
}

type CleanupConfig struct {
	Schedule         string `json:"schedule"`
	UploadMaxAgeDays int    `json:"upload_max_age_days"`
	CacheMaxAgeDays  int    `json:"cache_max_age_days"`
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
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	switch cfg.Database.Driver {
	case "sqlite":
		if cfg.Database.Path == "" {
			return nil, fmt.Errorf("database.path is required for sqlite")
		}
	case "postgres":
		if cfg.Database.DSN == "" && (cfg.Database.Host == "" || cfg.Database.DBName == "") {
			return nil, fmt.Errorf("database.dsn or database.host/db_name are required for postgres")
		}
	default:
		return nil, fmt.Errorf("database.driver must be sqlite or postgres")
	}
	if cfg.Retrieval.ChunkSize == 0 {
		cfg.Retrieval.ChunkSize = 500
	}
	if cfg.Retrieval.ChunkOverlap == 0 {
		cfg.Retrieval.ChunkOverlap = 50
	}
	if cfg.Retrieval.Collection == "" {
		cfg.Retrieval.Collection = "qa_documents"
	}
	if cfg.Retrieval.DefaultResults == 0 {
		cfg.Retrieval.DefaultResults = 5
	}
	if cfg.Embedding.Dim == 0 {
		cfg.Embedding.Dim = 384
	}
	if cfg.Embedding.Cache.MemSize == 0 {
		cfg.Embedding.Cache.MemSize = 2048
	}
	if cfg.Embedding.Cache.MemTTLSecs == 0 {
		cfg.Embedding.Cache.MemTTLSecs = 3600
	}
	if cfg.FileStore.Type == "" {
		cfg.FileStore.Type = "local"
	}
	switch cfg.FileStore.Type {
	case "local":
		if cfg.FileStore.Dir == "" {
			return nil, fmt.Errorf("file_store.dir is required for local store")
		}
	case "s3":
		if cfg.FileStore.S3.Endpoint == "" || cfg.FileStore.S3.Bucket == "" || cfg.FileStore.S3.SecretID == "" || cfg.FileStore.S3.SecretKey == "" {
			return nil, fmt.Errorf("file_store.s3 endpoint/bucket/secret_id/secret_key are required for s3 store")
		}
		if cfg.FileStore.S3.Region == "" {
			cfg.FileStore.S3.Region = "cn"
		}
	default:
		return nil, fmt.Errorf("file_store.type must be local or s3")
	}
	if cfg.CI.BaseURL == "" {
		cfg.CI.BaseURL = "http://localhost:5000"
	}
	if cfg.CI.TriggerTimeoutSecs == 0 {
		cfg.CI.TriggerTimeoutSecs = 30
	}
	if cfg.CI.PollTimeoutSecs == 0 {
		cfg.CI.PollTimeoutSecs = 10
	}
	if cfg.Cleanup.Schedule == "" {
		cfg.Cleanup.Schedule = "0 3 * * *"
	}
	if cfg.Cleanup.UploadMaxAgeDays == 0 {
		cfg.Cleanup.UploadMaxAgeDays = 7
	}
	if cfg.Cleanup.CacheMaxAgeDays == 0 {
		cfg.Cleanup.CacheMaxAgeDays = 30
	}
	return &cfg, nil
}
