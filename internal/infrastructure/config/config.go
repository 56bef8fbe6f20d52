package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
)

// FileEnv names the environment variable pointing at an optional TOML file.
const FileEnv = "RETROS_CONFIG"

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Storage   StorageConfig   `toml:"storage"`
	Store     StoreConfig     `toml:"store"`
	Snapshot  SnapshotConfig  `toml:"snapshot"`
	Logging   LogConfig       `toml:"logging"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
	CORS      CORSConfig      `toml:"cors"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000" toml:"port"`
	Host string `envconfig:"HOST" default:"0.0.0.0" toml:"host"`
}

// StorageConfig selects and tunes the durable key-value backend.
type StorageConfig struct {
	Driver          string        `envconfig:"STORAGE_DRIVER" default:"sqlite" toml:"driver"`
	Path            string        `envconfig:"STORAGE_PATH" default:"data/retros.db" toml:"path"`
	Timeout         time.Duration `envconfig:"KV_TIMEOUT" default:"2s" toml:"timeout"`
	BreakerFailures int           `envconfig:"KV_BREAKER_FAILURES" default:"5" toml:"breaker_failures"`
	BreakerCooldown time.Duration `envconfig:"KV_BREAKER_COOLDOWN" default:"30s" toml:"breaker_cooldown"`
}

// StoreConfig tunes the in-memory state tree.
type StoreConfig struct {
	MaxCascadeDepth int `envconfig:"STORE_MAX_CASCADE_DEPTH" default:"32" toml:"max_cascade_depth"`
	ZIndexBase      int `envconfig:"STORE_ZINDEX_BASE" default:"1000" toml:"zindex_base"`
}

// SnapshotConfig holds snapshot export settings.
type SnapshotConfig struct {
	ExportedFrom string `envconfig:"SNAPSHOT_EXPORTED_FROM" default:"RetrOS" toml:"exported_from"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info" toml:"level"`
	Development bool   `envconfig:"LOG_DEV" default:"false" toml:"development"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100" toml:"requests_per_second"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200" toml:"burst"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true" toml:"enabled"`
	// IdleTTL evicts per-client limiters not seen for this long.
	IdleTTL time.Duration `envconfig:"RATE_LIMIT_IDLE_TTL" default:"10m" toml:"idle_ttl"`
}

// CORSConfig lists the frontend origins allowed to call the API.
type CORSConfig struct {
	AllowOrigins []string `envconfig:"CORS_ORIGINS" default:"*" toml:"allow_origins"`
}

// Load loads configuration from environment variables, then applies the
// TOML file named by RETROS_CONFIG on top when it is set.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if path := os.Getenv(FileEnv); path != "" {
		if err := cfg.MergeFile(path); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// MergeFile overlays values from a TOML file. Keys absent from the file keep
// their current value.
func (c *Config) MergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "0.0.0.0",
		},
		Storage: StorageConfig{
			Driver:          "sqlite",
			Path:            "data/retros.db",
			Timeout:         2 * time.Second,
			BreakerFailures: 5,
			BreakerCooldown: 30 * time.Second,
		},
		Store: StoreConfig{
			MaxCascadeDepth: 32,
			ZIndexBase:      1000,
		},
		Snapshot: SnapshotConfig{
			ExportedFrom: "RetrOS",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
			IdleTTL:           10 * time.Minute,
		},
		CORS: CORSConfig{
			AllowOrigins: []string{"*"},
		},
	}
}
