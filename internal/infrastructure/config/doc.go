// Package config provides 12-factor configuration for the desktop state
// service.
//
// Configuration is loaded from environment variables with defaults. When
// RETROS_CONFIG names a TOML file, its values are applied on top of the
// environment.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host)
//   - Storage: durable key-value backend (sqlite or memory), timeouts, breaker
//   - Store: cascade depth guard and z-index base
//   - Snapshot: exportedFrom label stamped into snapshots
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting configuration
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Server running on %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//
// Environment Variables:
//   - PORT, HOST
//   - STORAGE_DRIVER, STORAGE_PATH, KV_TIMEOUT, KV_BREAKER_FAILURES, KV_BREAKER_COOLDOWN
//   - STORE_MAX_CASCADE_DEPTH, STORE_ZINDEX_BASE
//   - SNAPSHOT_EXPORTED_FROM
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
package config
