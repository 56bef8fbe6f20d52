// Package main is the entry point for the RetrOS state server.
//
// The server holds the desktop's state tree in memory, mirrors the persisted
// paths to a durable key-value store, and exposes the tree over REST and a
// WebSocket change stream.
//
// Configuration:
//   - Environment variables (12-factor)
//   - Optional TOML file named by RETROS_CONFIG
//   - CLI flags (override both)
//
// Usage:
//
//	# Production mode
//	./server -port 8000 -db data/retros.db
//
//	# Development mode (colored logs, debug level, throwaway state)
//	./server -dev -memory
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
