// Package kv implements the durable key-value capability behind the state
// store.
//
// A Backend is a flat key namespace of JSON-serializable values with an
// atomic batch operation. Two backends are provided:
//   - Memory: in-process, used by tests and the "memory" storage driver
//   - SQLite: a single kv table in a modernc.org/sqlite database
//
// Guarded wraps a Backend as the boundary the state layer talks to. Its
// single-key writes never return errors: failures are logged, counted and fed
// to a circuit breaker.
//
//	backend, err := kv.NewSQLite("data/retros.db", logger)
//	store := kv.NewGuarded(backend, kv.GuardOptions{Logger: logger})
//	store.Set("soundEnabled", true)
//	enabled := store.Get("soundEnabled", false)
package kv
