// Package middleware provides the HTTP middleware of the state service.
//
// Middleware stack includes:
//   - RequestID: X-Request-ID propagation (req_<ulid> when absent)
//   - Logger: one zap line per request, level by status class
//   - CORS: Cross-origin resource sharing with configurable origins
//   - RateLimit: Per-IP token bucket rate limiting with idle eviction
//
// Example Usage:
//
//	router.Use(middleware.RequestID(), middleware.Logger(log))
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
package middleware
