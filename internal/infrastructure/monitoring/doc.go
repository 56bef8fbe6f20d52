/*
Package monitoring provides Prometheus metrics for the desktop state service.

It tracks HTTP traffic, state tree writes, subscriber cascades, durable
key-value operations, snapshot imports and exports, open windows,
achievement unlocks and WebSocket connections.

Collectors are registered on a caller-supplied prometheus.Registerer so the
server can use the default registry while tests use a private one.

	metrics := monitoring.NewMetrics(prometheus.DefaultRegisterer)
	router.Use(monitoring.Middleware(metrics))
	metrics.RecordStateWrite(true)
*/
package monitoring
