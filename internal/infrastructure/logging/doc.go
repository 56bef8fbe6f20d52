// Package logging builds the server's zap logger.
//
// Production mode writes JSON lines; development mode writes colored
// console output. Subsystems receive a *zap.Logger tagged with their name
// via Component, so store, persistence and snapshot lines can be filtered
// independently.
//
//	logger := logging.FromLevel(cfg.Logging.Level, cfg.Logging.Development)
//	storeLog := logger.Component("state")
//	storeLog.Warn("cascade depth exceeded", zap.String("path", path))
package logging
