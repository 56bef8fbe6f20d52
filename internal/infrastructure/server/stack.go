package server

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/morroware/retrosv2-sub000/internal/domain/desktop"
	"github.com/morroware/retrosv2-sub000/internal/domain/persistence"
	"github.com/morroware/retrosv2-sub000/internal/domain/snapshot"
	"github.com/morroware/retrosv2-sub000/internal/domain/state"
	"github.com/morroware/retrosv2-sub000/internal/infrastructure/config"
	"github.com/morroware/retrosv2-sub000/internal/infrastructure/events"
	"github.com/morroware/retrosv2-sub000/internal/infrastructure/kv"
	"github.com/morroware/retrosv2-sub000/internal/infrastructure/logging"
	"github.com/morroware/retrosv2-sub000/internal/infrastructure/monitoring"
)

// Storage drivers accepted by config.StorageConfig.Driver.
const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Stack is the state service without its HTTP surface.
type Stack struct {
	Backend   kv.Backend
	Durable   *kv.Guarded
	Bus       *events.Bus
	Bridge    *persistence.Bridge
	Store     *state.Store
	Desktop   *desktop.Desktop
	Snapshots *snapshot.Service
}

// OpenStack opens the configured backend and hydrates a store from it.
// metrics may be nil.
func OpenStack(cfg *config.Config, logger *logging.Logger, metrics *monitoring.Metrics) (*Stack, error) {
	backend, err := openBackend(cfg.Storage, logger.Component("kv"))
	if err != nil {
		return nil, err
	}

	durable := kv.NewGuarded(backend, kv.GuardOptions{
		Timeout:         cfg.Storage.Timeout,
		BreakerFailures: cfg.Storage.BreakerFailures,
		BreakerCooldown: cfg.Storage.BreakerCooldown,
		Logger:          logger.Component("kv"),
		Metrics:         metrics,
	})

	bus := events.NewBus(logger.Component("events"))
	bridge := persistence.NewBridge(durable, bus, logger.Component("persistence"))

	store := state.New(bridge.Initial(),
		state.WithLogger(logger.Component("state")),
		state.WithPersister(bridge),
		state.WithEmitter(bus),
		state.WithMetrics(metrics),
		state.WithMaxCascadeDepth(cfg.Store.MaxCascadeDepth),
		state.WithZIndexBase(cfg.Store.ZIndexBase),
	)

	dt := desktop.New(store, bus, logger.Component("desktop")).WithMetrics(metrics)

	snapshots := snapshot.NewService(store, durable, snapshot.Options{
		ExportedFrom: cfg.Snapshot.ExportedFrom,
		Emitter:      bus,
		Logger:       logger.Component("snapshot"),
		Metrics:      metrics,
	})

	return &Stack{
		Backend:   backend,
		Durable:   durable,
		Bus:       bus,
		Bridge:    bridge,
		Store:     store,
		Desktop:   dt,
		Snapshots: snapshots,
	}, nil
}

// Close releases the durable backend.
func (s *Stack) Close() error {
	return s.Backend.Close()
}

func openBackend(cfg config.StorageConfig, logger *zap.Logger) (kv.Backend, error) {
	switch cfg.Driver {
	case DriverMemory:
		logger.Info("using in-memory durable store; state will not survive restarts")
		return kv.NewMemory(), nil
	case DriverSQLite, "":
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create storage directory: %w", err)
			}
		}
		backend, err := kv.NewSQLite(cfg.Path, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		logger.Info("opened sqlite durable store", zap.String("path", cfg.Path))
		return backend, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
