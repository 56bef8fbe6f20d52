package kv

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/morroware/retrosv2-sub000/internal/infrastructure/monitoring"
	"github.com/morroware/retrosv2-sub000/internal/infrastructure/resilience"
)

// GuardOptions tunes a Guarded store.
type GuardOptions struct {
	Timeout         time.Duration
	BreakerFailures int
	BreakerCooldown time.Duration
	Logger          *zap.Logger
	Metrics         *monitoring.Metrics
}

// Guarded is the durable boundary seen by the state layer: get with a
// default, set returning a bool, remove and clear. Backend errors are logged
// and counted here and never reach the caller, because the in-memory tree has
// already committed by the time a mirror write happens. Writes pass through
// a circuit breaker so a persistently failing backend is not hammered.
type Guarded struct {
	backend Backend
	breaker *resilience.Breaker
	timeout time.Duration
	logger  *zap.Logger
	metrics *monitoring.Metrics
}

// NewGuarded wraps backend.
func NewGuarded(backend Backend, opts GuardOptions) *Guarded {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}

	breaker := resilience.New("kv", resilience.Settings{
		FailureThreshold: opts.BreakerFailures,
		Cooldown:         opts.BreakerCooldown,
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Warn("durable store breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Guarded{
		backend: backend,
		breaker: breaker,
		timeout: timeout,
		logger:  logger,
		metrics: opts.Metrics,
	}
}

// Backend returns the wrapped backend.
func (g *Guarded) Backend() Backend {
	return g.backend
}

// BreakerState reports the write breaker state.
func (g *Guarded) BreakerState() resilience.State {
	return g.breaker.State()
}

// Lookup returns the stored value and whether the key exists. Read errors
// are logged and reported as absent.
func (g *Guarded) Lookup(key string) (any, bool) {
	ctx, cancel := g.context()
	defer cancel()

	start := time.Now()
	value, ok, err := g.backend.Get(ctx, key)
	g.metrics.RecordDurableOp("get", err, time.Since(start))
	if err != nil {
		g.logger.Error("durable read failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return value, ok
}

// Get returns the stored value or def when the key is absent or unreadable.
func (g *Guarded) Get(key string, def any) any {
	if value, ok := g.Lookup(key); ok {
		return value
	}
	return def
}

// Set writes value under key and reports whether it was stored.
func (g *Guarded) Set(key string, value any) bool {
	return g.write("set", key, func(ctx context.Context) error {
		return g.backend.Set(ctx, key, value)
	})
}

// Remove deletes key and reports whether the delete succeeded.
func (g *Guarded) Remove(key string) bool {
	return g.write("remove", key, func(ctx context.Context) error {
		return g.backend.Remove(ctx, key)
	})
}

// Clear deletes every key and reports whether it succeeded.
func (g *Guarded) Clear() bool {
	return g.write("clear", "", func(ctx context.Context) error {
		return g.backend.Clear(ctx)
	})
}

// Apply writes a batch atomically. Unlike the single-key writes its error is
// returned, since snapshot import must not swap the live tree when the
// durable side did not commit.
func (g *Guarded) Apply(ops []Op) error {
	if len(ops) == 0 {
		return nil
	}

	ctx, cancel := g.context()
	defer cancel()

	start := time.Now()
	err := g.breaker.Do(func() error {
		return g.backend.Apply(ctx, ops)
	})
	g.metrics.RecordDurableOp("apply", err, time.Since(start))
	if err != nil {
		g.logger.Error("durable batch failed", zap.Int("ops", len(ops)), zap.Error(err))
	}
	return err
}

func (g *Guarded) write(op, key string, fn func(ctx context.Context) error) bool {
	ctx, cancel := g.context()
	defer cancel()

	start := time.Now()
	err := g.breaker.Do(func() error {
		return fn(ctx)
	})
	g.metrics.RecordDurableOp(op, err, time.Since(start))
	if err != nil {
		g.logger.Error("durable write failed",
			zap.String("op", op),
			zap.String("key", key),
			zap.Error(err),
		)
		return false
	}
	return true
}

func (g *Guarded) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), g.timeout)
}
