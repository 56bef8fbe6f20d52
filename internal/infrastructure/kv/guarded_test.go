package kv

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morroware/retrosv2-sub000/internal/infrastructure/monitoring"
	"github.com/morroware/retrosv2-sub000/internal/infrastructure/resilience"
)

var errQuota = errors.New("quota exceeded")

// failingBackend fails every write while failWrites is set.
type failingBackend struct {
	*Memory
	failWrites bool
	writes     int
}

func (f *failingBackend) Set(ctx context.Context, key string, value any) error {
	f.writes++
	if f.failWrites {
		return errQuota
	}
	return f.Memory.Set(ctx, key, value)
}

func (f *failingBackend) Apply(ctx context.Context, ops []Op) error {
	f.writes++
	if f.failWrites {
		return errQuota
	}
	return f.Memory.Apply(ctx, ops)
}

func TestGuardedGetDefault(t *testing.T) {
	g := NewGuarded(NewMemory(), GuardOptions{})

	assert.Equal(t, "fallback", g.Get("missing", "fallback"))
	require.True(t, g.Set("petType", "cat"))
	assert.Equal(t, "cat", g.Get("petType", "fallback"))

	_, ok := g.Lookup("missing")
	assert.False(t, ok)
}

func TestGuardedSwallowsWriteFailures(t *testing.T) {
	backend := &failingBackend{Memory: NewMemory(), failWrites: true}
	metrics := monitoring.NewMetrics(prometheus.NewRegistry())
	g := NewGuarded(backend, GuardOptions{BreakerFailures: 10, Metrics: metrics})

	assert.False(t, g.Set("desktopIcons", []any{}))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.DurableOps.WithLabelValues("set", "error")))
}

func TestGuardedBreakerStopsHammering(t *testing.T) {
	backend := &failingBackend{Memory: NewMemory(), failWrites: true}
	g := NewGuarded(backend, GuardOptions{BreakerFailures: 2})

	for i := 0; i < 5; i++ {
		g.Set("k", i)
	}

	assert.Equal(t, 2, backend.writes)
	assert.Equal(t, resilience.StateOpen, g.BreakerState())
}

func TestGuardedApplyReturnsError(t *testing.T) {
	backend := &failingBackend{Memory: NewMemory(), failWrites: true}
	g := NewGuarded(backend, GuardOptions{BreakerFailures: 10})

	err := g.Apply([]Op{Set("a", 1)})
	assert.ErrorIs(t, err, errQuota)
	assert.NoError(t, g.Apply(nil))
}

func TestGuardedRemoveAndClear(t *testing.T) {
	g := NewGuarded(NewMemory(), GuardOptions{})
	g.Set("a", 1)
	g.Set("b", 2)

	assert.True(t, g.Remove("a"))
	assert.Nil(t, g.Get("a", nil))
	assert.True(t, g.Clear())
	assert.Nil(t, g.Get("b", nil))
}
