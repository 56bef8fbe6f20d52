package resilience

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBackend = errors.New("disk full")

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestBreaker(threshold int, clock *fakeClock, transitions *[]string) *Breaker {
	return New("test", Settings{
		FailureThreshold: threshold,
		Cooldown:         time.Minute,
		Now:              clock.Now,
		OnStateChange: func(name string, from State, to State) {
			if transitions != nil {
				*transitions = append(*transitions, from.String()+"->"+to.String())
			}
		},
	})
}

func fail() error    { return errBackend }
func succeed() error { return nil }

func TestBreakerStateTransitions(t *testing.T) {
	tests := []struct {
		name          string
		calls         []func() error
		expectedState State
	}{
		{
			name:          "stays closed on successes",
			calls:         []func() error{succeed, succeed, succeed},
			expectedState: StateClosed,
		},
		{
			name:          "stays closed below threshold",
			calls:         []func() error{fail, fail, succeed, fail},
			expectedState: StateClosed,
		},
		{
			name:          "opens after consecutive failures",
			calls:         []func() error{fail, fail, fail},
			expectedState: StateOpen,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := &fakeClock{now: time.Unix(0, 0)}
			breaker := newTestBreaker(3, clock, nil)

			for _, call := range tt.calls {
				_ = breaker.Do(call)
			}

			assert.Equal(t, tt.expectedState, breaker.State())
		})
	}
}

func TestBreakerRejectsWhileOpen(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	breaker := newTestBreaker(2, clock, nil)

	_ = breaker.Do(fail)
	_ = breaker.Do(fail)

	called := false
	err := breaker.Do(func() error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestBreakerRecoversAfterCooldown(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	var transitions []string
	breaker := newTestBreaker(2, clock, &transitions)

	_ = breaker.Do(fail)
	_ = breaker.Do(fail)
	require.Equal(t, StateOpen, breaker.State())

	clock.Advance(time.Minute)
	assert.Equal(t, StateHalfOpen, breaker.State())

	require.NoError(t, breaker.Do(succeed))
	assert.Equal(t, StateClosed, breaker.State())
	assert.Equal(t, 0, breaker.Failures())
	assert.Equal(t, []string{"closed->open", "open->half-open", "half-open->closed"}, transitions)
}

func TestBreakerTrialFailureReopens(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	breaker := newTestBreaker(1, clock, nil)

	_ = breaker.Do(fail)
	clock.Advance(time.Minute)

	assert.ErrorIs(t, breaker.Do(fail), errBackend)
	assert.Equal(t, StateOpen, breaker.State())
}

func TestBreakerDefaults(t *testing.T) {
	breaker := New("kv", Settings{})
	assert.Equal(t, "kv", breaker.Name())
	assert.Equal(t, 5, breaker.settings.FailureThreshold)
	assert.Equal(t, 30*time.Second, breaker.settings.Cooldown)
}
