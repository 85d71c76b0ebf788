package resilience

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBreaker(t *testing.T, cfg CircuitBreakerConfig) (*CircuitBreaker, *time.Time) {
	t.Helper()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(NewStore(t.TempDir()), "http://localhost:3000", cfg)
	cb.now = func() time.Time { return now }
	return cb, &now
}

func TestCircuitBreakerDefaultsClosed(t *testing.T) {
	cb, _ := newTestBreaker(t, CircuitBreakerConfig{})

	state, err := cb.State()
	require.NoError(t, err)
	assert.Equal(t, CircuitClosed, state)

	allowed, err := cb.Allow()
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestCircuitBreakerOpensAfterFailures(t *testing.T) {
	cb, _ := newTestBreaker(t, CircuitBreakerConfig{FailureThreshold: 3})

	for i := 0; i < 3; i++ {
		require.NoError(t, cb.RecordFailure())
	}

	state, err := cb.State()
	require.NoError(t, err)
	assert.Equal(t, CircuitOpen, state)

	allowed, err := cb.Allow()
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestCircuitBreakerSuccessResetsFailures(t *testing.T) {
	cb, _ := newTestBreaker(t, CircuitBreakerConfig{FailureThreshold: 2})

	require.NoError(t, cb.RecordFailure())
	require.NoError(t, cb.RecordSuccess())
	require.NoError(t, cb.RecordFailure())

	state, err := cb.State()
	require.NoError(t, err)
	assert.Equal(t, CircuitClosed, state)
}

func TestCircuitBreakerHalfOpenRecovery(t *testing.T) {
	cb, now := newTestBreaker(t, CircuitBreakerConfig{
		FailureThreshold: 1,
		SuccessThreshold: 2,
		OpenTimeout:      10 * time.Second,
	})

	require.NoError(t, cb.RecordFailure())
	*now = now.Add(11 * time.Second)

	allowed, err := cb.Allow()
	require.NoError(t, err)
	assert.True(t, allowed, "expired open circuit lets a probe through")

	state, _ := cb.State()
	assert.Equal(t, CircuitHalfOpen, state)

	require.NoError(t, cb.RecordSuccess())
	require.NoError(t, cb.RecordSuccess())

	state, _ = cb.State()
	assert.Equal(t, CircuitClosed, state)
}

func TestCircuitBreakerHalfOpenFailureReopens(t *testing.T) {
	cb, now := newTestBreaker(t, CircuitBreakerConfig{FailureThreshold: 1, OpenTimeout: time.Second})

	require.NoError(t, cb.RecordFailure())
	*now = now.Add(2 * time.Second)
	_, _ = cb.Allow()
	require.NoError(t, cb.RecordFailure())

	allowed, err := cb.Allow()
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestCircuitBreakerIsPerKey(t *testing.T) {
	store := NewStore(t.TempDir())
	a := NewCircuitBreaker(store, "a", CircuitBreakerConfig{FailureThreshold: 1})
	b := NewCircuitBreaker(store, "b", CircuitBreakerConfig{FailureThreshold: 1})

	require.NoError(t, a.RecordFailure())

	allowed, err := b.Allow()
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestCircuitBreakerReset(t *testing.T) {
	cb, _ := newTestBreaker(t, CircuitBreakerConfig{FailureThreshold: 1})
	require.NoError(t, cb.RecordFailure())
	require.NoError(t, cb.Reset())

	state, err := cb.State()
	require.NoError(t, err)
	assert.Equal(t, CircuitClosed, state)
}

func TestStoreSurvivesCorruptFile(t *testing.T) {
	store := NewStore(t.TempDir())
	require.NoError(t, os.MkdirAll(store.Dir(), 0o700))
	require.NoError(t, os.WriteFile(store.Path(), []byte("{not json"), 0o600))

	state, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, state.Circuits)

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())
}
