package resilience

import (
	"time"
)

// CircuitBreaker stops calls to a remote that keeps failing. State is
// persisted through a Store so consecutive CLI invocations share it.
type CircuitBreaker struct {
	key    string
	config CircuitBreakerConfig
	store  *Store
	now    func() time.Time
}

// NewCircuitBreaker creates a breaker for key (normally the remote base URL).
func NewCircuitBreaker(store *Store, key string, config CircuitBreakerConfig) *CircuitBreaker {
	return &CircuitBreaker{
		key:    key,
		config: config.withDefaults(),
		store:  store,
		now:    time.Now,
	}
}

// Allow reports whether a request may proceed. An open circuit whose timeout
// has expired moves to half-open and lets the request through as a probe.
// Store errors fail open.
func (cb *CircuitBreaker) Allow() (bool, error) {
	state, err := cb.store.Load()
	if err != nil {
		return true, nil
	}

	c := state.Circuit(cb.key)
	if !c.IsOpen() {
		return true, nil
	}
	if cb.now().Sub(c.OpenedAt) < cb.config.OpenTimeout {
		return false, nil
	}

	err = cb.store.Update(func(s *State) error {
		c := s.Circuit(cb.key)
		if c.IsOpen() && cb.now().Sub(c.OpenedAt) >= cb.config.OpenTimeout {
			c.State = CircuitHalfOpen
			c.Successes = 0
			c.Failures = 0
			s.UpdatedAt = cb.now()
		}
		return nil
	})
	if err != nil {
		return true, nil
	}
	return true, nil
}

// RecordSuccess records a successful request.
func (cb *CircuitBreaker) RecordSuccess() error {
	return cb.store.Update(func(s *State) error {
		c := s.Circuit(cb.key)
		switch {
		case c.IsHalfOpen():
			c.Successes++
			if c.Successes >= cb.config.SuccessThreshold {
				c.State = CircuitClosed
				c.Failures = 0
				c.Successes = 0
			}
		case c.IsClosed():
			c.Failures = 0
		}
		s.UpdatedAt = cb.now()
		return nil
	})
}

// RecordFailure records a failed request.
func (cb *CircuitBreaker) RecordFailure() error {
	return cb.store.Update(func(s *State) error {
		c := s.Circuit(cb.key)
		now := cb.now()
		c.LastFailureAt = now

		switch {
		case c.IsClosed():
			c.Failures++
			if c.Failures >= cb.config.FailureThreshold {
				c.State = CircuitOpen
				c.OpenedAt = now
			}
		case c.IsHalfOpen():
			c.State = CircuitOpen
			c.OpenedAt = now
			c.Successes = 0
		}

		s.UpdatedAt = now
		return nil
	})
}

// State returns the effective circuit state.
func (cb *CircuitBreaker) State() (string, error) {
	state, err := cb.store.Load()
	if err != nil {
		return CircuitClosed, err
	}

	c := state.Circuit(cb.key)
	if c.IsOpen() && cb.now().Sub(c.OpenedAt) >= cb.config.OpenTimeout {
		return CircuitHalfOpen, nil
	}
	if c.State == "" {
		return CircuitClosed, nil
	}
	return c.State, nil
}

// Reset closes the circuit.
func (cb *CircuitBreaker) Reset() error {
	return cb.store.Update(func(s *State) error {
		*s.Circuit(cb.key) = CircuitBreakerState{State: CircuitClosed}
		s.UpdatedAt = cb.now()
		return nil
	})
}
