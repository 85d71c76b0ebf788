package resilience

import "time"

// StateVersion is the current state schema version.
const StateVersion = 1

// State is the breaker state shared across todolite processes, one entry per
// remote base URL.
type State struct {
	Version   int                             `json:"version"`
	Circuits  map[string]*CircuitBreakerState `json:"circuits"`
	UpdatedAt time.Time                       `json:"updated_at"`
}

// NewState returns an empty state.
func NewState() *State {
	return &State{
		Version:  StateVersion,
		Circuits: make(map[string]*CircuitBreakerState),
	}
}

// Circuit returns the state for key, creating it when missing.
func (s *State) Circuit(key string) *CircuitBreakerState {
	if s.Circuits == nil {
		s.Circuits = make(map[string]*CircuitBreakerState)
	}
	c, ok := s.Circuits[key]
	if !ok {
		c = &CircuitBreakerState{State: CircuitClosed}
		s.Circuits[key] = c
	}
	return c
}

// CircuitBreakerState tracks one circuit.
//   - closed: requests flow through
//   - open: requests fail fast
//   - half_open: probing whether the remote recovered
type CircuitBreakerState struct {
	State         string    `json:"state"`
	Failures      int       `json:"failures"`
	Successes     int       `json:"successes"`
	LastFailureAt time.Time `json:"last_failure_at"`
	OpenedAt      time.Time `json:"opened_at"`
}

// Circuit breaker state constants.
const (
	CircuitClosed   = "closed"
	CircuitOpen     = "open"
	CircuitHalfOpen = "half_open"
)

// IsClosed returns true if the circuit is in closed (normal) state.
func (c *CircuitBreakerState) IsClosed() bool {
	return c.State == "" || c.State == CircuitClosed
}

// IsOpen returns true if the circuit is open (failing fast).
func (c *CircuitBreakerState) IsOpen() bool {
	return c.State == CircuitOpen
}

// IsHalfOpen returns true if the circuit is probing.
func (c *CircuitBreakerState) IsHalfOpen() bool {
	return c.State == CircuitHalfOpen
}
