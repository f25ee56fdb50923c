package kafka

import (
	"errors"
	"sync"
	"time"

	"github.com/tair/stock-ledger/pkg/logger"
)

// ErrCircuitOpen is returned while the broker is considered down
var ErrCircuitOpen = errors.New("kafka circuit breaker is open")

// CircuitState represents the state of a circuit breaker
type CircuitState string

const (
	StateClosed   CircuitState = "closed"    // Normal operation
	StateOpen     CircuitState = "open"      // Blocking sends
	StateHalfOpen CircuitState = "half-open" // Probing the broker
)

// CircuitBreaker stops a failing broker from stalling every committed
// mutation on producer retries
type CircuitBreaker struct {
	name            string
	maxFailures     int
	timeout         time.Duration
	halfOpenSuccess int
	state           CircuitState
	failures        int
	successCount    int
	lastStateChange time.Time
	now             func() time.Time
	mu              sync.Mutex
}

// NewCircuitBreaker opens after maxFailures consecutive failures and tries
// again once timeout has passed
func NewCircuitBreaker(name string, maxFailures int, timeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		name:            name,
		maxFailures:     maxFailures,
		timeout:         timeout,
		halfOpenSuccess: 3,
		state:           StateClosed,
		lastStateChange: time.Now(),
		now:             time.Now,
	}
}

// Call executes fn unless the circuit is open
func (cb *CircuitBreaker) Call(fn func() error) error {
	cb.mu.Lock()
	if cb.state == StateOpen && cb.now().Sub(cb.lastStateChange) > cb.timeout {
		cb.transition(StateHalfOpen)
		cb.successCount = 0
	}
	state := cb.state
	cb.mu.Unlock()

	if state == StateOpen {
		return ErrCircuitOpen
	}

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	if err != nil {
		cb.onFailure()
	} else {
		cb.onSuccess()
	}
	return err
}

func (cb *CircuitBreaker) onFailure() {
	cb.failures++
	if cb.state == StateHalfOpen || cb.failures >= cb.maxFailures {
		cb.transition(StateOpen)
	}
}

func (cb *CircuitBreaker) onSuccess() {
	switch cb.state {
	case StateHalfOpen:
		cb.successCount++
		if cb.successCount >= cb.halfOpenSuccess {
			cb.failures = 0
			cb.transition(StateClosed)
		}
	case StateClosed:
		cb.failures = 0
	}
}

func (cb *CircuitBreaker) transition(to CircuitState) {
	if cb.state == to {
		return
	}
	logger.Logger.Warn().
		Str("circuit", cb.name).
		Str("from", string(cb.state)).
		Str("to", string(to)).
		Int("failures", cb.failures).
		Msg("Circuit breaker state changed")
	cb.state = to
	cb.lastStateChange = cb.now()
}

// State returns the current state
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}
