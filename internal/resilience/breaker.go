// Package resilience provides reliability patterns for external service calls.
package resilience

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned when the circuit breaker is open and rejecting calls.
var ErrCircuitOpen = errors.New("circuit breaker is open")

type breakerState int

const (
	breakerClosed breakerState = iota
	breakerOpen
	breakerHalfOpen
)

func (s breakerState) String() string {
	switch s {
	case breakerOpen:
		return "open"
	case breakerHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// Breaker protects the Asana API from repeated failing calls. After
// tripThreshold consecutive failures the circuit opens for cooldown; the
// first call after cooldown probes half-open, and its outcome decides
// whether the circuit closes again.
type Breaker struct {
	mu            sync.Mutex
	state         breakerState
	consecutive   int
	tripThreshold int
	cooldown      time.Duration
	openedAt      time.Time
	clock         func() time.Time // swappable for tests
}

// NewBreaker creates a Breaker that opens after tripThreshold consecutive
// failures and stays open for cooldown.
func NewBreaker(tripThreshold int, cooldown time.Duration) *Breaker {
	return &Breaker{
		tripThreshold: tripThreshold,
		cooldown:      cooldown,
		clock:         time.Now,
	}
}

// Execute runs fn unless the circuit is open, in which case it returns
// ErrCircuitOpen without invoking fn.
func (b *Breaker) Execute(fn func() error) error {
	if !b.admit() {
		return ErrCircuitOpen
	}

	err := fn()
	b.record(err)
	return err
}

// State returns the current breaker state as text, for health reporting.
func (b *Breaker) State() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state.String()
}

func (b *Breaker) admit() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == breakerOpen {
		if b.clock().Sub(b.openedAt) < b.cooldown {
			return false
		}
		b.state = breakerHalfOpen
	}
	return true
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err == nil {
		b.consecutive = 0
		b.state = breakerClosed
		return
	}

	b.consecutive++
	if b.state == breakerHalfOpen || b.consecutive >= b.tripThreshold {
		b.state = breakerOpen
		b.openedAt = b.clock()
	}
}
