package retry

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned by Breaker.Allow while the circuit is open
var ErrCircuitOpen = errors.New("circuit breaker is open")

// BreakerConfig configures a Breaker
type BreakerConfig struct {
	// FailureThreshold is the number of consecutive failures that opens the circuit. Zero disables the breaker.
	FailureThreshold int

	// Cooldown is how long the circuit stays open before a single probe call is let through
	Cooldown time.Duration
}

// DefaultBreakerConfig returns the breaker settings used when none are configured
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 5,
		Cooldown:         30 * time.Second,
	}
}

// Breaker is a consecutive-failure circuit breaker
type Breaker struct {
	cfg BreakerConfig
	now func() time.Time

	mu       sync.Mutex
	failures int
	openedAt time.Time
	probing  bool
}

// NewBreaker creates a closed breaker
func NewBreaker(cfg BreakerConfig) *Breaker {
	return &Breaker{cfg: cfg, now: time.Now}
}

// Allow reports whether a call may proceed. After the cooldown one probe call
// is admitted; its outcome closes or re-opens the circuit.
func (b *Breaker) Allow() error {
	if b == nil || b.cfg.FailureThreshold <= 0 {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failures < b.cfg.FailureThreshold {
		return nil
	}
	if b.probing || b.now().Sub(b.openedAt) < b.cfg.Cooldown {
		return ErrCircuitOpen
	}
	b.probing = true
	return nil
}

// Success records a successful call and closes the circuit
func (b *Breaker) Success() {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.probing = false
}

// Failure records a failed call
func (b *Breaker) Failure() {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	b.probing = false
	if b.failures >= b.cfg.FailureThreshold {
		b.openedAt = b.now()
	}
}

// Release records a call that ended without an outcome, such as a cancelled
// request. A probe slot it held is freed; the failure count is unchanged.
func (b *Breaker) Release() {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.probing = false
}

// Open reports whether the circuit is currently rejecting calls
func (b *Breaker) Open() bool {
	if b == nil || b.cfg.FailureThreshold <= 0 {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failures < b.cfg.FailureThreshold {
		return false
	}
	return b.probing || b.now().Sub(b.openedAt) < b.cfg.Cooldown
}
