// Package ratelimit provides sliding-window admission control for outbound
// generation calls. A Manager bounds the number of calls inside any trailing
// window of fixed duration and may be shared across concurrent workflow runs.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Config holds the rate limiter settings.
type Config struct {
	// Capacity is the maximum number of calls inside the window.
	Capacity int

	// Window is the trailing interval the capacity applies to.
	Window time.Duration

	// Blocking selects the operating mode. When true, Acquire waits for a
	// slot up to MaxWait; when false a full window denies immediately.
	Blocking bool

	// MaxWait bounds the suspension in blocking mode.
	MaxWait time.Duration
}

// DefaultConfig returns the documented default policy: 15 calls per rolling
// minute, non-blocking.
func DefaultConfig() Config {
	return Config{
		Capacity: 15,
		Window:   time.Minute,
		Blocking: false,
		MaxWait:  10 * time.Second,
	}
}

// Validate checks the configuration is usable.
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("capacity must be positive, got %d", c.Capacity)
	}
	if c.Window <= 0 {
		return fmt.Errorf("window must be positive, got %s", c.Window)
	}
	if c.Blocking && c.MaxWait <= 0 {
		return fmt.Errorf("max wait must be positive in blocking mode, got %s", c.MaxWait)
	}
	return nil
}

// Decision is the result of an admission check.
type Decision struct {
	// Allowed reports whether the call may proceed. When true the call has
	// already been recorded against the window.
	Allowed bool

	// RetryAfter is the time until the oldest recorded call leaves the
	// window. Only meaningful when Allowed is false.
	RetryAfter time.Duration
}

// Manager enforces the sliding-window limit. All methods are safe for
// concurrent use; the check-and-record step is a single critical section.
type Manager struct {
	mu    sync.Mutex
	cfg   Config
	calls []time.Time // recorded call times, oldest first

	// now is the clock source, replaceable in tests.
	now func() time.Time
}

// NewManager creates a Manager for the given configuration.
func NewManager(cfg Config) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("rate limit config: %w", err)
	}
	return &Manager{cfg: cfg, now: time.Now}, nil
}

// TryAcquire performs one atomic admission check. If fewer than Capacity
// calls fall inside the trailing window, the current instant is recorded and
// the call is allowed; otherwise the caller is told how long until a slot
// frees up.
func (m *Manager) TryAcquire() Decision {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.evict(now)

	if len(m.calls) < m.cfg.Capacity {
		m.calls = append(m.calls, now)
		return Decision{Allowed: true}
	}

	retryAfter := m.calls[0].Add(m.cfg.Window).Sub(now)
	if retryAfter < 0 {
		retryAfter = 0
	}
	return Decision{Allowed: false, RetryAfter: retryAfter}
}

// Acquire attempts admission according to the configured mode. In
// non-blocking mode it is equivalent to TryAcquire. In blocking mode it
// suspends until a slot opens, MaxWait elapses, or ctx is done; it reports
// whether the call was admitted.
func (m *Manager) Acquire(ctx context.Context) bool {
	d := m.TryAcquire()
	if d.Allowed || !m.cfg.Blocking {
		return d.Allowed
	}

	deadline := m.now().Add(m.cfg.MaxWait)
	for {
		remaining := deadline.Sub(m.now())
		if remaining <= 0 {
			return false
		}

		wait := d.RetryAfter
		if wait <= 0 {
			wait = time.Millisecond
		}
		if wait > remaining {
			wait = remaining
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false
		case <-timer.C:
		}

		d = m.TryAcquire()
		if d.Allowed {
			return true
		}
	}
}

// InWindow returns the number of calls currently inside the window.
func (m *Manager) InWindow() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evict(m.now())
	return len(m.calls)
}

// evict drops recorded calls older than the window. Caller holds mu.
func (m *Manager) evict(now time.Time) {
	cutoff := now.Add(-m.cfg.Window)
	i := 0
	for i < len(m.calls) && !m.calls[i].After(cutoff) {
		i++
	}
	if i > 0 {
		m.calls = append(m.calls[:0], m.calls[i:]...)
	}
}
