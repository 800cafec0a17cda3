// internal/liveness/liveness.go

// Package liveness tracks whether the sender has been heard from recently.
package liveness

import (
	"sync"
	"time"
)

// DefaultTimeout is the silence after which the link counts as lost.
const DefaultTimeout = 3000 * time.Millisecond

// Monitor is a last-received timestamp compared against a timeout.
// Before the first Observe the link is disconnected.
type Monitor struct {
	mu       sync.Mutex
	timeout  time.Duration
	last     time.Time
	received bool
}

func New(timeout time.Duration) *Monitor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Monitor{timeout: timeout}
}

// Observe records a valid packet at now.
func (m *Monitor) Observe(now time.Time) {
	m.mu.Lock()
	m.last = now
	m.received = true
	m.mu.Unlock()
}

// Connected is true while now-last does not exceed the timeout.
func (m *Monitor) Connected(now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.received && now.Sub(m.last) <= m.timeout
}

// Since is the time elapsed since the last packet, zero before the first.
func (m *Monitor) Since(now time.Time) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.received {
		return 0
	}
	return now.Sub(m.last)
}

// LastReceived reports the last packet time and whether one was ever seen.
func (m *Monitor) LastReceived() (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last, m.received
}

func (m *Monitor) Timeout() time.Duration { return m.timeout }
