package limiter

import (
	"errors"
	"sync"
	"time"
)

// Default throttling policy for login attempts
const (
	DefaultMaxAttempts = 5
	DefaultBlockTime   = 10 * time.Minute
)

// ErrTooManyAttempts is returned while an IP is inside its cooldown window
var ErrTooManyAttempts = errors.New("too many login attempts, try again later")

// Limiter tracks failed login attempts per client IP. It is an injectable
// keyed-counter service so a shared store can replace the in-memory one
// without touching endpoint logic.
type Limiter interface {
	Check(ip string) error
	RecordFailure(ip string)
	RecordSuccess(ip string)
}

type attempt struct {
	count        int
	blockedUntil time.Time
}

// Memory is a process-local Limiter. State is lost on restart and not
// shared across instances; keying is purely by IP, so clients behind a
// shared NAT block together.
type Memory struct {
	mu          sync.Mutex
	attempts    map[string]*attempt
	maxAttempts int
	blockTime   time.Duration
	now         func() time.Time
}

// NewMemory creates an in-memory Limiter that blocks an IP for blockTime
// after maxAttempts consecutive failures.
func NewMemory(maxAttempts int, blockTime time.Duration) *Memory {
	return &Memory{
		attempts:    make(map[string]*attempt),
		maxAttempts: maxAttempts,
		blockTime:   blockTime,
		now:         time.Now,
	}
}

// Check reports whether the IP may attempt a login right now
func (m *Memory) Check(ip string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if a, ok := m.attempts[ip]; ok && a.blockedUntil.After(m.now()) {
		return ErrTooManyAttempts
	}
	return nil
}

// RecordFailure counts a failed login. Reaching the attempt limit starts
// the cooldown window and resets the counter.
func (m *Memory) RecordFailure(ip string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.attempts[ip]
	if !ok {
		a = &attempt{}
		m.attempts[ip] = a
	}

	a.count++
	if a.count >= m.maxAttempts {
		a.blockedUntil = m.now().Add(m.blockTime)
		a.count = 0
	}
}

// RecordSuccess resets the failure counter. An active cooldown window is
// not cut short.
func (m *Memory) RecordSuccess(ip string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if a, ok := m.attempts[ip]; ok {
		a.count = 0
	}
}
