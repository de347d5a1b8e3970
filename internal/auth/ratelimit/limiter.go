// Package ratelimit enforces per-identity request quotas over fixed time
// windows, tiered by role.
//
// The algorithm is fixed-window counting: each key owns a counter that is
// reset when its window elapses and incremented on every request, including
// the one that exceeds the quota. This is approximate: a caller can burst up
// to twice its quota across a window boundary. It is not a sliding window or
// token bucket.
package ratelimit

import (
	"sync"
	"time"

	"github.com/foodnet/analytics/internal/auth/domain"
)

// counter is the per-key mutable window state. It is owned exclusively by
// the Limiter and mutated only under its mutex, so the reset-increment-check
// sequence is a single atomic step.
type counter struct {
	mu          sync.Mutex
	windowStart time.Time
	count       int
	lastAccess  time.Time
}

// Limiter tracks one counter per rate-limit key (username or the guest
// sentinel). Keys are independent: there is no lock shared across them.
type Limiter struct {
	policy   domain.RateLimitPolicy
	counters sync.Map // map[string]*counter

	stop     chan struct{}
	stopOnce sync.Once
}

// New creates a Limiter for the given policy and starts a background
// goroutine that evicts counters not touched recently. Call Stop to release
// it.
func New(policy domain.RateLimitPolicy) *Limiter {
	l := &Limiter{
		policy: policy,
		stop:   make(chan struct{}),
	}
	go l.cleanupStale()
	return l
}

// Check charges one request for key against the role's quota. It returns
// domain.ErrRateLimitExceeded when the quota for the current window is
// exhausted; the violating request is still counted, so the window does not
// forgive it.
func (l *Limiter) Check(key string, role domain.Role) error {
	rule := l.policy.RuleFor(role)
	now := time.Now()

	v, _ := l.counters.LoadOrStore(key, &counter{})
	c := v.(*counter)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastAccess = now
	if c.windowStart.IsZero() || now.Sub(c.windowStart) >= rule.Window {
		c.windowStart = now
		c.count = 0
	}

	c.count++
	if c.count > rule.MaxRequests {
		return domain.ErrRateLimitExceeded
	}

	return nil
}

// RetryAfter returns the time remaining in key's current window, the
// earliest moment a rejected caller could succeed again.
func (l *Limiter) RetryAfter(key string, role domain.Role) time.Duration {
	rule := l.policy.RuleFor(role)

	v, ok := l.counters.Load(key)
	if !ok {
		return 0
	}
	c := v.(*counter)

	c.mu.Lock()
	defer c.mu.Unlock()

	remaining := rule.Window - time.Since(c.windowStart)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Stop terminates the background eviction goroutine.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

const (
	cleanupInterval = time.Minute
	staleAfter      = 10 * time.Minute
)

// cleanupStale periodically removes counters that have not been touched for
// staleAfter, bounding memory for churning guest keys.
func (l *Limiter) cleanupStale() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			threshold := time.Now().Add(-staleAfter)
			l.counters.Range(func(key, value any) bool {
				c := value.(*counter)
				c.mu.Lock()
				stale := c.lastAccess.Before(threshold)
				c.mu.Unlock()

				if stale {
					l.counters.Delete(key)
				}
				return true
			})
		}
	}
}
