// Package ratelimit caps upload requests (not files) per client within
// a fixed window. The in-memory backend serves a single-process
// deployment; the Redis backend serves multi-process deployments.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Decision is the outcome of one rate-limit check.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter answers whether a request from the given client key may
// proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

type windowState struct {
	start time.Time
	count int
}

// FixedWindow is an in-memory fixed-window limiter keyed by client
// identity, with an injected clock for tests.
type FixedWindow struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	windows map[string]*windowState
}

// NewFixedWindow allows at most limit requests per key per window.
func NewFixedWindow(limit int, window time.Duration) *FixedWindow {
	return &FixedWindow{
		limit:   limit,
		window:  window,
		now:     time.Now,
		windows: make(map[string]*windowState),
	}
}

// WithClock overrides the limiter's clock. Test hook.
func (l *FixedWindow) WithClock(now func() time.Time) *FixedWindow {
	l.now = now
	return l
}

// Allow counts the request against the key's current window.
func (l *FixedWindow) Allow(_ context.Context, key string) (Decision, error) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= l.window {
		w = &windowState{start: now}
		l.windows[key] = w
	}

	if w.count >= l.limit {
		return Decision{
			Allowed:    false,
			RetryAfter: w.start.Add(l.window).Sub(now),
		}, nil
	}

	w.count++
	if len(l.windows) > 4096 {
		l.pruneLocked(now)
	}
	return Decision{Allowed: true, Remaining: l.limit - w.count}, nil
}

// pruneLocked drops expired windows so the map stays bounded across a
// long event with many distinct client IPs.
func (l *FixedWindow) pruneLocked(now time.Time) {
	for key, w := range l.windows {
		if now.Sub(w.start) >= l.window {
			delete(l.windows, key)
		}
	}
}
