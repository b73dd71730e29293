package middleware

import (
	"sync"
	"time"
)

// RateLimiter is a sliding-window in-memory limiter. It is a capability owned
// by the composition root and injected into handlers, not a package-level
// singleton — multiple instances can coexist and tests get their own.
//
// Storage is bounded: stale windows are evicted on a cleanup pass that runs
// at most once per cleanupInterval. State resets on restart, which still
// blocks most abuse during a deployment.
type RateLimiter struct {
	mu          sync.Mutex
	entries     map[string]*rateLimitEntry
	lastCleanup time.Time
}

type rateLimitEntry struct {
	count       int
	windowStart time.Time
}

const cleanupInterval = 5 * time.Minute

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		entries:     make(map[string]*rateLimitEntry),
		lastCleanup: time.Now(),
	}
}

// RateLimitResult tells the caller whether the request may proceed and how
// long until the window resets.
type RateLimitResult struct {
	Success   bool
	Remaining int
	ResetIn   time.Duration
}

// Allow checks and counts one request under key. The key encodes purpose plus
// identity (e.g. "progress:user123") so limits for different operations never
// interfere.
func (r *RateLimiter) Allow(key string, limit int, window time.Duration) RateLimitResult {
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.cleanupLocked(now, window)

	entry, ok := r.entries[key]
	if !ok || now.Sub(entry.windowStart) >= window {
		r.entries[key] = &rateLimitEntry{count: 1, windowStart: now}
		return RateLimitResult{Success: true, Remaining: limit - 1, ResetIn: window}
	}

	resetIn := entry.windowStart.Add(window).Sub(now)
	if entry.count >= limit {
		return RateLimitResult{Success: false, Remaining: 0, ResetIn: resetIn}
	}

	entry.count++
	return RateLimitResult{Success: true, Remaining: limit - entry.count, ResetIn: resetIn}
}

// cleanupLocked drops windows older than twice the window size. Caller holds mu.
func (r *RateLimiter) cleanupLocked(now time.Time, window time.Duration) {
	if now.Sub(r.lastCleanup) < cleanupInterval {
		return
	}
	r.lastCleanup = now
	cutoff := now.Add(-2 * window)
	for key, entry := range r.entries {
		if entry.windowStart.Before(cutoff) {
			delete(r.entries, key)
		}
	}
}

// AllowProgress gates progress reads/saves: 60 per minute per user. Generous,
// but stops save spam.
func (r *RateLimiter) AllowProgress(userID string) RateLimitResult {
	return r.Allow("progress:"+userID, 60, time.Minute)
}

// AllowDelete gates progress deletes: 10 per minute per user, stricter than
// saves.
func (r *RateLimiter) AllowDelete(userID string) RateLimitResult {
	return r.Allow("delete:"+userID, 10, time.Minute)
}
