// internal/ratelimit/burst.go
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// BurstLimiter handles burst capacity with token bucket
type BurstLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewBurstLimiter creates a limiter with burst handling
func NewBurstLimiter(ratePerSecond float64, burst int) *BurstLimiter {
	return &BurstLimiter{
		limiter:  rate.NewLimiter(rate.Limit(ratePerSecond), burst),
		lastSeen: time.Now(),
	}
}

// Allow checks if a request can proceed
func (bl *BurstLimiter) Allow() bool {
	return bl.limiter.Allow()
}

// Remaining returns the whole tokens currently available.
func (bl *BurstLimiter) Remaining() int {
	n := int(bl.limiter.Tokens())
	if n < 0 {
		return 0
	}
	return n
}

// ClientLimiter keeps one burst limiter per client key. Report generation
// is the expensive path, so each caller gets its own bucket.
type ClientLimiter struct {
	mu       sync.Mutex
	rate     float64
	burst    int
	idle     time.Duration
	limiters map[string]*BurstLimiter
}

// NewClientLimiter creates a per-client limiter. Buckets idle for longer
// than idle are dropped on the next Sweep.
func NewClientLimiter(ratePerSecond float64, burst int, idle time.Duration) *ClientLimiter {
	if burst < 1 {
		burst = 1
	}
	return &ClientLimiter{
		rate:     ratePerSecond,
		burst:    burst,
		idle:     idle,
		limiters: make(map[string]*BurstLimiter),
	}
}

// Allow consumes a token for key and reports the tokens left.
func (cl *ClientLimiter) Allow(key string) (bool, int) {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	bl, ok := cl.limiters[key]
	if !ok {
		bl = NewBurstLimiter(cl.rate, cl.burst)
		cl.limiters[key] = bl
	}
	bl.lastSeen = time.Now()
	allowed := bl.Allow()
	return allowed, bl.Remaining()
}

// Burst returns the bucket size.
func (cl *ClientLimiter) Burst() int {
	return cl.burst
}

// RetryAfter is the wait for one token, rounded up to whole seconds.
func (cl *ClientLimiter) RetryAfter() int {
	if cl.rate <= 0 {
		return 60
	}
	secs := int(1/cl.rate + 0.999)
	if secs < 1 {
		secs = 1
	}
	return secs
}

// Sweep drops buckets that have been idle and returns how many remain.
func (cl *ClientLimiter) Sweep() int {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	if cl.idle <= 0 {
		return len(cl.limiters)
	}
	cutoff := time.Now().Add(-cl.idle)
	for key, bl := range cl.limiters {
		if bl.lastSeen.Before(cutoff) {
			delete(cl.limiters, key)
		}
	}
	return len(cl.limiters)
}
