// Package ratelimit provides per-client rate limiting using token buckets.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// idleBucketTTL is how long an unused bucket survives a sweep.
const idleBucketTTL = time.Hour

// tokenBucket allows capacity requests at once and refills at a steady rate.
type tokenBucket struct {
	capacity   float64
	refillRate float64 // tokens per second
	tokens     float64
	lastRefill time.Time
	lastAccess time.Time
}

func newTokenBucket(capacity int, refillRate float64, now time.Time) *tokenBucket {
	return &tokenBucket{
		capacity:   float64(capacity),
		refillRate: refillRate,
		tokens:     float64(capacity),
		lastRefill: now,
		lastAccess: now,
	}
}

func (tb *tokenBucket) refill(now time.Time) {
	elapsed := now.Sub(tb.lastRefill).Seconds()
	if elapsed > 0 {
		tb.tokens = min(tb.capacity, tb.tokens+elapsed*tb.refillRate)
		tb.lastRefill = now
	}
}

// take consumes one token if available.
func (tb *tokenBucket) take(now time.Time) bool {
	tb.refill(now)
	tb.lastAccess = now
	if tb.tokens >= 1.0 {
		tb.tokens--
		return true
	}
	return false
}

// status returns the whole tokens left and when the bucket will be full.
func (tb *tokenBucket) status(now time.Time) (remaining int, resetTime time.Time) {
	tb.refill(now)
	remaining = int(tb.tokens)
	if tb.tokens >= tb.capacity || tb.refillRate <= 0 {
		return remaining, now
	}
	missing := tb.capacity - tb.tokens
	return remaining, now.Add(time.Duration(missing / tb.refillRate * float64(time.Second)))
}

// Info contains information about rate limit status.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// Limiter keeps one bucket per client, endpoint and method.
type Limiter struct {
	config *Config
	now    func() time.Time

	mu      sync.Mutex
	buckets map[string]*tokenBucket
}

// NewLimiter creates a new rate limiter with the given configuration. Idle
// buckets are only dropped while Run is active.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = &Config{
			Enabled:         true,
			DefaultLimit:    1000,
			DefaultWindow:   time.Minute,
			CleanupInterval: 5 * time.Minute,
			Whitelist:       make(map[string]bool),
			Blacklist:       make(map[string]bool),
		}
	}

	return &Limiter{
		config:  config,
		now:     time.Now,
		buckets: make(map[string]*tokenBucket),
	}
}

// Allow checks if a request from the given client is allowed for the specified endpoint.
// Returns true if allowed, false if rate limited, along with rate limit information.
func (l *Limiter) Allow(clientID string, endpoint string, method string) (bool, Info) {
	if !l.config.Enabled || l.config.Whitelist[clientID] {
		return true, Info{Allowed: true}
	}
	if l.config.Blacklist[clientID] {
		return false, Info{}
	}

	endpointConfig := MatchEndpoint(endpoint, method, l.config.EndpointConfigs)
	if endpointConfig == nil {
		endpointConfig = &EndpointConfig{
			Limit:  l.config.DefaultLimit,
			Window: l.config.DefaultWindow,
			Burst:  l.config.DefaultLimit,
		}
	}

	// Unlimited endpoint (e.g., health check)
	if endpointConfig.Limit <= 0 {
		return true, Info{Allowed: true}
	}

	now := l.now()
	key := clientID + ":" + endpoint + ":" + method

	l.mu.Lock()
	bucket, ok := l.buckets[key]
	if !ok {
		capacity := endpointConfig.Burst
		if capacity <= 0 {
			capacity = endpointConfig.Limit
		}
		bucket = newTokenBucket(capacity, float64(endpointConfig.Limit)/endpointConfig.Window.Seconds(), now)
		l.buckets[key] = bucket
	}
	allowed := bucket.take(now)
	remaining, resetTime := bucket.status(now)
	l.mu.Unlock()

	var retryAfter time.Duration
	if !allowed {
		retryAfter = max(resetTime.Sub(now), 0)
	}

	return allowed, Info{
		Allowed:    allowed,
		Limit:      endpointConfig.Limit,
		Remaining:  remaining,
		ResetTime:  resetTime,
		RetryAfter: retryAfter,
	}
}

// Sweep drops buckets unused for longer than idle and returns how many it removed.
func (l *Limiter) Sweep(idle time.Duration) int {
	cutoff := l.now().Add(-idle)

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, b := range l.buckets {
		if b.lastAccess.Before(cutoff) {
			delete(l.buckets, key)
			removed++
		}
	}
	return removed
}

// Run sweeps idle buckets every CleanupInterval until ctx is done.
func (l *Limiter) Run(ctx context.Context) error {
	if !l.config.Enabled || l.config.CleanupInterval <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(l.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.Sweep(idleBucketTTL)
		case <-ctx.Done():
			return nil
		}
	}
}

// size reports the number of live buckets.
func (l *Limiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
