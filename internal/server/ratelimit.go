package server

import (
	"fmt"
	"sync"
	"time"
)

// RateLimitConfig bounds request volume. The global bucket covers every
// request; the admin limit throttles the delete endpoints per client IP so a
// leaked admin token cannot be brute-forced quickly. When RedisAddr is set the
// admin counters live in Redis, letting several gateway replicas share one
// budget.
type RateLimitConfig struct {
	GlobalRPS     float64
	GlobalBurst   int
	AdminLimit    int
	AdminWindow   time.Duration
	RedisAddr     string
	RedisPassword string
	RedisTimeout  time.Duration
}

type rateLimiter struct {
	global       *tokenBucket
	adminLimit   int
	adminWindow  time.Duration
	adminMu      sync.Mutex
	adminBuckets map[string]*ipLimiter
	store        tokenStore
}

type ipLimiter struct {
	bucket   *tokenBucket
	lastSeen time.Time
}

type tokenStore interface {
	Allow(key string, limit int, window time.Duration) (bool, time.Duration, error)
}

func newRateLimiter(cfg RateLimitConfig) *rateLimiter {
	rl := &rateLimiter{
		adminLimit:   cfg.AdminLimit,
		adminWindow:  cfg.AdminWindow,
		adminBuckets: make(map[string]*ipLimiter),
	}
	if cfg.GlobalRPS > 0 {
		burst := cfg.GlobalBurst
		if burst <= 0 {
			burst = int(cfg.GlobalRPS)
			if burst < 1 {
				burst = 1
			}
		}
		rl.global = newTokenBucket(cfg.GlobalRPS, burst)
	}
	if rl.adminLimit <= 0 {
		rl.adminLimit = 0
	}
	if rl.adminWindow <= 0 {
		rl.adminWindow = time.Minute
	}
	if cfg.RedisAddr != "" && rl.adminLimit > 0 {
		timeout := cfg.RedisTimeout
		if timeout <= 0 {
			timeout = 2 * time.Second
		}
		rl.store = newRedisStore(cfg.RedisAddr, cfg.RedisPassword, timeout)
	}
	return rl
}

func (r *rateLimiter) AllowRequest() bool {
	if r == nil || r.global == nil {
		return true
	}
	return r.global.Allow()
}

func (r *rateLimiter) AllowAdmin(key string) (bool, time.Duration, error) {
	if r == nil || r.adminLimit <= 0 {
		return true, 0, nil
	}
	if r.store != nil {
		return r.store.Allow(fmt.Sprintf("vidgate:admin:%s", key), r.adminLimit, r.adminWindow)
	}
	if key == "" {
		key = "unknown"
	}
	r.adminMu.Lock()
	bucket, exists := r.adminBuckets[key]
	if !exists {
		rate := float64(r.adminLimit) / r.adminWindow.Seconds()
		if rate <= 0 {
			rate = 1 / r.adminWindow.Seconds()
		}
		bucket = &ipLimiter{bucket: newTokenBucket(rate, r.adminLimit)}
		r.adminBuckets[key] = bucket
	}
	bucket.lastSeen = time.Now()
	r.cleanupLocked()
	r.adminMu.Unlock()

	if bucket.bucket.Allow() {
		return true, 0, nil
	}
	return false, time.Second, nil
}

func (r *rateLimiter) cleanupLocked() {
	if len(r.adminBuckets) == 0 {
		return
	}
	cutoff := time.Now().Add(-2 * r.adminWindow)
	for key, bucket := range r.adminBuckets {
		if bucket.lastSeen.Before(cutoff) {
			delete(r.adminBuckets, key)
		}
	}
}

func (r *rateLimiter) Store() tokenStore {
	if r == nil {
		return nil
	}
	return r.store
}

type tokenBucket struct {
	mu        sync.Mutex
	rate      float64
	capacity  float64
	tokens    float64
	lastCheck time.Time
}

func newTokenBucket(rate float64, burst int) *tokenBucket {
	if rate <= 0 {
		rate = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return &tokenBucket{
		rate:      rate,
		capacity:  float64(burst),
		tokens:    float64(burst),
		lastCheck: time.Now(),
	}
}

func (tb *tokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	now := time.Now()
	elapsed := now.Sub(tb.lastCheck).Seconds()
	tb.lastCheck = now
	tb.tokens += elapsed * tb.rate
	if tb.tokens > tb.capacity {
		tb.tokens = tb.capacity
	}
	if tb.tokens < 1 {
		return false
	}
	tb.tokens -= 1
	return true
}
