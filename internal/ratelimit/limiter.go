// Package ratelimit provides per-key token bucket rate limiting for the
// resonance MCP tools.
package ratelimit

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrRateLimited is returned by CheckLimit when a tool's bucket is empty.
var ErrRateLimited = errors.New("rate limit exceeded")

// Limiter is a per-key token bucket. Each key gets its own bucket that starts
// full. It is safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    float64 // tokens per second
	burst   int
	nowFunc func() time.Time
}

type bucket struct {
	tokens    float64
	lastCheck time.Time
}

// refill adds tokens for the time elapsed since the last check, capped at burst.
func (b *bucket) refill(now time.Time, rate float64, burst int) {
	elapsed := now.Sub(b.lastCheck).Seconds()
	if elapsed <= 0 {
		return
	}
	b.tokens = min(b.tokens+rate*elapsed, float64(burst))
	b.lastCheck = now
}

// NewLimiter creates a limiter refilling at rate tokens/sec with the given burst.
func NewLimiter(rate float64, burst int) *Limiter {
	return &Limiter{
		buckets: make(map[string]*bucket),
		rate:    rate,
		burst:   burst,
		nowFunc: time.Now,
	}
}

// PerMinute creates a limiter allowing n requests per minute with the given burst.
func PerMinute(n float64, burst int) *Limiter {
	return NewLimiter(n/60.0, burst)
}

// bucketFor returns the bucket for key, creating a full one on first use.
// Callers hold l.mu.
func (l *Limiter) bucketFor(key string, now time.Time) *bucket {
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: float64(l.burst), lastCheck: now}
		l.buckets[key] = b
	}
	b.refill(now, l.rate, l.burst)
	return b
}

// Allow consumes one token for key and reports whether one was available.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.bucketFor(key, l.nowFunc())
	if b.tokens < 1.0 {
		return false
	}
	b.tokens--
	return true
}

// Remaining reports the tokens currently available for key without consuming any.
func (l *Limiter) Remaining(key string) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.bucketFor(key, l.nowFunc()).tokens
}

// Rule is a per-tool limit.
type Rule struct {
	PerMinute float64
	Burst     int
}

// DefaultRules returns the limits for the resonance MCP tools. Simulation
// tools are costlier than history reads, and batch-style deficit runs
// (500 cycles by default) are the most expensive.
func DefaultRules() map[string]Rule {
	return map[string]Rule{
		"resonance_run":     {PerMinute: 60, Burst: 10},
		"resonance_compare": {PerMinute: 30, Burst: 5},
		"resonance_deficit": {PerMinute: 20, Burst: 5},
		"resonance_history": {PerMinute: 60, Burst: 10},
	}
}

// ToolLimiters maps tool names to their rate limiters.
type ToolLimiters map[string]*Limiter

// NewToolLimiters creates limiters for the default rules.
func NewToolLimiters() ToolLimiters {
	return NewToolLimitersFromRules(DefaultRules())
}

// NewToolLimitersFromRules creates one limiter per rule.
func NewToolLimitersFromRules(rules map[string]Rule) ToolLimiters {
	limiters := make(ToolLimiters, len(rules))
	for tool, r := range rules {
		limiters[tool] = PerMinute(r.PerMinute, r.Burst)
	}
	return limiters
}

// CheckLimit returns nil if toolName may run now, or an error wrapping
// ErrRateLimited. Tools without a limiter are always allowed.
func CheckLimit(limiters ToolLimiters, toolName string) error {
	limiter, ok := limiters[toolName]
	if !ok {
		return nil
	}

	if !limiter.Allow(toolName) {
		return fmt.Errorf("%w for %s, please try again shortly", ErrRateLimited, toolName)
	}
	return nil
}
