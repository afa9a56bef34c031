// File: internal/ratelimit/ratelimit.go
package ratelimit

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Config bounds failed login attempts per client.
type Config struct {
	WindowSize    time.Duration
	MaxAttempts   int
	BanDuration   time.Duration
	CleanupPeriod time.Duration
}

// DefaultLoginConfig allows maxAttempts tries per 15 minutes, then locks
// the client out for 30 minutes.
func DefaultLoginConfig(maxAttempts int) *Config {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &Config{
		WindowSize:    15 * time.Minute,
		MaxAttempts:   maxAttempts,
		BanDuration:   30 * time.Minute,
		CleanupPeriod: 30 * time.Minute,
	}
}

func (c *Config) Validate() error {
	if c.WindowSize <= 0 || c.BanDuration <= 0 || c.CleanupPeriod <= 0 {
		return fmt.Errorf("rate limit durations must be positive")
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be at least 1")
	}
	return nil
}

type attemptRecord struct {
	count     int
	firstSeen time.Time
	bannedAt  time.Time
}

func (r *attemptRecord) banned() bool { return !r.bannedAt.IsZero() }

// Info describes the limiter's verdict for one request.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
	Banned     bool
}

// MemoryRateLimiter counts attempts per identifier in memory.
type MemoryRateLimiter struct {
	config   *Config
	now      func() time.Time
	mu       sync.Mutex
	attempts map[string]*attemptRecord
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewMemoryRateLimiter starts the limiter and its cleanup loop.
func NewMemoryRateLimiter(config *Config) *MemoryRateLimiter {
	return newLimiter(config, time.Now)
}

func newLimiter(config *Config, now func() time.Time) *MemoryRateLimiter {
	rl := &MemoryRateLimiter{
		config:   config,
		now:      now,
		attempts: make(map[string]*attemptRecord),
		stopCh:   make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// Allow counts one attempt for identifier.
func (rl *MemoryRateLimiter) Allow(identifier string) Info {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	limit := rl.config.MaxAttempts
	record, exists := rl.attempts[identifier]

	if exists && record.banned() {
		if elapsed := now.Sub(record.bannedAt); elapsed < rl.config.BanDuration {
			return Info{
				Limit:      limit,
				ResetTime:  record.bannedAt.Add(rl.config.BanDuration),
				RetryAfter: rl.config.BanDuration - elapsed,
				Banned:     true,
			}
		}
		exists = false
	}

	if !exists || now.Sub(record.firstSeen) > rl.config.WindowSize {
		rl.attempts[identifier] = &attemptRecord{count: 1, firstSeen: now}
		return Info{Allowed: true, Limit: limit, Remaining: limit - 1, ResetTime: now.Add(rl.config.WindowSize)}
	}

	record.count++
	if record.count > limit {
		record.bannedAt = now
		return Info{
			Limit:      limit,
			ResetTime:  now.Add(rl.config.BanDuration),
			RetryAfter: rl.config.BanDuration,
			Banned:     true,
		}
	}

	return Info{
		Allowed:   true,
		Limit:     limit,
		Remaining: limit - record.count,
		ResetTime: record.firstSeen.Add(rl.config.WindowSize),
	}
}

// RecordSuccess forgets identifier's attempts.
func (rl *MemoryRateLimiter) RecordSuccess(identifier string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.attempts, identifier)
}

func (rl *MemoryRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *MemoryRateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for identifier, record := range rl.attempts {
		windowExpired := now.Sub(record.firstSeen) > rl.config.WindowSize
		banExpired := record.banned() && now.Sub(record.bannedAt) > rl.config.BanDuration
		if (windowExpired && !record.banned()) || banExpired {
			delete(rl.attempts, identifier)
		}
	}
}

// Close stops the cleanup goroutine. It is safe to call twice.
func (rl *MemoryRateLimiter) Close() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

// GetClientIP prefers proxy headers, then the connection address.
func GetClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if first := strings.TrimSpace(strings.Split(forwarded, ",")[0]); first != "" {
			return first
		}
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
