// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/markhold/markhold/internal/app/system/normalize"
)

// Limiter provides rate limiting using a sliding window algorithm.
// It is safe for concurrent use.
type Limiter struct {
	mu       sync.Mutex
	windows  map[string]*window
	limit    int           // max requests per window
	duration time.Duration // window duration
	cleanup  time.Duration // how often to clean old entries
}

type window struct {
	count     int
	expiresAt time.Time
}

// New creates a new rate limiter allowing limit requests per duration.
func New(limit int, duration time.Duration) *Limiter {
	l := &Limiter{
		windows:  make(map[string]*window),
		limit:    limit,
		duration: duration,
		cleanup:  duration * 2,
	}
	go l.cleanupLoop()
	return l
}

// Allow checks if a request from the given key should be allowed.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	w, exists := l.windows[key]

	if !exists || now.After(w.expiresAt) {
		l.windows[key] = &window{
			count:     1,
			expiresAt: now.Add(l.duration),
		}
		return true
	}

	if w.count >= l.limit {
		return false
	}

	w.count++
	return true
}

// Reset clears the rate limit for a specific key. Called after successful
// authentication so a legitimate sign-in is never penalized by earlier
// typos.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
}

// cleanupLoop periodically removes expired entries to prevent memory leaks.
func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(l.cleanup)
	defer ticker.Stop()

	for range ticker.C {
		l.mu.Lock()
		now := time.Now()
		for key, w := range l.windows {
			if now.After(w.expiresAt) {
				delete(l.windows, key)
			}
		}
		l.mu.Unlock()
	}
}

// ClientIP extracts the client IP from an HTTP request, preferring the
// proxy headers (X-Forwarded-For, X-Real-IP) over RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if len(parts) > 0 {
			ip := strings.TrimSpace(parts[0])
			if ip != "" {
				return ip
			}
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// AccountLimiter throttles the anonymous account endpoints (login and
// signup). It tracks both IP-based and email-based limits: the IP window
// slows a single attacker, the email window protects one account from a
// distributed guess.
type AccountLimiter struct {
	ipLimiter    *Limiter
	emailLimiter *Limiter
}

// NewAccountLimiter creates a limiter with the default budget:
// 10 attempts per IP per minute, 5 attempts per email per 5 minutes.
func NewAccountLimiter() *AccountLimiter {
	return NewAccountLimiterWithConfig(10, time.Minute, 5, 5*time.Minute)
}

// NewAccountLimiterWithConfig creates an account limiter with custom limits.
func NewAccountLimiterWithConfig(ipLimit int, ipDuration time.Duration, emailLimit int, emailDuration time.Duration) *AccountLimiter {
	return &AccountLimiter{
		ipLimiter:    New(ipLimit, ipDuration),
		emailLimiter: New(emailLimit, emailDuration),
	}
}

// Check verifies if an attempt should be allowed.
// Returns (allowed, reason) where reason explains why it was blocked.
func (al *AccountLimiter) Check(r *http.Request, email string) (bool, string) {
	if !al.ipLimiter.Allow(ClientIP(r)) {
		return false, "Too many attempts. Please wait a minute before trying again."
	}

	if email != "" {
		if !al.emailLimiter.Allow(normalize.Email(email)) {
			return false, "Too many attempts for this account. Please wait a few minutes."
		}
	}

	return true, ""
}

// ResetEmail clears the email window after a successful attempt.
func (al *AccountLimiter) ResetEmail(email string) {
	if email != "" {
		al.emailLimiter.Reset(normalize.Email(email))
	}
}
