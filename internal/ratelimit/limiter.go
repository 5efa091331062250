// Package ratelimit provides per-client-IP request limiting for individual
// routes, built on token buckets.
package ratelimit

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// visitor is one client IP's bucket plus its last-seen time for reaping.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter enforces a per-minute request ceiling per client IP. Each route
// that needs limiting gets its own Limiter so the ceilings are independent.
type Limiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor

	limit rate.Limit
	burst int
	log   *slog.Logger

	quit chan struct{}
	wg   sync.WaitGroup
}

// idleTimeout is how long an IP can go unseen before its bucket is reaped.
const idleTimeout = 3 * time.Minute

// NewPerMinute creates a Limiter allowing perMinute requests per minute per
// client IP, with a burst of the same size.
func NewPerMinute(perMinute int, log *slog.Logger) *Limiter {
	if log == nil {
		log = slog.Default()
	}

	l := &Limiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
		log:      log,
		quit:     make(chan struct{}),
	}

	l.wg.Add(1)
	go l.reaper()

	return l
}

// Allow reports whether a request from the given IP is within the limit.
func (l *Limiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = time.Now()

	return v.limiter.Allow()
}

// Middleware wraps a handler, rejecting over-limit requests with 429 before
// the handler body runs.
func (l *Limiter) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !l.Allow(ip) {
			l.log.Warn("Rate limit exceeded",
				"ip", ip, "path", r.URL.Path)
			http.Error(
				w, "Too many requests, slow down.",
				http.StatusTooManyRequests,
			)
			return
		}

		next(w, r)
	}
}

// Close stops the background reaper.
func (l *Limiter) Close() {
	close(l.quit)
	l.wg.Wait()
}

// reaper periodically drops buckets for IPs that have gone idle.
func (l *Limiter) reaper() {
	defer l.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-l.quit:
			return

		case <-ticker.C:
			l.reapIdle()
		}
	}
}

// reapIdle removes visitors unseen for longer than idleTimeout.
func (l *Limiter) reapIdle() {
	cutoff := time.Now().Add(-idleTimeout)

	l.mu.Lock()
	defer l.mu.Unlock()

	for ip, v := range l.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(l.visitors, ip)
		}
	}
}

// clientIP extracts the caller's network identity from the request,
// preferring the first X-Forwarded-For hop when a proxy set one.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}
