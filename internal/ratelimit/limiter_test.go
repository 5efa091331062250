package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, perMinute int) *Limiter {
	t.Helper()

	l := NewPerMinute(perMinute, nil)
	t.Cleanup(l.Close)

	return l
}

func TestAllowWithinBurst(t *testing.T) {
	l := newTestLimiter(t, 5)

	for i := 0; i < 5; i++ {
		require.True(t, l.Allow("10.0.0.1"), "request %d", i)
	}
	require.False(t, l.Allow("10.0.0.1"), "burst exhausted")
}

func TestAllowPerIPIsolation(t *testing.T) {
	l := newTestLimiter(t, 2)

	require.True(t, l.Allow("10.0.0.1"))
	require.True(t, l.Allow("10.0.0.1"))
	require.False(t, l.Allow("10.0.0.1"))

	// A different caller has its own bucket.
	require.True(t, l.Allow("10.0.0.2"))
}

func TestMiddlewareRejectsWith429(t *testing.T) {
	l := newTestLimiter(t, 1)

	var hits int
	handler := l.Middleware(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/start", nil)
	req.RemoteAddr = "10.0.0.1:4242"

	rec := httptest.NewRecorder()
	handler(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler(rec, req)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, 1, hits, "handler body must not run when limited")
}

func TestClientIPForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "127.0.0.1:9999"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")

	require.Equal(t, "203.0.113.7", clientIP(req))
}

func TestClientIPRemoteAddr(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.4:1234"

	require.Equal(t, "192.0.2.4", clientIP(req))
}

func TestReapIdleDropsStaleBuckets(t *testing.T) {
	l := newTestLimiter(t, 1)

	require.True(t, l.Allow("10.0.0.1"))

	l.mu.Lock()
	l.visitors["10.0.0.1"].lastSeen = time.Now().Add(-time.Hour)
	l.mu.Unlock()

	l.reapIdle()

	l.mu.Lock()
	_, ok := l.visitors["10.0.0.1"]
	l.mu.Unlock()
	require.False(t, ok)
}
