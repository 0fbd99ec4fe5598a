package httpmiddleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiterAllow(t *testing.T) {
	l := newLimiter(RateLimitConfig{Max: 3, Window: time.Minute})
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		_, _, ok := l.allow("1.2.3.4", now)
		assert.True(t, ok, "request %d should pass", i+1)
	}
	_, _, ok := l.allow("1.2.3.4", now)
	assert.False(t, ok, "fourth request should be rejected")

	// A different client is unaffected.
	_, _, ok = l.allow("5.6.7.8", now)
	assert.True(t, ok)

	// Two full windows later the budget is back.
	_, _, ok = l.allow("1.2.3.4", now.Add(2*time.Minute))
	assert.True(t, ok)
}

func TestLimiterSlidingWeight(t *testing.T) {
	l := newLimiter(RateLimitConfig{Max: 10, Window: time.Minute})
	start := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 10; i++ {
		_, _, ok := l.allow("k", start)
		require.True(t, ok)
	}

	// Halfway into the next window the previous one still counts half:
	// effective = 10*0.5 = 5, so 5 more requests fit.
	halfway := start.Add(90 * time.Second)
	passed := 0
	for i := 0; i < 10; i++ {
		if _, _, ok := l.allow("k", halfway); ok {
			passed++
		}
	}
	assert.Equal(t, 5, passed)
}

func TestLimiterEvict(t *testing.T) {
	l := newLimiter(RateLimitConfig{Max: 1, Window: time.Minute})
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	l.allow("a", now)
	l.allow("b", now.Add(90*time.Second))
	l.evict(now.Add(2 * time.Minute))

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.NotContains(t, l.clients, "a")
	assert.Contains(t, l.clients, "b")
}

func TestRateLimitHeaders(t *testing.T) {
	mw := RateLimit(t.Context(), RateLimitConfig{Max: 2, Window: time.Minute})
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5000"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Remaining"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"code":429,"message":"rate limit exceeded"}`, rec.Body.String())
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(*http.Request)
		expect string
	}{
		{
			name:   "remote addr",
			setup:  func(r *http.Request) { r.RemoteAddr = "192.168.1.1:1234" },
			expect: "192.168.1.1",
		},
		{
			name: "x-forwarded-for first hop",
			setup: func(r *http.Request) {
				r.Header.Set("X-Forwarded-For", "203.0.113.5, 70.41.3.18")
			},
			expect: "203.0.113.5",
		},
		{
			name:   "x-real-ip",
			setup:  func(r *http.Request) { r.Header.Set("X-Real-IP", "203.0.113.9") },
			expect: "203.0.113.9",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(req)
			assert.Equal(t, tt.expect, clientIP(req))
		})
	}
}
