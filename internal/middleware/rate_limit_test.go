package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_Middleware(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	defer rl.Stop()

	handler := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/ws/chat", nil)
		req.RemoteAddr = addr
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Code
	}

	// Burst of 2 passes, the third request is throttled.
	assert.Equal(t, http.StatusOK, do("10.0.0.1:1111"))
	assert.Equal(t, http.StatusOK, do("10.0.0.1:1111"))
	assert.Equal(t, http.StatusTooManyRequests, do("10.0.0.1:1111"))

	// A different address has its own limiter.
	assert.Equal(t, http.StatusOK, do("10.0.0.2:2222"))
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	defer rl.Stop()

	rl.getLimiter("10.0.0.1:1111")
	rl.getLimiter("10.0.0.2:2222")

	rl.mu.Lock()
	rl.limiters["10.0.0.1:1111"].lastAccess = time.Now().Add(-limiterTTL - time.Minute)
	rl.mu.Unlock()

	rl.cleanup()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.NotContains(t, rl.limiters, "10.0.0.1:1111")
	assert.Contains(t, rl.limiters, "10.0.0.2:2222")
}
