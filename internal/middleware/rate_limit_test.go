package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"SparkMatchPlatform/internal/middleware"
	"SparkMatchPlatform/internal/service"
	"SparkMatchPlatform/pkg/config"
	"SparkMatchPlatform/pkg/logger"
	"SparkMatchPlatform/pkg/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRateLimiter управляемая заглушка RateLimiter
type stubRateLimiter struct {
	exceeded bool
	err      error
	lastKey  string
}

func (s *stubRateLimiter) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	s.lastKey = key
	return s.exceeded, s.err
}

func setupRateLimitMiddleware(t *testing.T, limiter *stubRateLimiter, failOpen bool) *middleware.RateLimitMiddleware {
	t.Helper()
	testLogger, err := logger.NewLogger("dev", "error", "test")
	require.NoError(t, err)
	return middleware.NewRateLimitMiddleware(limiter, failOpen, metrics.NewMetrics("test"), testLogger)
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

var testPolicy = config.RateLimitPolicy{Limit: 5, Window: "1m"}

func TestRateLimitMiddleware_AllowsUnderLimit(t *testing.T) {
	limiter := &stubRateLimiter{exceeded: false}
	rateLimit := setupRateLimitMiddleware(t, limiter, true)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	req.RemoteAddr = "10.0.0.1:54321"
	recorder := httptest.NewRecorder()

	rateLimit.Class("login", testPolicy)(okHandler()).ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)
	// Анонимный запрос считается по IP
	assert.Equal(t, "login:ip:10.0.0.1", limiter.lastKey)
}

func TestRateLimitMiddleware_RejectsOverLimit(t *testing.T) {
	limiter := &stubRateLimiter{exceeded: true}
	rateLimit := setupRateLimitMiddleware(t, limiter, true)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	recorder := httptest.NewRecorder()

	rateLimit.Class("login", testPolicy)(okHandler()).ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusTooManyRequests, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "TOO_MANY_REQUESTS")
}

func TestRateLimitMiddleware_KeysByUserWhenAuthenticated(t *testing.T) {
	limiter := &stubRateLimiter{exceeded: false}
	rateLimit := setupRateLimitMiddleware(t, limiter, true)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/matches", nil)
	ctx := context.WithValue(req.Context(), service.UserIDKey, "user-1")
	req = req.WithContext(ctx)
	recorder := httptest.NewRecorder()

	rateLimit.Class("api", testPolicy)(okHandler()).ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "api:user:user-1", limiter.lastKey)
}

func TestRateLimitMiddleware_StoreFailureOpen(t *testing.T) {
	limiter := &stubRateLimiter{err: assert.AnError}
	rateLimit := setupRateLimitMiddleware(t, limiter, true)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/matches", nil)
	recorder := httptest.NewRecorder()

	rateLimit.Class("api", testPolicy)(okHandler()).ServeHTTP(recorder, req)

	// При политике open сбой хранилища пропускает запрос
	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestRateLimitMiddleware_StoreFailureClosed(t *testing.T) {
	limiter := &stubRateLimiter{err: assert.AnError}
	rateLimit := setupRateLimitMiddleware(t, limiter, false)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/matches", nil)
	recorder := httptest.NewRecorder()

	rateLimit.Class("api", testPolicy)(okHandler()).ServeHTTP(recorder, req)

	// При политике closed сбой хранилища отклоняет запрос
	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "STORE_UNAVAILABLE")
}

func TestRateLimitMiddleware_ForwardedForTakesPrecedence(t *testing.T) {
	limiter := &stubRateLimiter{exceeded: false}
	rateLimit := setupRateLimitMiddleware(t, limiter, true)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	req.RemoteAddr = "10.0.0.1:54321"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	recorder := httptest.NewRecorder()

	rateLimit.Class("login", testPolicy)(okHandler()).ServeHTTP(recorder, req)

	assert.Equal(t, "login:ip:203.0.113.7", limiter.lastKey)
}
