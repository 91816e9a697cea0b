package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rateworks/critica/internal/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

// setupTestRateLimiter creates a rate limiter backed by the shared test
// Redis mock
func setupTestRateLimiter(t *testing.T, maxRequests int, window time.Duration) (*RateLimiter, *testutil.TestRedis) {
	tr := testutil.SetupTestRedis(t)

	opts, err := redis.ParseURL(tr.URL)
	if err != nil {
		t.Fatalf("Failed to parse test Redis URL: %v", err)
	}

	rl := NewRateLimiter(redis.NewClient(opts), RateLimiterConfig{
		MaxRequests: maxRequests,
		Window:      window,
	})

	return rl, tr
}

func rateLimitedRouter(rl *RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(rl.Middleware())
	router.POST("/auth/signup", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})
	return router
}

func TestRateLimiter_AllowsRequestsUnderLimit(t *testing.T) {
	rl, tr := setupTestRateLimiter(t, 5, time.Minute)
	defer tr.Teardown(t)

	router := rateLimitedRouter(rl)

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/auth/signup", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code, "Request %d should succeed", i+1)
	}
}

func TestRateLimiter_BlocksRequestsOverLimit(t *testing.T) {
	rl, tr := setupTestRateLimiter(t, 3, time.Minute)
	defer tr.Teardown(t)

	router := rateLimitedRouter(rl)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/auth/signup", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/auth/signup", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestRateLimiter_SeparateCountersPerIP(t *testing.T) {
	rl, tr := setupTestRateLimiter(t, 1, time.Minute)
	defer tr.Teardown(t)

	router := rateLimitedRouter(rl)

	for _, addr := range []string{"10.0.0.1:1000", "10.0.0.2:1000"} {
		req := httptest.NewRequest(http.MethodPost, "/auth/signup", nil)
		req.RemoteAddr = addr
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, "First request from %s should succeed", addr)
	}
}

func TestRateLimiter_FailsOpenWithoutRedis(t *testing.T) {
	rl, tr := setupTestRateLimiter(t, 1, time.Minute)
	tr.Teardown(t) // Redis gone

	router := rateLimitedRouter(rl)

	req := httptest.NewRequest(http.MethodPost, "/auth/signup", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code, "Unreachable Redis must not take the endpoint down")
}
