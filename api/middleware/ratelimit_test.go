package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/linkpeel/linkpeel/config"
)

func rateLimitRouter(cfg config.RateLimitConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimit(cfg))
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	return r
}

func TestRateLimit_BurstThenRejected(t *testing.T) {
	r := rateLimitRouter(config.RateLimitConfig{
		Enabled:           true,
		RequestsPerSecond: 0.001,
		Burst:             3,
	})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("request %d within burst: status = %d, want 200", i, w.Code)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429 once the burst is spent", w.Code)
	}
}

func TestRateLimit_IdentitiesAreIndependent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	// Stand in for the auth middleware setting the caller's identity.
	r.Use(func(c *gin.Context) {
		c.Set("api_key", c.GetHeader("X-API-Key"))
		c.Next()
	})
	r.Use(RateLimit(config.RateLimitConfig{
		Enabled:           true,
		RequestsPerSecond: 0.001,
		Burst:             1,
	}))
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	send := func(key string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-API-Key", key)
		r.ServeHTTP(w, req)
		return w.Code
	}

	if code := send("caller-a"); code != http.StatusOK {
		t.Fatalf("first request for caller-a: status = %d", code)
	}
	if code := send("caller-a"); code != http.StatusTooManyRequests {
		t.Errorf("second request for caller-a: status = %d, want 429", code)
	}
	if code := send("caller-b"); code != http.StatusOK {
		t.Errorf("first request for caller-b: status = %d, want 200 on a fresh bucket", code)
	}
}
