package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newCORSRouter(origins *AllowedOrigins) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CORS(origins))
	router.GET("/ping", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func corsHeader(router *gin.Engine, origin string) string {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", origin)
	router.ServeHTTP(w, req)
	return w.Header().Get("Access-Control-Allow-Origin")
}

func TestCORSAllowlist(t *testing.T) {
	origins := NewAllowedOrigins([]string{"https://a.example.com"})
	router := newCORSRouter(origins)

	assert.Equal(t, "https://a.example.com", corsHeader(router, "https://a.example.com"))
	assert.Empty(t, corsHeader(router, "https://evil.example.com"))
}

// 白名单热更后已装好的中间件要立刻生效，不需要重启
func TestCORSHotReload(t *testing.T) {
	origins := NewAllowedOrigins([]string{"https://a.example.com"})
	router := newCORSRouter(origins)

	assert.Empty(t, corsHeader(router, "https://b.example.com"))

	origins.Set([]string{"https://b.example.com"})

	assert.Equal(t, "https://b.example.com", corsHeader(router, "https://b.example.com"))
	// 旧白名单同时被替换掉
	assert.Empty(t, corsHeader(router, "https://a.example.com"))
}

func TestCORSPreflight(t *testing.T) {
	origins := NewAllowedOrigins([]string{"https://a.example.com"})
	router := newCORSRouter(origins)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "https://a.example.com")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRateLimiterBlocksExcess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimiter(2, time.Minute))
	router.GET("/ping", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

// max_requests 配置为 0 等于关闭限流，不能在构造时除零崩溃
func TestRateLimiterDisabledOnZeroLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimiter(0, time.Minute))
	router.GET("/ping", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 10; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}
