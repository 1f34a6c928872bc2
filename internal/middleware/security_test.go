package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func setupRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(handlers...)
	ok := func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"success": true}) }
	router.GET("/api/products", ok)
	router.POST("/api/save-csv", ok)
	return router
}

func TestSecurityMiddleware(t *testing.T) {
	t.Setenv("DISABLE_RATE_LIMITING", "")

	t.Run("SetsSecurityHeaders", func(t *testing.T) {
		router := setupRouter(SecurityMiddleware(nil))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/products", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
		assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	})

	t.Run("RejectsOversizedBody", func(t *testing.T) {
		router := setupRouter(SecurityMiddleware(&SecurityConfig{MaxRequestSize: 8, RateLimitRequests: 10, RateLimitWindow: time.Minute}))
		req := httptest.NewRequest(http.MethodPost, "/api/save-csv", strings.NewReader(`{"fileName":"products.csv"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})

	t.Run("RequiresContentType", func(t *testing.T) {
		router := setupRouter(SecurityMiddleware(nil))
		req := httptest.NewRequest(http.MethodPost, "/api/save-csv", strings.NewReader(`{}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Content-Type header required")
	})

	t.Run("RejectsUnsupportedContentType", func(t *testing.T) {
		router := setupRouter(SecurityMiddleware(nil))
		req := httptest.NewRequest(http.MethodPost, "/api/save-csv", strings.NewReader(`<xml/>`))
		req.Header.Set("Content-Type", "application/xml")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	})

	t.Run("AcceptsPlainTextBodies", func(t *testing.T) {
		router := setupRouter(SecurityMiddleware(nil))
		req := httptest.NewRequest(http.MethodPost, "/api/save-csv", strings.NewReader(`pasted order`))
		req.Header.Set("Content-Type", "text/plain; charset=utf-8")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("RateLimitsPerIP", func(t *testing.T) {
		router := setupRouter(SecurityMiddleware(&SecurityConfig{MaxRequestSize: 1024, RateLimitRequests: 2, RateLimitWindow: time.Hour}))

		codes := make([]int, 0, 3)
		for i := 0; i < 3; i++ {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/products", nil))
			codes = append(codes, w.Code)
		}
		assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

		other := httptest.NewRequest(http.MethodGet, "/api/products", nil)
		other.RemoteAddr = "198.51.100.7:4000"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, other)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("BlocksTraversalPatterns", func(t *testing.T) {
		router := setupRouter(SecurityMiddleware(nil))
		req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
		req.RequestURI = "/api/products?file=../../etc/passwd"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestInputValidationMiddleware(t *testing.T) {
	router := setupRouter(InputValidationMiddleware())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/products?q=select+shoes", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/products?q=%3Cscript%3E", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/products?q="+strings.Repeat("a", 1001), nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWriteRateLimitMiddleware(t *testing.T) {
	t.Setenv("DISABLE_RATE_LIMITING", "")
	router := setupRouter(WriteRateLimitMiddleware(1))

	post := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/save-csv", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, post())
	assert.Equal(t, http.StatusTooManyRequests, post())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/products", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCacheControl(t *testing.T) {
	router := setupRouter(CacheControl("public, s-maxage=60"), RequestLogger())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/products", nil))

	assert.Equal(t, "public, s-maxage=60", w.Header().Get("Cache-Control"))
}
