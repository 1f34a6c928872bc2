package middleware

import (
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// SecurityConfig holds security middleware configuration
type SecurityConfig struct {
	MaxRequestSize    int64
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RequireHTTPS      bool
}

// DefaultSecurityConfig returns default security configuration
func DefaultSecurityConfig() *SecurityConfig {
	return &SecurityConfig{
		MaxRequestSize:    10 * 1024 * 1024, // 10MB
		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
		RequireHTTPS:      false, // Set to true in production
	}
}

// ipLimiters hands out one token bucket per client IP.
type ipLimiters struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	every    rate.Limit
	burst    int
}

func newIPLimiters(requests int, window time.Duration) *ipLimiters {
	if requests <= 0 {
		requests = 1
	}
	return &ipLimiters{
		limiters: make(map[string]*rate.Limiter),
		every:    rate.Every(window / time.Duration(requests)),
		burst:    requests,
	}
}

func (l *ipLimiters) allow(ip string) bool {
	l.mu.Lock()
	limiter, exists := l.limiters[ip]
	if !exists {
		limiter = rate.NewLimiter(l.every, l.burst)
		l.limiters[ip] = limiter
	}
	l.mu.Unlock()
	return limiter.Allow()
}

var validContentTypes = []string{
	"application/json",
	"text/plain",
	"multipart/form-data",
	"application/x-www-form-urlencoded",
}

var suspiciousPatterns = []string{
	"../", "..\\", "<script", "javascript:", "vbscript:",
	"onload=", "onerror=", "eval(", "expression(",
}

// SecurityMiddleware enforces the request size limit, per-IP rate limiting
// and content types, and sets security headers
func SecurityMiddleware(config *SecurityConfig) gin.HandlerFunc {
	if config == nil {
		config = DefaultSecurityConfig()
	}

	limiters := newIPLimiters(config.RateLimitRequests, config.RateLimitWindow)

	return func(c *gin.Context) {
		// 1. Request size validation
		if c.Request.ContentLength > config.MaxRequestSize {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
				"success": false,
				"error":   "Request body too large",
			})
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, config.MaxRequestSize)
		}

		// 2. Rate limiting per IP (skip if disabled for development)
		if os.Getenv("DISABLE_RATE_LIMITING") != "true" {
			clientIP := c.ClientIP()
			if !limiters.allow(clientIP) {
				log.Printf("🚨 Rate limit exceeded for IP: %s, Path: %s %s", clientIP, c.Request.Method, c.Request.URL.Path)
				c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
					"success": false,
					"error":   "Rate limit exceeded",
				})
				return
			}
		}

		// 3. Content-Type validation for requests with a body
		if hasBody(c.Request) {
			contentType := c.GetHeader("Content-Type")
			if contentType == "" {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
					"success": false,
					"error":   "Content-Type header required",
				})
				return
			}

			isValid := false
			for _, validType := range validContentTypes {
				if strings.Contains(contentType, validType) {
					isValid = true
					break
				}
			}
			if !isValid {
				log.Printf("❌ Invalid Content-Type: '%s' for %s %s", contentType, c.Request.Method, c.Request.URL.Path)
				c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{
					"success": false,
					"error":   "Unsupported content type: " + contentType,
				})
				return
			}
		}

		// 4. Security headers
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", "default-src 'self'; img-src 'self' data:")

		// 5. HTTPS enforcement (if enabled)
		if config.RequireHTTPS && c.Request.Header.Get("X-Forwarded-Proto") != "https" {
			c.AbortWithStatusJSON(http.StatusUpgradeRequired, gin.H{
				"success": false,
				"error":   "HTTPS required",
			})
			return
		}

		// 6. Block suspicious patterns in URL
		requestURI := strings.ToLower(c.Request.RequestURI)
		for _, pattern := range suspiciousPatterns {
			if strings.Contains(requestURI, pattern) {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
					"success": false,
					"error":   "Suspicious request pattern detected",
				})
				return
			}
		}

		c.Next()
	}
}

func hasBody(r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return r.ContentLength != 0
	}
	return false
}

// InputValidationMiddleware rejects oversized or script-bearing query parameters
func InputValidationMiddleware() gin.HandlerFunc {
	dangerous := []string{
		"<script", "javascript:", "onload=", "onerror=", "<iframe",
		"<object", "<embed", "data:text/html", "eval(",
	}

	return func(c *gin.Context) {
		for key, values := range c.Request.URL.Query() {
			for _, value := range values {
				if len(value) > 1000 { // Max query param length
					c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
						"success": false,
						"error":   "Query parameter too long: " + key,
					})
					return
				}

				lowerValue := strings.ToLower(value)
				for _, pattern := range dangerous {
					if strings.Contains(lowerValue, pattern) {
						c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
							"success": false,
							"error":   "Invalid characters in query parameter: " + key,
						})
						return
					}
				}
			}
		}

		c.Next()
	}
}

// WriteRateLimitMiddleware applies a stricter per-IP limit to endpoints that
// rewrite data files
func WriteRateLimitMiddleware(requestsPerMinute int) gin.HandlerFunc {
	limiters := newIPLimiters(requestsPerMinute, time.Minute)

	return func(c *gin.Context) {
		if os.Getenv("DISABLE_RATE_LIMITING") == "true" || c.Request.Method == http.MethodGet {
			c.Next()
			return
		}

		clientIP := c.ClientIP()
		if !limiters.allow(clientIP) {
			log.Printf("🚨 Write rate limit exceeded for IP: %s, Path: %s %s", clientIP, c.Request.Method, c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   "Too many write requests. Please try again later.",
			})
			return
		}

		c.Next()
	}
}
