package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

// SlowRequestThreshold is the duration above which a request is flagged.
const SlowRequestThreshold = 5 * time.Second

// RequestLogger logs every API request and flags slow ones.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		if duration > SlowRequestThreshold {
			log.Printf("🚨 SLOW REQUEST: %s %s took %v", c.Request.Method, c.Request.URL.Path, duration)
			return
		}
		log.Printf("%s %s -> %d (%v)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), duration)
	}
}

// CacheControl sets a fixed Cache-Control header on every response.
func CacheControl(value string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", value)
		c.Next()
	}
}
