package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CorrelationID injects a correlation identifier into the request
// context and echoes it on the response. Inbound X-Request-ID or
// X-Correlation-Id headers are honored for traceability across hops.
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = c.GetHeader("X-Correlation-Id")
		}
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("correlation_id", id)
		c.Header("X-Correlation-Id", id)
		c.Next()
	}
}

// GetCorrelationID returns the request's correlation identifier.
func GetCorrelationID(c *gin.Context) string {
	if id, ok := c.Get("correlation_id"); ok {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}

// Logger logs each HTTP request with method, path, status, and latency.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)

		log.Printf("[%s] %s %s %d %s",
			GetCorrelationID(c),
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			latency,
		)
	}
}

// Recovery recovers from panics and returns a 500 error.
func Recovery() gin.HandlerFunc {
	return gin.Recovery()
}
