package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/agenciazeta/quiniela/internal/app/metrics"
)

// TerminalHeader carries the point-of-sale terminal identity. Requests
// without it are attributed to the default terminal.
const (
	TerminalHeader  = "X-Terminal-ID"
	DefaultTerminal = "terminal-1"
)

const terminalKey = "terminal"

// TerminalID resolves the terminal for the current request.
func TerminalID(c *gin.Context) string {
	if v, ok := c.Get(terminalKey); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return DefaultTerminal
}

func terminalMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		terminal := c.GetHeader(TerminalHeader)
		if terminal == "" {
			terminal = DefaultTerminal
		}
		c.Set(terminalKey, terminal)
		c.Next()
	}
}

// corsMiddleware allows the counter frontends to call the API from another
// origin. Preflight requests are answered directly.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, "+TerminalHeader)
			c.Header("Access-Control-Max-Age", "3600")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// rateLimitMiddleware applies a global token-bucket limit across all
// terminals.
func rateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Limit(rps), burst)
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

// metricsMiddleware records request counts, latency and in-flight gauge. The
// route template is used as the path label to keep cardinality bounded.
func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		metrics.IncInFlight()
		defer metrics.DecInFlight()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.RecordHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
