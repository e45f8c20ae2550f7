package web

import (
	"time"

	"github.com/PizzaHomicide/rotv/internal/log"
	"github.com/gin-gonic/gin"
)

// requestLogger writes one log line per request through the application logger
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"client", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			args = append(args, "errors", c.Errors.String())
		}

		switch {
		case status >= 500:
			log.Error("HTTP request", args...)
		case status >= 400:
			log.Warn("HTTP request", args...)
		case c.Request.URL.Path == "/health" || c.Request.URL.Path == "/metrics":
			log.Trace("HTTP request", args...)
		default:
			log.Info("HTTP request", args...)
		}
	}
}
