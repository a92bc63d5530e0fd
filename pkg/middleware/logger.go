package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/richxcame/currency-exchange/pkg/logger"
	"go.uber.org/zap"
)

// RequestLogger logs one line per request. Requests to skipPaths (probes,
// metrics scrapes) are only logged when they fail.
func RequestLogger(skipPaths ...string) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		if _, ok := skip[path]; ok && status < 500 {
			return
		}

		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
			zap.String("path", path),
			zap.String("ip", c.ClientIP()),
			zap.Int64("request_bytes", c.Request.ContentLength),
			zap.Int("response_bytes", c.Writer.Size()),
			zap.Duration("latency", time.Since(start)),
		}

		reqLogger := logger.WithContext(c.Request.Context())

		switch {
		case status >= 500:
			reqLogger.Error("Request failed", append(fields, zap.String("errors", c.Errors.String()))...)
		case len(c.Errors) > 0:
			reqLogger.Warn("Request rejected", append(fields, zap.String("errors", c.Errors.String()))...)
		default:
			reqLogger.Info("Request completed", fields...)
		}
	}
}
