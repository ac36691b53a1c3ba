package logger

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDHeader carries the request id in both directions
const RequestIDHeader = "X-Request-ID"

// MiddlewareOptions configures the request logging middleware
type MiddlewareOptions struct {
	// SkipPaths are logged never, e.g. health probes
	SkipPaths []string
	// SkipPathPrefixes are matched with strings.HasPrefix
	SkipPathPrefixes []string
}

func (o MiddlewareOptions) skip(path string) bool {
	for _, p := range o.SkipPaths {
		if p == path {
			return true
		}
	}
	for _, prefix := range o.SkipPathPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// GinLogger logs every request and propagates a request id through the request context
func GinLogger(l *Logger, opts MiddlewareOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := WithRequestID(c.Request.Context(), requestID)
		ctx = ToContext(ctx, l)
		c.Request = c.Request.WithContext(ctx)
		c.Header(RequestIDHeader, requestID)

		path := c.Request.URL.Path
		if opts.skip(path) {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", c.Request.URL.RawQuery),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.Int("bytes", c.Writer.Size()),
			zap.String("ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case status >= http.StatusInternalServerError:
			l.Error("HTTP request", fields...)
		case status >= http.StatusBadRequest:
			l.Warn("HTTP request", fields...)
		default:
			l.Info("HTTP request", fields...)
		}
	}
}

// GinRecovery turns handler panics into a logged 500
func GinRecovery(l *Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				l.Error("panic recovered",
					zap.String("request_id", GetRequestID(c.Request.Context())),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
					zap.Any("error", rec),
					zap.Stack("stacktrace"),
				)
				c.AbortWithStatus(http.StatusInternalServerError)
			}
		}()
		c.Next()
	}
}
