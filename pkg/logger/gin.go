package logger

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader is read from incoming requests and echoed on responses.
const RequestIDHeader = "X-Request-Id"

const ginKey = "logger"

// Middleware tags each request with a request id, exposes a request-scoped
// logger (FromGin on the gin context, From on the request context) and logs
// one summary line when the handler chain returns.
func Middleware(base *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		began := time.Now()

		rid := requestID(c)
		c.Header(RequestIDHeader, rid)

		l := base.With("request_id", rid)
		c.Set(ginKey, l)
		c.Request = c.Request.WithContext(With(c.Request.Context(), l))

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		level := slog.LevelInfo
		attrs := []any{
			"method", c.Request.Method,
			"path", route,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(began).Milliseconds(),
		}
		if errs := c.Errors.ByType(gin.ErrorTypeAny); len(errs) > 0 {
			level = slog.LevelError
			attrs = append(attrs, "errors", errs.String())
		}
		l.Log(c.Request.Context(), level, "request", attrs...)
	}
}

func requestID(c *gin.Context) string {
	if rid := c.GetHeader(RequestIDHeader); rid != "" {
		return rid
	}
	return uuid.NewString()
}

// FromGin returns the request-scoped logger, or slog.Default() outside a request.
func FromGin(c *gin.Context) *slog.Logger {
	if l, ok := c.Value(ginKey).(*slog.Logger); ok && l != nil {
		return l
	}
	return slog.Default()
}
