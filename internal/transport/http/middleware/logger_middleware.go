package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/projectsync/projectsync/pkg/logger"
)

// LoggerConfig controls the request logging middleware.
type LoggerConfig struct {
	// Logger overrides the global logger when set.
	Logger *logger.Logger

	// SkipPaths are request paths that are never logged.
	SkipPaths []string

	// RequestIDHeader is the header carrying the client request id.
	RequestIDHeader string

	// TraceIDHeader is the response header the trace id is echoed on.
	TraceIDHeader string
}

// DefaultLoggerConfig returns the configuration used by LoggerMiddleware.
func DefaultLoggerConfig() *LoggerConfig {
	return &LoggerConfig{
		SkipPaths:       []string{"/", "/health", "/health/ready", "/health/live"},
		RequestIDHeader: "X-Request-ID",
		TraceIDHeader:   "X-Trace-ID",
	}
}

// LoggerMiddleware logs every request with latency, status and caller
// identity. Health probes are skipped.
func LoggerMiddleware() gin.HandlerFunc {
	return LoggerMiddlewareWithConfig(DefaultLoggerConfig())
}

// LoggerMiddlewareWithConfig returns the request logger with custom settings.
func LoggerMiddlewareWithConfig(cfg *LoggerConfig) gin.HandlerFunc {
	if cfg == nil {
		cfg = DefaultLoggerConfig()
	}

	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, path := range cfg.SkipPaths {
		skip[path] = struct{}{}
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if _, ok := skip[path]; ok {
			c.Next()
			return
		}

		log := cfg.Logger
		if log == nil {
			log = logger.Get()
		}

		start := time.Now()

		requestID := c.GetHeader(cfg.RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Header(cfg.RequestIDHeader, requestID)
		c.Set("request_id", requestID)

		// Prefer the live span over any header-propagated trace id.
		traceID := c.GetHeader(cfg.TraceIDHeader)
		spanID := ""
		if span := trace.SpanFromContext(c.Request.Context()); span.SpanContext().IsValid() {
			traceID = span.SpanContext().TraceID().String()
			spanID = span.SpanContext().SpanID().String()
		}
		if traceID != "" {
			c.Header(cfg.TraceIDHeader, traceID)
			c.Set("trace_id", traceID)
		}

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()

		fields := []logger.Field{
			logger.RequestID(requestID),
			logger.Method(c.Request.Method),
			logger.Path(path),
			logger.Query(c.Request.URL.RawQuery),
			logger.StatusCode(statusCode),
			logger.Latency(latency),
			logger.ClientIP(c.ClientIP()),
			logger.UserAgent(c.Request.UserAgent()),
			logger.BodySize(c.Writer.Size()),
		}
		if traceID != "" {
			fields = append(fields, logger.TraceID(traceID))
		}
		if spanID != "" {
			fields = append(fields, logger.SpanID(spanID))
		}
		if user := GetUserFromContext(c); user != nil {
			fields = append(fields, logger.Username(user.Username))
		}
		if len(c.Errors) > 0 {
			errs := make([]string, len(c.Errors))
			for i, e := range c.Errors {
				errs[i] = e.Error()
			}
			fields = append(fields, logger.Strings("errors", errs))
		}

		msg := "HTTP Request"
		switch {
		case statusCode >= 500:
			log.Error(msg, fields...)
		case statusCode >= 400:
			log.Warn(msg, fields...)
		default:
			log.Info(msg, fields...)
		}
	}
}

// GetRequestID returns the request id stored by the logging middleware.
func GetRequestID(c *gin.Context) string {
	if id, exists := c.Get("request_id"); exists {
		if reqID, ok := id.(string); ok {
			return reqID
		}
	}
	return ""
}
