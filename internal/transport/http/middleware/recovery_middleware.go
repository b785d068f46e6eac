package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/projectsync/projectsync/pkg/logger"
)

const maxStackSize = 4096

// RecoveryMiddleware converts panics into a 500 response and logs the
// stack. The error body matches the handlers' error shape.
func RecoveryMiddleware() gin.HandlerFunc {
	return recoveryMiddleware(nil, true)
}

// RecoveryMiddlewareWithLogger is RecoveryMiddleware bound to a specific
// logger instead of the global one.
func RecoveryMiddlewareWithLogger(log *logger.Logger) gin.HandlerFunc {
	return recoveryMiddleware(log, true)
}

func recoveryMiddleware(log *logger.Logger, withStack bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				l := log
				if l == nil {
					l = logger.Get()
				}

				requestID := GetRequestID(c)

				fields := []logger.Field{
					logger.Any("panic", err),
					logger.Method(c.Request.Method),
					logger.Path(c.Request.URL.Path),
					logger.ClientIP(c.ClientIP()),
				}
				if requestID != "" {
					fields = append(fields, logger.RequestID(requestID))
				}
				if withStack {
					stack := debug.Stack()
					if len(stack) > maxStackSize {
						stack = stack[:maxStackSize]
					}
					fields = append(fields, logger.String("stacktrace", string(stack)))
				}

				l.Error("Panic recovered", fields...)

				if c.IsAborted() {
					return
				}

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error":      "internal_error",
					"message":    "An internal error occurred",
					"request_id": requestID,
				})
			}
		}()

		c.Next()
	}
}
