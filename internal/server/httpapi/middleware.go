package httpapi

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/userbase/internal/common"
	"github.com/dmitrijs2005/userbase/internal/logging"
	"github.com/dmitrijs2005/userbase/internal/server/auth"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDKey = "request_id"

// RequestID reuses an inbound X-Request-ID or mints one, and echoes it back.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(common.RequestIDHeaderName)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(common.RequestIDHeaderName, id)
		c.Next()
	}
}

// AccessLog writes one line per request once the chain has finished.
func AccessLog(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", time.Since(start).String(),
			"client", c.ClientIP(),
			"request_id", c.GetString(requestIDKey),
		}

		switch {
		case status >= http.StatusInternalServerError:
			logger.Error(c.Request.Context(), "request served", args...)
		case status >= http.StatusBadRequest:
			logger.Warn(c.Request.Context(), "request served", args...)
		default:
			logger.Info(c.Request.Context(), "request served", args...)
		}
	}
}

// RequireIdentity runs the guard before protected handlers. Rejections end
// the request with 401; accepted identities ride on the request context.
func RequireIdentity(guard *auth.Guard, logger logging.Logger, metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := guard.Authenticate(c.Request.Header)
		if err != nil {
			reason := auth.RejectionReason(err)
			metrics.rejection(reason)
			logger.Debug(c.Request.Context(), "request rejected by guard", "reason", reason, "error", err)
			abortWithError(c, http.StatusUnauthorized, reason)
			return
		}

		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}
