package middleware

import (
	"io"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"ats-backend/internal/shared/server/respond"
	"ats-backend/internal/shared/telemetry"
)

// Recovery turns a handler panic into a logged 500 with the error envelope.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		telemetry.Error("http.panic", map[string]any{
			"request_id": RequestIDFromContext(c),
			"user_id":    UserIDFromContext(c),
			"route":      c.FullPath(),
			"method":     c.Request.Method,
			"panic":      recovered,
			"stack":      string(debug.Stack()),
		})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Unexpected server error", nil)
	})
}
