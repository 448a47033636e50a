package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ats-backend/internal/shared/telemetry"
)

// Logging emits one request.complete line per request. Handlers enrich it by
// setting documentId, analysisId and statusTransition on the gin context.
// Requests to skipPaths (probes, scrapes) are not logged.
func Logging(skipPaths ...string) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := map[string]any{
			"request_id":        RequestIDFromContext(c),
			"method":            c.Request.Method,
			"path":              c.Request.URL.Path,
			"route":             c.FullPath(),
			"status":            status,
			"status_transition": c.GetString("statusTransition"),
			"duration_ms":       float64(time.Since(start).Microseconds()) / 1000.0,
			"bytes_out":         c.Writer.Size(),
			"user_id":           UserIDFromContext(c),
			"is_guest":          IsGuest(c),
			"document_id":       c.GetString("documentId"),
			"analysis_id":       c.GetString("analysisId"),
			"client_ip":         c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}

		switch {
		case status >= http.StatusInternalServerError:
			telemetry.Error("request.complete", fields)
		case status >= http.StatusBadRequest:
			telemetry.Warn("request.complete", fields)
		default:
			telemetry.Info("request.complete", fields)
		}
	}
}
