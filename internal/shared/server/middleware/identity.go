package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ats-backend/internal/shared/server/respond"
)

const (
	userIDKey  = "userId"
	isGuestKey = "isGuest"

	// HeaderUserID carries the id of a signed-in caller, set by the gateway.
	HeaderUserID = "X-User-Id"
	// HeaderGuestID carries an anonymous browser id.
	HeaderGuestID = "X-Guest-Id"
)

// Identity resolves the caller from the X-User-Id or X-Guest-Id header and
// stores it in context. Requests whose path starts with one of skipPrefixes
// pass through without an identity.
func Identity(skipPrefixes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		path := c.Request.URL.Path
		for _, prefix := range skipPrefixes {
			if prefix != "" && strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		if userID := strings.TrimSpace(c.GetHeader(HeaderUserID)); userID != "" {
			c.Set(userIDKey, userID)
			c.Set(isGuestKey, false)
			c.Next()
			return
		}

		guestID := strings.TrimSpace(c.GetHeader(HeaderGuestID))
		if guestID == "" {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "Missing identity", nil)
			return
		}

		c.Set(userIDKey, "guest:"+guestID)
		c.Set(isGuestKey, true)
		c.Next()
	}
}

// UserIDFromContext fetches the user ID set by the identity middleware.
func UserIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}

// IsGuest reports whether the caller identified with a guest header.
func IsGuest(c *gin.Context) bool {
	if c == nil {
		return false
	}
	return c.GetBool(isGuestKey)
}
