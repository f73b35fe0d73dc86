package middleware

import (
	"net/http"

	"github.com/filevault/backend/internal/domain/session"
	"github.com/gin-gonic/gin"
)

// SessionCookie is the cookie carrying the opaque session token.
const SessionCookie = "session_token"

// EmailKey is the gin context key the authenticated email is stored under.
const EmailKey = "auth_email"

// RequireSession gates a route group on a valid, non-expired session. The
// request is rejected before any handler logic runs; there is no partial
// execution for unauthenticated callers.
func RequireSession(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookie)
		if err != nil || token == "" {
			abortUnauthenticated(c)
			return
		}

		email, ok := sessions.Resolve(token)
		if !ok {
			abortUnauthenticated(c)
			return
		}

		c.Set(EmailKey, email)
		c.Next()
	}
}

// Email returns the authenticated email set by RequireSession.
func Email(c *gin.Context) string {
	email, _ := c.Get(EmailKey)
	if s, ok := email.(string); ok {
		return s
	}
	return ""
}

func abortUnauthenticated(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"message": "Not authenticated",
	})
}
