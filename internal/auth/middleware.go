package auth

import (
	"errors"

	"github.com/gin-gonic/gin"

	apierrors "codeberg.org/lunos/server/internal/errors"
	"codeberg.org/lunos/server/internal/logger"
)

const sessionContextKey = "auth_session"

// resolves the session and rejects anonymous requests with 401
func RequireSession(manager *SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !attachSession(c, manager) {
			apierrors.Unauthorized(c, "")
			return
		}

		c.Next()
	}
}

// resolves the session if present but doesn't require it
func OptionalSession(manager *SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		attachSession(c, manager)
		c.Next()
	}
}

func attachSession(c *gin.Context, manager *SessionManager) bool {
	token := TokenFromRequest(c)
	if token == "" {
		return false
	}

	session, err := manager.Resolve(c.Request.Context(), token)
	if err != nil {
		if !errors.Is(err, ErrNoSession) {
			logger.FromContext(c.Request.Context()).Warn("failed to resolve session", "error", err)
		}

		return false
	}

	if session.Refreshed {
		manager.SetCookie(c, session)
	}

	c.Set(sessionContextKey, session)
	c.Set("user_id", session.User.ID)
	c.Set("user_email", session.User.Email)

	return true
}

// extracts user_id from context after the session middleware
func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get("user_id")

	if !exists {
		return "", false
	}

	id, ok := userID.(string)
	return id, ok && id != ""
}

// extracts the resolved session from context
func GetSession(c *gin.Context) (*ActiveSession, bool) {
	value, exists := c.Get(sessionContextKey)
	if !exists {
		return nil, false
	}

	session, ok := value.(*ActiveSession)
	return session, ok
}
