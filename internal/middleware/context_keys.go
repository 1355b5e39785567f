package middleware

import (
	"context"

	portssvc "github.com/SscSPs/currency_swapper/internal/core/ports/services"
	"github.com/gin-gonic/gin"
)

// sessionIDKey and sessionKey store the authenticated swap session.
// Using a custom type prevents collisions.
const (
	sessionIDKey = contextKey("sessionID")
	sessionKey   = contextKey("session")
)

// GetSessionIDFromContext retrieves the authenticated session ID from the Gin context.
// It returns the session ID and a boolean indicating if it was found.
func GetSessionIDFromContext(c *gin.Context) (string, bool) {
	if id, ok := c.Get(string(sessionIDKey)); ok {
		sessionID, ok := id.(string)
		return sessionID, ok
	}
	// check in the request context as well
	return GetSessionIDFromCtx(c.Request.Context())
}

// GetSessionIDFromCtx retrieves the authenticated session ID from a context.Context.
func GetSessionIDFromCtx(ctx context.Context) (string, bool) {
	sessionID, ok := ctx.Value(sessionIDKey).(string)
	return sessionID, ok && sessionID != ""
}

// GetSessionFromContext retrieves the swap session resolved by the auth middleware.
func GetSessionFromContext(c *gin.Context) (portssvc.SwapSessionSvc, bool) {
	v, exists := c.Get(string(sessionKey))
	if !exists {
		return nil, false
	}
	session, ok := v.(portssvc.SwapSessionSvc)
	return session, ok
}
