package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/0xZumii/bleepblorp/internal/models"
	"github.com/0xZumii/bleepblorp/internal/observability"
)

// requestIDFromContext returns the upstream correlation id, minting one
// when the request arrived without it.
func requestIDFromContext(c *gin.Context) string {
	if id := observability.RequestIDFromRequest(c.Request); id != "" {
		return id
	}
	return uuid.NewString()
}

// currentUser reads the authenticated identity placed by the session
// middleware. Only valid on routes behind middleware.SessionAuth.
func currentUser(c *gin.Context) models.User {
	return models.User{
		ID:         c.GetString("userID"),
		ScreenName: c.GetString("screenName"),
	}
}

func auditUserID(c *gin.Context) *string {
	if id := c.GetString("userID"); id != "" {
		return &id
	}
	return nil
}
