package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/0xZumii/bleepblorp/internal/models"
)

// SessionValidator resolves a bearer token to its signed-on user. Each
// successful validation doubles as a presence heartbeat.
type SessionValidator interface {
	Validate(ctx context.Context, token string) (models.User, error)
}

// SessionAuth guards routes behind a valid session token.
func SessionAuth(sessions SessionValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		user, err := sessions.Validate(c.Request.Context(), parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid session"})
			return
		}

		c.Set("userID", user.ID)
		c.Set("screenName", user.ScreenName)
		c.Set("sessionToken", parts[1])
		c.Next()
	}
}
