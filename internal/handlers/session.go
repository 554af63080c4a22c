package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/0xZumii/bleepblorp/internal/repositories"
	"github.com/0xZumii/bleepblorp/internal/session"
	"github.com/0xZumii/bleepblorp/internal/telemetry"
)

// SessionHandler exposes anonymous sign-on and sign-off.
type SessionHandler struct {
	manager *session.Manager
	audit   *telemetry.AuditEmitter
}

func NewSessionHandler(manager *session.Manager, audit *telemetry.AuditEmitter) *SessionHandler {
	return &SessionHandler{manager: manager, audit: audit}
}

// SignOn creates an anonymous identity for the chosen screen name and
// issues a session token.
func (h *SessionHandler) SignOn(c *gin.Context) {
	var req struct {
		ScreenName string `json:"screen_name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "screen_name is required"})
		return
	}

	user, token, err := h.manager.SignOn(c.Request.Context(), req.ScreenName)
	switch {
	case errors.Is(err, session.ErrEmptyScreenName):
		c.JSON(http.StatusBadRequest, gin.H{"error": "screen name is empty"})
		return
	case errors.Is(err, session.ErrScreenNameTooLong):
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("screen name exceeds %d characters", session.MaxScreenNameLen)})
		return
	case errors.Is(err, repositories.ErrScreenNameTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "screen name already in use"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to sign on"})
		return
	}

	h.audit.Emit(c.Request.Context(), "info",
		fmt.Sprintf("user %s signed on", user.ScreenName),
		requestIDFromContext(c), &user.ID)

	c.JSON(http.StatusCreated, gin.H{"token": token, "user": user})
}

// SignOff tears down the caller's session. Always succeeds from the
// client's point of view.
func (h *SessionHandler) SignOff(c *gin.Context) {
	user := currentUser(c)
	h.manager.SignOff(c.Request.Context(), c.GetString("sessionToken"), user)

	h.audit.Emit(c.Request.Context(), "info",
		fmt.Sprintf("user %s signed off", user.ScreenName),
		requestIDFromContext(c), auditUserID(c))

	c.Status(http.StatusNoContent)
}
