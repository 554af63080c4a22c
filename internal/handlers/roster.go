package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/0xZumii/bleepblorp/internal/repositories"
)

// RosterHandler serves the presence roster on demand; live updates flow
// over the roster feed.
type RosterHandler struct {
	users repositories.UserRepository
}

func NewRosterHandler(users repositories.UserRepository) *RosterHandler {
	return &RosterHandler{users: users}
}

// ListOnline returns the screen names of everyone currently signed on.
func (h *RosterHandler) ListOnline(c *gin.Context) {
	users, err := h.users.ListOnline(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load roster"})
		return
	}

	names := make([]string, 0, len(users))
	for _, u := range users {
		names = append(names, u.ScreenName)
	}
	c.JSON(http.StatusOK, gin.H{"online": names})
}
