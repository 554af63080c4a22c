package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/0xZumii/bleepblorp/internal/repositories"
	"github.com/0xZumii/bleepblorp/internal/telemetry"
	"github.com/0xZumii/bleepblorp/internal/ws"
)

// RoomHandler serves the shared public room: history reads and message
// sends fanned out over the room feed.
type RoomHandler struct {
	messages repositories.MessageRepository
	hub      *ws.Hub
	audit    *telemetry.AuditEmitter
}

func NewRoomHandler(messages repositories.MessageRepository, hub *ws.Hub, audit *telemetry.AuditEmitter) *RoomHandler {
	return &RoomHandler{messages: messages, hub: hub, audit: audit}
}

// ListMessages returns the full room history, oldest first.
func (h *RoomHandler) ListMessages(c *gin.Context) {
	msgs, err := h.messages.ListMessages(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// SendMessage appends one message to the room and broadcasts it. A blank
// body is silently dropped, nothing is stored or sent.
func (h *RoomHandler) SendMessage(c *gin.Context) {
	var req struct {
		Body string `json:"body"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	body := strings.TrimSpace(req.Body)
	if body == "" {
		c.Status(http.StatusNoContent)
		return
	}

	user := currentUser(c)
	msg, err := h.messages.AppendMessage(c.Request.Context(), user.ID, user.ScreenName, body, false)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send message"})
		return
	}

	h.hub.BroadcastRoomMessage(msg)
	c.JSON(http.StatusCreated, gin.H{"message": msg})
}
