package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/0xZumii/bleepblorp/internal/repositories"
	"github.com/0xZumii/bleepblorp/internal/telemetry"
	"github.com/0xZumii/bleepblorp/internal/ws"
)

// ConversationHandler serves private one-on-one threads. Opening a
// conversation is gated on friendship; sending only requires being a
// participant, so an in-flight thread keeps working while a removal
// propagates.
type ConversationHandler struct {
	users   repositories.UserRepository
	friends repositories.FriendRepository
	convos  repositories.ConversationRepository
	hub     *ws.Hub
	audit   *telemetry.AuditEmitter
}

func NewConversationHandler(users repositories.UserRepository, friends repositories.FriendRepository, convos repositories.ConversationRepository, hub *ws.Hub, audit *telemetry.AuditEmitter) *ConversationHandler {
	return &ConversationHandler{users: users, friends: friends, convos: convos, hub: hub, audit: audit}
}

// Open resolves (or creates) the conversation with the named friend and
// returns its key plus full history.
func (h *ConversationHandler) Open(c *gin.Context) {
	var req struct {
		ScreenName string `json:"screen_name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "screen_name is required"})
		return
	}

	ctx := c.Request.Context()
	me := currentUser(c)

	friend, err := h.users.GetUserByScreenName(ctx, req.ScreenName)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve user"})
		return
	}

	friends, err := h.friends.AreFriends(ctx, me.ID, friend.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check friendship"})
		return
	}
	if !friends {
		c.JSON(http.StatusForbidden, gin.H{"error": "not friends"})
		return
	}

	convo, err := h.convos.CreateOrGetConversation(ctx, me.ID, friend.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open conversation"})
		return
	}

	msgs, err := h.convos.ListPrivateMessages(ctx, convo.Key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversation_key": convo.Key, "messages": msgs})
}

// SendMessage appends one private message and broadcasts it over the
// conversation feed. Blank bodies are silently dropped.
func (h *ConversationHandler) SendMessage(c *gin.Context) {
	var req struct {
		Body string `json:"body"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ctx := c.Request.Context()
	me := currentUser(c)
	key := c.Param("key")

	convo, err := h.convos.GetConversation(ctx, key)
	if err != nil {
		if errors.Is(err, repositories.ErrConversationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load conversation"})
		return
	}
	if !convo.HasParticipant(me.ID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a participant"})
		return
	}

	body := strings.TrimSpace(req.Body)
	if body == "" {
		c.Status(http.StatusNoContent)
		return
	}

	msg, err := h.convos.AppendPrivateMessage(ctx, key, me.ID, me.ScreenName, body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send message"})
		return
	}

	h.hub.BroadcastPrivateMessage(key, msg)
	c.JSON(http.StatusCreated, gin.H{"message": msg})
}
