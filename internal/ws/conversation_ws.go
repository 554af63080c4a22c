package ws

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"

	"github.com/0xZumii/bleepblorp/internal/observability"
	"github.com/0xZumii/bleepblorp/internal/repositories"
)

// ConversationFeedHandler upgrades a participant onto one private
// conversation feed.
type ConversationFeedHandler struct {
	hub      *Hub
	sessions SessionValidator
	convos   repositories.ConversationRepository
}

func NewConversationFeedHandler(hub *Hub, sessions SessionValidator, convos repositories.ConversationRepository) *ConversationFeedHandler {
	return &ConversationFeedHandler{hub: hub, sessions: sessions, convos: convos}
}

func (h *ConversationFeedHandler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("bleepblorp/ws").Start(c.Request.Context(), "ws.conversation.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	user, err := sessionFromRequest(c, h.sessions)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid session"})
		return
	}

	key := c.Param("key")
	ok, err := h.convos.IsParticipant(ctx, key, user.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrConversationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load conversation"})
		return
	}
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a participant"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	info := buildConnInfo(c, user)
	h.hub.AddConversationClient(key, conn, info)
	observability.IncWSActive(FeedConversation)
	observability.IncWSEvent(FeedConversation, "ws_connect")
	publishWSEvent(FeedConversation, key, "ws_connect", "", info)

	go readLoop(conn, FeedConversation, key, info, func() {
		h.hub.RemoveConversationClient(key, conn)
	})
}
