package ws

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"github.com/0xZumii/bleepblorp/internal/models"
	"github.com/0xZumii/bleepblorp/internal/observability"
	"github.com/0xZumii/bleepblorp/internal/repositories"
)

// BuddyFeedHandler upgrades a client onto its own buddy feed: friendships
// plus pending requests in both directions, pushed as full snapshots.
type BuddyFeedHandler struct {
	hub      *Hub
	sessions SessionValidator
	friends  repositories.FriendRepository
}

func NewBuddyFeedHandler(hub *Hub, sessions SessionValidator, friends repositories.FriendRepository) *BuddyFeedHandler {
	return &BuddyFeedHandler{hub: hub, sessions: sessions, friends: friends}
}

func (h *BuddyFeedHandler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("bleepblorp/ws").Start(c.Request.Context(), "ws.buddies.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	user, err := sessionFromRequest(c, h.sessions)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid session"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	info := buildConnInfo(c, user)

	if snap, err := h.friends.Snapshot(ctx, user.ID); err == nil {
		payload, _ := json.Marshal(models.BuddyEvent{Type: "buddies", Snapshot: &snap})
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Printf("buddy snapshot write failed: %v", err)
			conn.Close()
			return
		}
	} else {
		log.Printf("buddy snapshot load failed user=%s: %v", user.ScreenName, err)
	}

	h.hub.AddBuddyClient(user.ID, conn, info)
	observability.IncWSActive(FeedBuddies)
	observability.IncWSEvent(FeedBuddies, "ws_connect")
	publishWSEvent(FeedBuddies, user.ID, "ws_connect", "", info)

	go readLoop(conn, FeedBuddies, user.ID, info, func() {
		h.hub.RemoveBuddyClient(user.ID, conn)
	})
}
