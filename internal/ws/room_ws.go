package ws

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"

	"github.com/0xZumii/bleepblorp/internal/observability"
)

// RoomFeedHandler upgrades clients onto the public room feed.
type RoomFeedHandler struct {
	hub      *Hub
	sessions SessionValidator
}

func NewRoomFeedHandler(hub *Hub, sessions SessionValidator) *RoomFeedHandler {
	return &RoomFeedHandler{hub: hub, sessions: sessions}
}

func (h *RoomFeedHandler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("bleepblorp/ws").Start(c.Request.Context(), "ws.room.handshake")
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
	h.hub.AddRoomClient(conn, info)
	observability.IncWSActive(FeedRoom)
	observability.IncWSEvent(FeedRoom, "ws_connect")
	publishWSEvent(FeedRoom, "room", "ws_connect", "", info)

	go readLoop(conn, FeedRoom, "room", info, func() {
		h.hub.RemoveRoomClient(conn)
	})
}
