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

// RosterFeedHandler upgrades clients onto the presence roster feed and
// pushes the current roster on connect.
type RosterFeedHandler struct {
	hub      *Hub
	sessions SessionValidator
	users    repositories.UserRepository
}

func NewRosterFeedHandler(hub *Hub, sessions SessionValidator, users repositories.UserRepository) *RosterFeedHandler {
	return &RosterFeedHandler{hub: hub, sessions: sessions, users: users}
}

func (h *RosterFeedHandler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("bleepblorp/ws").Start(c.Request.Context(), "ws.roster.handshake")
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

	// Initial roster before the client joins the broadcast set, so it
	// never renders an empty buddy-list window.
	if online, err := h.users.ListOnline(ctx); err == nil {
		names := make([]string, 0, len(online))
		for _, u := range online {
			names = append(names, u.ScreenName)
		}
		payload, _ := json.Marshal(models.RosterEvent{Type: "roster", Online: names})
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Printf("roster snapshot write failed: %v", err)
			conn.Close()
			return
		}
	} else {
		log.Printf("roster snapshot load failed: %v", err)
	}

	h.hub.AddRosterClient(conn, info)
	observability.IncWSActive(FeedRoster)
	observability.IncWSEvent(FeedRoster, "ws_connect")
	publishWSEvent(FeedRoster, "roster", "ws_connect", "", info)

	go readLoop(conn, FeedRoster, "roster", info, func() {
		h.hub.RemoveRosterClient(conn)
	})
}
