package ws

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/trace"

	"github.com/0xZumii/bleepblorp/internal/models"
	"github.com/0xZumii/bleepblorp/internal/observability"
)

// SessionValidator resolves a bearer token to its signed-on user.
type SessionValidator interface {
	Validate(ctx context.Context, token string) (models.User, error)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

var errNoToken = errors.New("missing session token")

// sessionFromRequest authenticates a websocket handshake. Browsers cannot
// set headers on websocket upgrades, so a ?token query parameter is
// accepted alongside the Authorization header.
func sessionFromRequest(c *gin.Context, sessions SessionValidator) (models.User, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		if q := c.Query("token"); q != "" {
			header = "Bearer " + q
		}
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return models.User{}, errNoToken
	}
	return sessions.Validate(c.Request.Context(), parts[1])
}

func buildConnInfo(c *gin.Context, user models.User) ConnInfo {
	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      user.ID,
		ScreenName:  user.ScreenName,
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   observability.RequestIDFromRequest(c.Request),
		ConnectedAt: time.Now(),
	}
	if span := trace.SpanFromContext(c.Request.Context()); span.SpanContext().HasTraceID() {
		info.TraceID = span.SpanContext().TraceID().String()
	}
	return info
}

func newConnID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return uuid.NewString()
	}
	return hex.EncodeToString(buf)
}

// readLoop drains inbound frames until the peer disconnects. Feeds are
// push-only; client frames are ignored but the read pump is what detects
// the close.
func readLoop(conn *websocket.Conn, feed, resource string, info ConnInfo, remove func()) {
	defer func() {
		remove()
		conn.Close()
		observability.DecWSActive(feed)
		observability.IncWSEvent(feed, "ws_disconnect")
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				observability.IncWSEvent(feed, "ws_error")
				publishWSEvent(feed, resource, "ws_error", err.Error(), info)
			}
			publishWSEvent(feed, resource, "ws_disconnect", err.Error(), info)
			return
		}
	}
}
