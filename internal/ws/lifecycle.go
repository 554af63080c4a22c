package ws

import (
	"context"
	"time"

	"github.com/0xZumii/bleepblorp/internal/observability"
)

// publishWSEvent emits one websocket lifecycle event (connect, disconnect,
// error) to the events exchange. Resource names the feed instance: "room",
// "roster", a user id for buddy feeds or a conversation key.
func publishWSEvent(feed, resource, event, reason string, info ConnInfo) {
	payload := map[string]interface{}{
		"feed":        feed,
		"resource":    resource,
		"conn_id":     info.ConnID,
		"user_id":     info.UserID,
		"screen_name": info.ScreenName,
		"device_id":   info.DeviceID,
		"ip":          info.IP,
	}
	if event != "ws_connect" && !info.ConnectedAt.IsZero() {
		payload["duration_ms"] = time.Since(info.ConnectedAt).Milliseconds()
	}
	if reason != "" {
		payload["reason"] = reason
	}

	envelope := observability.NewEventEnvelope("ws_lifecycle", event, payload)

	// Lifecycle events outlive the originating request.
	_ = observability.PublishEvent(context.Background(), "ws."+feed, envelope, observability.BuildHeaders(info.RequestID, info.TraceID))
}
