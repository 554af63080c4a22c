package ws

import "time"

// ConnInfo identifies one websocket subscriber for lifecycle eventing.
type ConnInfo struct {
	ConnID      string
	UserID      string
	ScreenName  string
	DeviceID    string
	IP          string
	RequestID   string
	TraceID     string
	ConnectedAt time.Time
}
