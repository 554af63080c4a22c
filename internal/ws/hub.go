package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/0xZumii/bleepblorp/internal/models"
	"github.com/0xZumii/bleepblorp/internal/observability"
)

// Feed labels used in metrics and lifecycle events.
const (
	FeedRoom         = "room"
	FeedRoster       = "roster"
	FeedBuddies      = "buddies"
	FeedConversation = "conversation"
)

// subscriber pairs a connection's identity with a write lock. Gorilla
// connections allow at most one concurrent writer, and broadcasts run on
// whichever request goroutine triggered them.
type subscriber struct {
	info ConnInfo
	mu   sync.Mutex
}

func (s *subscriber) write(conn *websocket.Conn, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return conn.WriteMessage(websocket.TextMessage, payload)
}

// Hub maintains the live subscription feeds: one shared room feed, one
// shared roster feed, a buddy feed per user, and a feed per open
// conversation keyed by the deterministic conversation key.
type Hub struct {
	roomConns   map[*websocket.Conn]*subscriber
	rosterConns map[*websocket.Conn]*subscriber
	buddyConns  map[string]map[*websocket.Conn]*subscriber
	convoConns  map[string]map[*websocket.Conn]*subscriber
	mu          sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		roomConns:   make(map[*websocket.Conn]*subscriber),
		rosterConns: make(map[*websocket.Conn]*subscriber),
		buddyConns:  make(map[string]map[*websocket.Conn]*subscriber),
		convoConns:  make(map[string]map[*websocket.Conn]*subscriber),
	}
}

// AddRoomClient registers a subscriber on the public room feed.
func (h *Hub) AddRoomClient(conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.roomConns[conn] = &subscriber{info: info}
}

// RemoveRoomClient drops a room feed subscriber.
func (h *Hub) RemoveRoomClient(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.roomConns, conn)
}

// AddRosterClient registers a subscriber on the presence roster feed.
func (h *Hub) AddRosterClient(conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.rosterConns[conn] = &subscriber{info: info}
}

// RemoveRosterClient drops a roster feed subscriber.
func (h *Hub) RemoveRosterClient(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.rosterConns, conn)
}

// AddBuddyClient registers a subscriber on one user's buddy feed.
func (h *Hub) AddBuddyClient(userID string, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.buddyConns[userID]; !ok {
		h.buddyConns[userID] = make(map[*websocket.Conn]*subscriber)
	}
	h.buddyConns[userID][conn] = &subscriber{info: info}
}

// RemoveBuddyClient drops a buddy feed subscriber.
func (h *Hub) RemoveBuddyClient(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.buddyConns[userID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.buddyConns, userID)
		}
	}
}

// AddConversationClient registers a subscriber on a conversation feed.
func (h *Hub) AddConversationClient(key string, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.convoConns[key]; !ok {
		h.convoConns[key] = make(map[*websocket.Conn]*subscriber)
	}
	h.convoConns[key][conn] = &subscriber{info: info}
}

// RemoveConversationClient drops a conversation feed subscriber. The feed
// entry disappears with its last subscriber, releasing the resource.
func (h *Hub) RemoveConversationClient(key string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.convoConns[key]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.convoConns, key)
		}
	}
}

// BroadcastRoomMessage pushes a new room message to all room subscribers.
func (h *Hub) BroadcastRoomMessage(msg models.Message) {
	payload, _ := json.Marshal(models.RoomEvent{Type: "message", Message: &msg})
	h.mu.RLock()
	conns := copyConns(h.roomConns)
	h.mu.RUnlock()

	for conn, sub := range conns {
		if err := sub.write(conn, payload); err != nil {
			log.Printf("websocket write error: %v", err)
			conn.Close()
			h.RemoveRoomClient(conn)
			publishWSEvent(FeedRoom, "room", "ws_error", err.Error(), sub.info)
			observability.IncWSEvent(FeedRoom, "ws_error")
		}
	}
}

// BroadcastRoster pushes the full set of online screen names to all
// roster subscribers.
func (h *Hub) BroadcastRoster(online []string) {
	payload, _ := json.Marshal(models.RosterEvent{Type: "roster", Online: online})
	h.mu.RLock()
	conns := copyConns(h.rosterConns)
	h.mu.RUnlock()

	for conn, sub := range conns {
		if err := sub.write(conn, payload); err != nil {
			log.Printf("websocket write error: %v", err)
			conn.Close()
			h.RemoveRosterClient(conn)
			publishWSEvent(FeedRoster, "roster", "ws_error", err.Error(), sub.info)
			observability.IncWSEvent(FeedRoster, "ws_error")
		}
	}
}

// BroadcastBuddySnapshot pushes a recomputed buddy snapshot to one user's
// buddy feed.
func (h *Hub) BroadcastBuddySnapshot(userID string, snap models.BuddySnapshot) {
	payload, _ := json.Marshal(models.BuddyEvent{Type: "buddies", Snapshot: &snap})
	h.mu.RLock()
	conns := copyConns(h.buddyConns[userID])
	h.mu.RUnlock()

	for conn, sub := range conns {
		if err := sub.write(conn, payload); err != nil {
			log.Printf("websocket write error: %v", err)
			conn.Close()
			h.RemoveBuddyClient(userID, conn)
			publishWSEvent(FeedBuddies, userID, "ws_error", err.Error(), sub.info)
			observability.IncWSEvent(FeedBuddies, "ws_error")
		}
	}
}

// BroadcastPrivateMessage pushes a private message to its conversation feed.
func (h *Hub) BroadcastPrivateMessage(key string, msg models.PrivateMessage) {
	payload, _ := json.Marshal(models.ConversationEvent{Type: "message", Message: &msg})
	h.mu.RLock()
	conns := copyConns(h.convoConns[key])
	h.mu.RUnlock()

	for conn, sub := range conns {
		if err := sub.write(conn, payload); err != nil {
			log.Printf("websocket write error: %v", err)
			conn.Close()
			h.RemoveConversationClient(key, conn)
			publishWSEvent(FeedConversation, key, "ws_error", err.Error(), sub.info)
			observability.IncWSEvent(FeedConversation, "ws_error")
		}
	}
}

func copyConns(conns map[*websocket.Conn]*subscriber) map[*websocket.Conn]*subscriber {
	out := make(map[*websocket.Conn]*subscriber, len(conns))
	for conn, sub := range conns {
		out[conn] = sub
	}
	return out
}
