package models

import (
	"sort"
	"strings"
	"time"
)

// Conversation is a private message thread between two friends, keyed by
// the sorted participant id pair.
type Conversation struct {
	Key       string    `db:"key" json:"conversation_key"`
	User1ID   string    `db:"user1_id" json:"user1_id"`
	User2ID   string    `db:"user2_id" json:"user2_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// PrivateMessage is one message inside a conversation.
type PrivateMessage struct {
	ID              int       `db:"id" json:"id"`
	ConversationKey string    `db:"conversation_key" json:"conversation_key"`
	AuthorID        string    `db:"author_id" json:"author_id"`
	AuthorName      string    `db:"author_name" json:"author_name"`
	Body            string    `db:"body" json:"body"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// ConversationEvent is broadcast over a conversation feed.
type ConversationEvent struct {
	Type    string          `json:"type"`
	Message *PrivateMessage `json:"message,omitempty"`
}

// PairKey derives the deterministic conversation key for two user ids.
// Both participants resolve the same key regardless of who initiates.
func PairKey(a, b string) string {
	ids := []string{a, b}
	sort.Strings(ids)
	return strings.Join(ids, "_")
}

// HasParticipant reports whether the user belongs to the conversation.
func (c Conversation) HasParticipant(userID string) bool {
	return c.User1ID == userID || c.User2ID == userID
}
