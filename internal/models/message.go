package models

import "time"

// SystemAuthor is the author name carried by session lifecycle notices.
const SystemAuthor = "SYSTEM"

// Message is a public room message. Messages are immutable once created
// and ordered by created_at ascending.
type Message struct {
	ID         int       `db:"id" json:"id"`
	AuthorID   string    `db:"author_id" json:"author_id"`
	AuthorName string    `db:"author_name" json:"author_name"`
	Body       string    `db:"body" json:"body"`
	IsSystem   bool      `db:"is_system" json:"is_system"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// RoomEvent is broadcast over the room feed.
type RoomEvent struct {
	Type    string   `json:"type"`
	Message *Message `json:"message,omitempty"`
}
