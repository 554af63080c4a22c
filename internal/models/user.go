package models

import "time"

// User is an anonymous identity bound to a chosen screen name.
type User struct {
	ID         string    `db:"id" json:"user_id"`
	ScreenName string    `db:"screen_name" json:"screen_name"`
	Online     bool      `db:"online" json:"online"`
	LastSeen   time.Time `db:"last_seen" json:"last_seen"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// RosterEvent is broadcast over the roster feed whenever presence changes.
// It always carries the full set of online screen names.
type RosterEvent struct {
	Type   string   `json:"type"`
	Online []string `json:"online"`
}
