package models

import "time"

// Friend request status values. A request is created pending and
// transitions to accepted or declined exactly once, never back.
const (
	RequestPending  = "pending"
	RequestAccepted = "accepted"
	RequestDeclined = "declined"
)

// FriendRequest records one directed request from one user to another.
// Requests are never deleted; their status is the relationship history.
type FriendRequest struct {
	ID        int       `db:"id" json:"id"`
	FromID    string    `db:"from_id" json:"from_id"`
	ToID      string    `db:"to_id" json:"to_id"`
	FromName  string    `db:"from_name" json:"from_name"`
	ToName    string    `db:"to_name" json:"to_name"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Friendship is a symmetric relation stored as a sorted id pair so each
// pair maps to at most one row.
type Friendship struct {
	ID        int       `db:"id" json:"id"`
	User1ID   string    `db:"user1_id" json:"user1_id"`
	User2ID   string    `db:"user2_id" json:"user2_id"`
	User1Name string    `db:"user1_name" json:"user1_name"`
	User2Name string    `db:"user2_name" json:"user2_name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// BuddySnapshot is the derived view of a user's social graph, recomputed
// from live relationship rows on every update.
type BuddySnapshot struct {
	Friends         []string `json:"friends"`
	SentPending     []string `json:"sent_pending"`
	ReceivedPending []string `json:"received_pending"`
}

// BuddyEvent is broadcast over a user's buddy feed.
type BuddyEvent struct {
	Type     string         `json:"type"`
	Snapshot *BuddySnapshot `json:"snapshot,omitempty"`
}
