package repositories

import (
	"context"
	"errors"
	"sort"

	"github.com/jmoiron/sqlx"

	"github.com/0xZumii/bleepblorp/internal/models"
)

var ErrRequestNotFound = errors.New("friend request not found")

// FriendRepository holds the relationship records behind the buddy list:
// directed friend requests and symmetric friendships.
type FriendRepository interface {
	CreateRequest(ctx context.Context, from models.User, to models.User) (models.FriendRequest, error)
	HasPendingBetween(ctx context.Context, userID string, otherID string) (bool, error)
	HasDeclined(ctx context.Context, fromID string, toID string) (bool, error)
	AcceptRequest(ctx context.Context, fromID string, toID string) (bool, error)
	DeclineRequest(ctx context.Context, fromID string, toID string) (bool, error)
	AreFriends(ctx context.Context, userID string, otherID string) (bool, error)
	CreateFriendship(ctx context.Context, a models.User, b models.User) (models.Friendship, error)
	RemoveFriendship(ctx context.Context, userID string, otherID string) error
	Snapshot(ctx context.Context, userID string) (models.BuddySnapshot, error)
}

// FriendRepo is a sqlx implementation of FriendRepository.
type FriendRepo struct {
	db *sqlx.DB
}

// NewFriendRepo constructs a FriendRepo.
func NewFriendRepo(db *sqlx.DB) *FriendRepo {
	return &FriendRepo{db: db}
}

// CreateRequest inserts a pending request. Guards against duplicates are
// enforced at the handler via HasPendingBetween/HasDeclined; two racing
// clients can still both insert, matching the store's per-row atomicity.
func (r *FriendRepo) CreateRequest(ctx context.Context, from models.User, to models.User) (models.FriendRequest, error) {
	var req models.FriendRequest
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO friend_requests (from_id, to_id, from_name, to_name, status)
         VALUES ($1, $2, $3, $4, $5)
         RETURNING id, from_id, to_id, from_name, to_name, status, created_at`,
		from.ID, to.ID, from.ScreenName, to.ScreenName, models.RequestPending).
		StructScan(&req)
	return req, err
}

// HasPendingBetween reports whether a pending request exists in either
// direction between the two users.
func (r *FriendRepo) HasPendingBetween(ctx context.Context, userID string, otherID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM friend_requests
         WHERE status=$3 AND ((from_id=$1 AND to_id=$2) OR (from_id=$2 AND to_id=$1)))`,
		userID, otherID, models.RequestPending)
	return exists, err
}

// HasDeclined reports whether a declined request from fromID to toID
// exists. Declined is terminal for the ordered pair.
func (r *FriendRepo) HasDeclined(ctx context.Context, fromID string, toID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM friend_requests
         WHERE from_id=$1 AND to_id=$2 AND status=$3)`,
		fromID, toID, models.RequestDeclined)
	return exists, err
}

// AcceptRequest transitions the pending request to accepted. Returns false
// when no pending request exists, which makes re-accepting a no-op.
func (r *FriendRepo) AcceptRequest(ctx context.Context, fromID string, toID string) (bool, error) {
	return r.transition(ctx, fromID, toID, models.RequestAccepted)
}

// DeclineRequest transitions the pending request to declined.
func (r *FriendRepo) DeclineRequest(ctx context.Context, fromID string, toID string) (bool, error) {
	return r.transition(ctx, fromID, toID, models.RequestDeclined)
}

func (r *FriendRepo) transition(ctx context.Context, fromID string, toID string, status string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE friend_requests SET status=$3
         WHERE from_id=$1 AND to_id=$2 AND status=$4`,
		fromID, toID, status, models.RequestPending)
	if err != nil {
		return false, err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// AreFriends reports whether a friendship row exists for the pair.
func (r *FriendRepo) AreFriends(ctx context.Context, userID string, otherID string) (bool, error) {
	user1, user2 := sortPair(userID, otherID)
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM friendships WHERE user1_id=$1 AND user2_id=$2)`, user1, user2)
	return exists, err
}

// CreateFriendship stores the symmetric relation as a sorted id pair. The
// unique constraint makes a concurrent duplicate accept collapse into one row.
func (r *FriendRepo) CreateFriendship(ctx context.Context, a models.User, b models.User) (models.Friendship, error) {
	if b.ID < a.ID {
		a, b = b, a
	}

	var fs models.Friendship
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO friendships (user1_id, user2_id, user1_name, user2_name)
         VALUES ($1, $2, $3, $4)
         ON CONFLICT (user1_id, user2_id) DO UPDATE SET user1_name=EXCLUDED.user1_name
         RETURNING id, user1_id, user2_id, user1_name, user2_name, created_at`,
		a.ID, b.ID, a.ScreenName, b.ScreenName).
		StructScan(&fs)
	return fs, err
}

// RemoveFriendship destroys the friendship record; both parties return to
// the unrelated state. The original request records persist untouched.
func (r *FriendRepo) RemoveFriendship(ctx context.Context, userID string, otherID string) error {
	user1, user2 := sortPair(userID, otherID)
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM friendships WHERE user1_id=$1 AND user2_id=$2`, user1, user2)
	return err
}

// Snapshot recomputes the derived buddy sets for the user from the live
// relationship rows.
func (r *FriendRepo) Snapshot(ctx context.Context, userID string) (models.BuddySnapshot, error) {
	snap := models.BuddySnapshot{
		Friends:         []string{},
		SentPending:     []string{},
		ReceivedPending: []string{},
	}

	rows, err := r.db.QueryxContext(ctx,
		`SELECT user1_id, user1_name, user2_name FROM friendships
         WHERE user1_id=$1 OR user2_id=$1 ORDER BY created_at ASC`, userID)
	if err != nil {
		return snap, err
	}
	defer rows.Close()
	for rows.Next() {
		var user1ID, user1Name, user2Name string
		if err := rows.Scan(&user1ID, &user1Name, &user2Name); err != nil {
			return snap, err
		}
		if user1ID == userID {
			snap.Friends = append(snap.Friends, user2Name)
		} else {
			snap.Friends = append(snap.Friends, user1Name)
		}
	}
	if err := rows.Err(); err != nil {
		return snap, err
	}

	if err := r.db.SelectContext(ctx, &snap.SentPending,
		`SELECT to_name FROM friend_requests
         WHERE from_id=$1 AND status=$2 ORDER BY created_at ASC`,
		userID, models.RequestPending); err != nil {
		return snap, err
	}

	err = r.db.SelectContext(ctx, &snap.ReceivedPending,
		`SELECT from_name FROM friend_requests
         WHERE to_id=$1 AND status=$2 ORDER BY created_at ASC`,
		userID, models.RequestPending)
	return snap, err
}

func sortPair(a, b string) (string, string) {
	pair := []string{a, b}
	sort.Strings(pair)
	return pair[0], pair[1]
}
