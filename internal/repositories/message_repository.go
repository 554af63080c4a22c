package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/0xZumii/bleepblorp/internal/models"
)

// MessageRepository defines interactions with the public room feed.
type MessageRepository interface {
	AppendMessage(ctx context.Context, authorID string, authorName string, body string, isSystem bool) (models.Message, error)
	ListMessages(ctx context.Context) ([]models.Message, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// AppendMessage stores one room message. Messages are append-only.
func (r *MessageRepo) AppendMessage(ctx context.Context, authorID string, authorName string, body string, isSystem bool) (models.Message, error) {
	var msg models.Message
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO messages (author_id, author_name, body, is_system) VALUES ($1, $2, $3, $4)
         RETURNING id, author_id, author_name, body, is_system, created_at`,
		authorID, authorName, body, isSystem).
		StructScan(&msg)
	return msg, err
}

// ListMessages returns the full room history ordered by creation time.
func (r *MessageRepo) ListMessages(ctx context.Context) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs,
		`SELECT id, author_id, author_name, body, is_system, created_at
         FROM messages ORDER BY created_at ASC, id ASC`)
	return msgs, err
}
