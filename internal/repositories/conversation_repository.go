package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/0xZumii/bleepblorp/internal/models"
)

var ErrConversationNotFound = errors.New("conversation not found")

// ConversationRepository persists private message threads. Conversations
// are created implicitly on first open and never deleted, so history
// survives friend removal and is reachable again if the pair re-befriends.
type ConversationRepository interface {
	CreateOrGetConversation(ctx context.Context, userID string, friendID string) (models.Conversation, error)
	GetConversation(ctx context.Context, key string) (models.Conversation, error)
	IsParticipant(ctx context.Context, key string, userID string) (bool, error)
	AppendPrivateMessage(ctx context.Context, key string, authorID string, authorName string, body string) (models.PrivateMessage, error)
	ListPrivateMessages(ctx context.Context, key string) ([]models.PrivateMessage, error)
}

// ConversationRepo is a sqlx implementation of ConversationRepository.
type ConversationRepo struct {
	db *sqlx.DB
}

// NewConversationRepo constructs a ConversationRepo.
func NewConversationRepo(db *sqlx.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

// CreateOrGetConversation resolves the deterministic key for the pair and
// creates the thread if it does not exist yet.
func (r *ConversationRepo) CreateOrGetConversation(ctx context.Context, userID string, friendID string) (models.Conversation, error) {
	if userID == friendID {
		return models.Conversation{}, errors.New("cannot converse with self")
	}
	key := models.PairKey(userID, friendID)
	user1, user2 := sortPair(userID, friendID)

	var convo models.Conversation
	err := r.db.GetContext(ctx, &convo,
		`SELECT key, user1_id, user2_id, created_at FROM conversations WHERE key=$1`, key)
	if err == nil {
		return convo, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.Conversation{}, err
	}

	err = r.db.QueryRowxContext(ctx,
		`INSERT INTO conversations (key, user1_id, user2_id) VALUES ($1, $2, $3)
         ON CONFLICT (key) DO UPDATE SET user1_id=EXCLUDED.user1_id
         RETURNING key, user1_id, user2_id, created_at`,
		key, user1, user2).
		StructScan(&convo)
	return convo, err
}

// GetConversation fetches a conversation by key.
func (r *ConversationRepo) GetConversation(ctx context.Context, key string) (models.Conversation, error) {
	var convo models.Conversation
	err := r.db.GetContext(ctx, &convo,
		`SELECT key, user1_id, user2_id, created_at FROM conversations WHERE key=$1`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Conversation{}, ErrConversationNotFound
	}
	return convo, err
}

// IsParticipant checks whether the user belongs to the conversation.
// A missing conversation is ErrConversationNotFound, not a plain false, so
// callers can tell an outsider from a key that never existed.
func (r *ConversationRepo) IsParticipant(ctx context.Context, key string, userID string) (bool, error) {
	var convo models.Conversation
	err := r.db.GetContext(ctx, &convo,
		`SELECT key, user1_id, user2_id, created_at FROM conversations WHERE key=$1`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrConversationNotFound
	}
	if err != nil {
		return false, err
	}
	return convo.HasParticipant(userID), nil
}

// AppendPrivateMessage stores one private message in the thread.
func (r *ConversationRepo) AppendPrivateMessage(ctx context.Context, key string, authorID string, authorName string, body string) (models.PrivateMessage, error) {
	var msg models.PrivateMessage
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO private_messages (conversation_key, author_id, author_name, body)
         VALUES ($1, $2, $3, $4)
         RETURNING id, conversation_key, author_id, author_name, body, created_at`,
		key, authorID, authorName, body).
		StructScan(&msg)
	return msg, err
}

// ListPrivateMessages returns the thread history ordered by creation time.
func (r *ConversationRepo) ListPrivateMessages(ctx context.Context, key string) ([]models.PrivateMessage, error) {
	var msgs []models.PrivateMessage
	err := r.db.SelectContext(ctx, &msgs,
		`SELECT id, conversation_key, author_id, author_name, body, created_at
         FROM private_messages WHERE conversation_key=$1 ORDER BY created_at ASC, id ASC`, key)
	return msgs, err
}
