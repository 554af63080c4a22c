package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/0xZumii/bleepblorp/internal/models"
	"github.com/0xZumii/bleepblorp/internal/repositories"
	"github.com/0xZumii/bleepblorp/internal/session"
)

type UserRepositoryMock struct {
	mock.Mock
}

var _ repositories.UserRepository = (*UserRepositoryMock)(nil)

func (m *UserRepositoryMock) CreateUser(ctx context.Context, id string, screenName string) (models.User, error) {
	args := m.Called(ctx, id, screenName)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *UserRepositoryMock) GetUser(ctx context.Context, id string) (models.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *UserRepositoryMock) GetUserByScreenName(ctx context.Context, screenName string) (models.User, error) {
	args := m.Called(ctx, screenName)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *UserRepositoryMock) SetOnline(ctx context.Context, id string, online bool) error {
	args := m.Called(ctx, id, online)
	return args.Error(0)
}

func (m *UserRepositoryMock) ListOnline(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	if users := args.Get(0); users != nil {
		return users.([]models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

type MessageRepositoryMock struct {
	mock.Mock
}

var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)

func (m *MessageRepositoryMock) AppendMessage(ctx context.Context, authorID string, authorName string, body string, isSystem bool) (models.Message, error) {
	args := m.Called(ctx, authorID, authorName, body, isSystem)
	return args.Get(0).(models.Message), args.Error(1)
}

func (m *MessageRepositoryMock) ListMessages(ctx context.Context) ([]models.Message, error) {
	args := m.Called(ctx)
	if msgs := args.Get(0); msgs != nil {
		return msgs.([]models.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

type FriendRepositoryMock struct {
	mock.Mock
}

var _ repositories.FriendRepository = (*FriendRepositoryMock)(nil)

func (m *FriendRepositoryMock) CreateRequest(ctx context.Context, from models.User, to models.User) (models.FriendRequest, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(models.FriendRequest), args.Error(1)
}

func (m *FriendRepositoryMock) HasPendingBetween(ctx context.Context, userID string, otherID string) (bool, error) {
	args := m.Called(ctx, userID, otherID)
	return args.Bool(0), args.Error(1)
}

func (m *FriendRepositoryMock) HasDeclined(ctx context.Context, fromID string, toID string) (bool, error) {
	args := m.Called(ctx, fromID, toID)
	return args.Bool(0), args.Error(1)
}

func (m *FriendRepositoryMock) AcceptRequest(ctx context.Context, fromID string, toID string) (bool, error) {
	args := m.Called(ctx, fromID, toID)
	return args.Bool(0), args.Error(1)
}

func (m *FriendRepositoryMock) DeclineRequest(ctx context.Context, fromID string, toID string) (bool, error) {
	args := m.Called(ctx, fromID, toID)
	return args.Bool(0), args.Error(1)
}

func (m *FriendRepositoryMock) AreFriends(ctx context.Context, userID string, otherID string) (bool, error) {
	args := m.Called(ctx, userID, otherID)
	return args.Bool(0), args.Error(1)
}

func (m *FriendRepositoryMock) CreateFriendship(ctx context.Context, a models.User, b models.User) (models.Friendship, error) {
	args := m.Called(ctx, a, b)
	return args.Get(0).(models.Friendship), args.Error(1)
}

func (m *FriendRepositoryMock) RemoveFriendship(ctx context.Context, userID string, otherID string) error {
	args := m.Called(ctx, userID, otherID)
	return args.Error(0)
}

func (m *FriendRepositoryMock) Snapshot(ctx context.Context, userID string) (models.BuddySnapshot, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(models.BuddySnapshot), args.Error(1)
}

type ConversationRepositoryMock struct {
	mock.Mock
}

var _ repositories.ConversationRepository = (*ConversationRepositoryMock)(nil)

func (m *ConversationRepositoryMock) CreateOrGetConversation(ctx context.Context, userID string, friendID string) (models.Conversation, error) {
	args := m.Called(ctx, userID, friendID)
	return args.Get(0).(models.Conversation), args.Error(1)
}

func (m *ConversationRepositoryMock) GetConversation(ctx context.Context, key string) (models.Conversation, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(models.Conversation), args.Error(1)
}

func (m *ConversationRepositoryMock) IsParticipant(ctx context.Context, key string, userID string) (bool, error) {
	args := m.Called(ctx, key, userID)
	return args.Bool(0), args.Error(1)
}

func (m *ConversationRepositoryMock) AppendPrivateMessage(ctx context.Context, key string, authorID string, authorName string, body string) (models.PrivateMessage, error) {
	args := m.Called(ctx, key, authorID, authorName, body)
	return args.Get(0).(models.PrivateMessage), args.Error(1)
}

func (m *ConversationRepositoryMock) ListPrivateMessages(ctx context.Context, key string) ([]models.PrivateMessage, error) {
	args := m.Called(ctx, key)
	if msgs := args.Get(0); msgs != nil {
		return msgs.([]models.PrivateMessage), args.Error(1)
	}
	return nil, args.Error(1)
}

type TokenStoreMock struct {
	mock.Mock
}

var _ session.TokenStore = (*TokenStoreMock)(nil)

func (m *TokenStoreMock) Save(ctx context.Context, token string, userID string, ttl time.Duration) error {
	args := m.Called(ctx, token, userID, ttl)
	return args.Error(0)
}

func (m *TokenStoreMock) Touch(ctx context.Context, token string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, token, ttl)
	return args.String(0), args.Error(1)
}

func (m *TokenStoreMock) Delete(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *TokenStoreMock) LiveUserIDs(ctx context.Context) (map[string]bool, error) {
	args := m.Called(ctx)
	if live := args.Get(0); live != nil {
		return live.(map[string]bool), args.Error(1)
	}
	return nil, args.Error(1)
}
