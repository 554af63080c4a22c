package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/0xZumii/bleepblorp/internal/models"
	"github.com/0xZumii/bleepblorp/internal/observability"
	"github.com/0xZumii/bleepblorp/internal/repositories"
)

// MaxScreenNameLen caps the chosen screen name.
const MaxScreenNameLen = 16

var (
	ErrEmptyScreenName   = errors.New("screen name is empty")
	ErrScreenNameTooLong = errors.New("screen name too long")
)

// Broadcaster is the slice of the ws hub the session layer fans out
// through: the public room feed and the presence roster feed.
type Broadcaster interface {
	BroadcastRoomMessage(msg models.Message)
	BroadcastRoster(online []string)
}

// Manager owns anonymous sign-on, session tokens and presence.
type Manager struct {
	users    repositories.UserRepository
	messages repositories.MessageRepository
	tokens   TokenStore
	hub      Broadcaster
	ttl      time.Duration
}

// NewManager constructs a Manager.
func NewManager(users repositories.UserRepository, messages repositories.MessageRepository, tokens TokenStore, hub Broadcaster, ttl time.Duration) *Manager {
	return &Manager{users: users, messages: messages, tokens: tokens, hub: hub, ttl: ttl}
}

// SignOn establishes an anonymous identity under the screen name, marks it
// online, announces the arrival in the room and issues a session token.
func (m *Manager) SignOn(ctx context.Context, screenName string) (models.User, string, error) {
	name := strings.TrimSpace(screenName)
	if name == "" {
		return models.User{}, "", ErrEmptyScreenName
	}
	if utf8.RuneCountInString(name) > MaxScreenNameLen {
		return models.User{}, "", ErrScreenNameTooLong
	}

	user, err := m.users.CreateUser(ctx, uuid.NewString(), name)
	if err != nil {
		return models.User{}, "", err
	}

	token := newToken()
	if err := m.tokens.Save(ctx, token, user.ID, m.ttl); err != nil {
		// The user row stays online but unreachable; the sweeper
		// reclaims it once no live token exists.
		return models.User{}, "", err
	}

	if err := m.announce(ctx, user.ID, fmt.Sprintf("*** %s has entered BleepBlorp ***", name)); err != nil {
		return models.User{}, "", err
	}
	m.refreshRoster(ctx)
	return user, token, nil
}

// Validate resolves a token to its user, pushing the session expiry
// forward. Every authenticated request is a presence heartbeat.
func (m *Manager) Validate(ctx context.Context, token string) (models.User, error) {
	userID, err := m.tokens.Touch(ctx, token, m.ttl)
	if err != nil {
		return models.User{}, err
	}
	return m.users.GetUser(ctx, userID)
}

// SignOff tears the session down: presence off, departure notice, token
// revoked. Cleanup failures are logged, never surfaced and never retried.
func (m *Manager) SignOff(ctx context.Context, token string, user models.User) {
	if err := m.tokens.Delete(ctx, token); err != nil {
		log.Printf("sign-off token delete failed user=%s: %v", user.ScreenName, err)
	}
	m.goOffline(ctx, user)
}

// ExpireUser is invoked by the sweeper for users whose session token
// lapsed without an explicit sign-off.
func (m *Manager) ExpireUser(ctx context.Context, user models.User) {
	log.Printf("session expired user=%s", user.ScreenName)
	m.goOffline(ctx, user)
}

func (m *Manager) goOffline(ctx context.Context, user models.User) {
	if err := m.users.SetOnline(ctx, user.ID, false); err != nil {
		log.Printf("presence update failed user=%s: %v", user.ScreenName, err)
	}
	if err := m.announce(ctx, user.ID, fmt.Sprintf("*** %s has left BleepBlorp ***", user.ScreenName)); err != nil {
		log.Printf("departure notice failed user=%s: %v", user.ScreenName, err)
	}
	m.refreshRoster(ctx)
}

func (m *Manager) announce(ctx context.Context, userID string, text string) error {
	msg, err := m.messages.AppendMessage(ctx, userID, models.SystemAuthor, text, true)
	if err != nil {
		return err
	}
	m.hub.BroadcastRoomMessage(msg)
	return nil
}

func (m *Manager) refreshRoster(ctx context.Context) {
	online, err := m.users.ListOnline(ctx)
	if err != nil {
		log.Printf("roster refresh failed: %v", err)
		return
	}
	names := make([]string, 0, len(online))
	for _, u := range online {
		names = append(names, u.ScreenName)
	}
	observability.SetOnlineUsers(len(names))
	m.hub.BroadcastRoster(names)
}

func newToken() string {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return uuid.NewString()
	}
	return hex.EncodeToString(buf)
}
