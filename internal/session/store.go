package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrTokenNotFound = errors.New("session token not found")

const tokenKeyPrefix = "session:"

// TokenStore holds live session tokens. Token TTL doubles as the presence
// heartbeat: every Touch pushes the expiry forward, and LiveUserIDs is the
// set of users whose sessions have not expired.
type TokenStore interface {
	Save(ctx context.Context, token string, userID string, ttl time.Duration) error
	Touch(ctx context.Context, token string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, token string) error
	LiveUserIDs(ctx context.Context) (map[string]bool, error)
}

// NewTokenStore connects to Redis, falling back to an in-process store
// when no address is configured or the connection fails.
func NewTokenStore(redisAddr string) TokenStore {
	if redisAddr == "" {
		log.Printf("redis disabled, using in-memory session store")
		return NewMemoryTokenStore()
	}

	client := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Printf("redis unavailable, using in-memory session store: %v", err)
		_ = client.Close()
		return NewMemoryTokenStore()
	}

	log.Printf("redis connected addr=%s", redisAddr)
	return &RedisTokenStore{client: client}
}

// RedisTokenStore keeps tokens in Redis with a TTL per session.
type RedisTokenStore struct {
	client *redis.Client
}

// NewRedisTokenStore wraps an existing client.
func NewRedisTokenStore(client *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{client: client}
}

func (s *RedisTokenStore) Save(ctx context.Context, token string, userID string, ttl time.Duration) error {
	return s.client.Set(ctx, tokenKeyPrefix+token, userID, ttl).Err()
}

func (s *RedisTokenStore) Touch(ctx context.Context, token string, ttl time.Duration) (string, error) {
	userID, err := s.client.GetEx(ctx, tokenKeyPrefix+token, ttl).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrTokenNotFound
	}
	return userID, err
}

func (s *RedisTokenStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, tokenKeyPrefix+token).Err()
}

func (s *RedisTokenStore) LiveUserIDs(ctx context.Context) (map[string]bool, error) {
	live := map[string]bool{}
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, tokenKeyPrefix+"*", 100).Result()
		if err != nil {
			return nil, err
		}
		for _, key := range keys {
			userID, err := s.client.Get(ctx, key).Result()
			if errors.Is(err, redis.Nil) {
				continue
			}
			if err != nil {
				return nil, err
			}
			live[userID] = true
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return live, nil
}

// MemoryTokenStore is the fallback used without Redis and in tests. With
// it, abrupt disconnects leave users online until the TTL-driven sweeper
// prunes the expired entry.
type MemoryTokenStore struct {
	mu     sync.Mutex
	tokens map[string]memoryEntry
}

type memoryEntry struct {
	userID  string
	expires time.Time
}

// NewMemoryTokenStore constructs an empty in-process store.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{tokens: make(map[string]memoryEntry)}
}

func (s *MemoryTokenStore) Save(ctx context.Context, token string, userID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = memoryEntry{userID: userID, expires: time.Now().Add(ttl)}
	return nil
}

func (s *MemoryTokenStore) Touch(ctx context.Context, token string, ttl time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.tokens[token]
	if !ok || time.Now().After(entry.expires) {
		delete(s.tokens, token)
		return "", ErrTokenNotFound
	}
	entry.expires = time.Now().Add(ttl)
	s.tokens[token] = entry
	return entry.userID, nil
}

func (s *MemoryTokenStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
	return nil
}

func (s *MemoryTokenStore) LiveUserIDs(ctx context.Context) (map[string]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	live := map[string]bool{}
	for token, entry := range s.tokens {
		if now.After(entry.expires) {
			delete(s.tokens, token)
			continue
		}
		live[entry.userID] = true
	}
	return live, nil
}

// StoreMode reports the store kind for startup logging.
func StoreMode(s TokenStore) string {
	switch s.(type) {
	case *RedisTokenStore:
		return "redis"
	case *MemoryTokenStore:
		return "memory"
	default:
		return "unknown"
	}
}
