package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/redis/go-redis/v9"
)

// ErrInvalidToken indicates a token that does not resolve to a live session.
var ErrInvalidToken = errors.New("invalid token")

// TokenStore issues, resolves and revokes opaque session tokens. A token is
// live from Issue until Revoke; there is no expiry and no tombstone state.
type TokenStore interface {
	Issue(ctx context.Context, userID int64) (string, error)
	Resolve(ctx context.Context, token string) (int64, error)
	// Revoke is idempotent; revoking an unknown token is a no-op.
	Revoke(ctx context.Context, token string) error
}

// generateToken returns 32 bytes of crypto/rand entropy, base64url encoded.
func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("auth: generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// MemoryTokenStore is a mutex-guarded in-process TokenStore. Each instance
// owns its own mapping, so tests can run against independent stores.
type MemoryTokenStore struct {
	mu     sync.Mutex
	tokens map[string]int64
}

// NewMemoryTokenStore constructs an empty store.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{tokens: make(map[string]int64)}
}

// Issue generates a fresh token bound to userID.
func (s *MemoryTokenStore) Issue(ctx context.Context, userID int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		token, err := generateToken()
		if err != nil {
			return "", err
		}
		if _, exists := s.tokens[token]; exists {
			continue
		}
		s.tokens[token] = userID
		return token, nil
	}
}

// Resolve returns the user bound to token.
func (s *MemoryTokenStore) Resolve(ctx context.Context, token string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	userID, ok := s.tokens[token]
	if !ok {
		return 0, ErrInvalidToken
	}
	return userID, nil
}

// Revoke deletes the token outright.
func (s *MemoryTokenStore) Revoke(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
	return nil
}

// RedisTokenStore keeps the token mapping in Redis so multiple processes can
// share one authoritative store.
type RedisTokenStore struct {
	client *redis.Client
}

// NewRedisTokenStore constructs a store on an existing client.
func NewRedisTokenStore(client *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{client: client}
}

func (s *RedisTokenStore) key(token string) string {
	return "token:" + token
}

// Issue generates a fresh token bound to userID. SETNX guards against the
// astronomically unlikely collision with a live token.
func (s *RedisTokenStore) Issue(ctx context.Context, userID int64) (string, error) {
	for {
		token, err := generateToken()
		if err != nil {
			return "", err
		}
		ok, err := s.client.SetNX(ctx, s.key(token), userID, 0).Result()
		if err != nil {
			return "", err
		}
		if ok {
			return token, nil
		}
	}
}

// Resolve returns the user bound to token.
func (s *RedisTokenStore) Resolve(ctx context.Context, token string) (int64, error) {
	val, err := s.client.Get(ctx, s.key(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrInvalidToken
		}
		return 0, err
	}
	userID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return userID, nil
}

// Revoke deletes the token outright.
func (s *RedisTokenStore) Revoke(ctx context.Context, token string) error {
	return s.client.Del(ctx, s.key(token)).Err()
}

var (
	_ TokenStore = (*MemoryTokenStore)(nil)
	_ TokenStore = (*RedisTokenStore)(nil)
)
