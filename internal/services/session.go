package services

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "auth_"

// SessionStore is the read side of the external key-value session store.
type SessionStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Ping(ctx context.Context) error
}

type RedisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func (s *RedisSessionStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (s *RedisSessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// AuthGate resolves session tokens to user ids. It asks the store on every
// call.
type AuthGate struct {
	sessions SessionStore
}

func NewAuthGate(sessions SessionStore) *AuthGate {
	return &AuthGate{sessions: sessions}
}

// SessionKey is the store key holding the user id for token.
func SessionKey(token string) string {
	return sessionKeyPrefix + token
}

// ResolveUser returns ErrUnauthorized when the token is empty or unknown.
func (g *AuthGate) ResolveUser(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrUnauthorized
	}

	userID, ok, err := g.sessions.Get(ctx, SessionKey(token))
	if err != nil {
		return "", &StorageError{Op: "session lookup", Err: err}
	}
	if !ok || userID == "" {
		return "", ErrUnauthorized
	}
	return userID, nil
}

// Alive reports whether the session store answers.
func (g *AuthGate) Alive(ctx context.Context) bool {
	return g.sessions.Ping(ctx) == nil
}
