package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// TokenStorage guards the capture flow: each session id maps to the nonce
// issued at start-verification, removed once the session reaches a
// terminal handoff. Safe for concurrent use.
type TokenStorage interface {
	// StoreToken stores the nonce for the given session id, overwriting
	// any existing value.
	StoreToken(sessionId string, nonce string) error

	// RetrieveToken returns the nonce for the given session id, or an
	// error when none is stored.
	RetrieveToken(sessionId string) (string, error)

	// RemoveToken removes the nonce. A missing value is an error: it
	// means the session was already consumed.
	RemoveToken(sessionId string) error
}

// Nonces outlive the longest plausible capture flow but not a working day.
const tokenTimeout = 30 * time.Minute

type RedisTokenStorage struct {
	client    *goredis.Client
	namespace string
}

func NewRedisTokenStorage(client *goredis.Client, namespace string) *RedisTokenStorage {
	return &RedisTokenStorage{client: client, namespace: namespace}
}

func createKey(namespace, sessionId string) string {
	return fmt.Sprintf("%s:token:%s", namespace, sessionId)
}

func (s *RedisTokenStorage) StoreToken(sessionId string, nonce string) error {
	ctx := context.Background()
	return s.client.Set(ctx, createKey(s.namespace, sessionId), nonce, tokenTimeout).Err()
}

func (s *RedisTokenStorage) RetrieveToken(sessionId string) (string, error) {
	ctx := context.Background()
	return s.client.Get(ctx, createKey(s.namespace, sessionId)).Result()
}

func (s *RedisTokenStorage) RemoveToken(sessionId string) error {
	ctx := context.Background()
	return s.client.Del(ctx, createKey(s.namespace, sessionId)).Err()
}

// ------------------------------------------------------------------------------

type InMemoryTokenStorage struct {
	TokenMap map[string]string
	mutex    sync.Mutex
}

func NewInMemoryTokenStorage() *InMemoryTokenStorage {
	return &InMemoryTokenStorage{
		TokenMap: make(map[string]string),
	}
}

func (s *InMemoryTokenStorage) StoreToken(sessionId, nonce string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.TokenMap[sessionId] = nonce
	return nil
}

func (s *InMemoryTokenStorage) RetrieveToken(sessionId string) (string, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if nonce, ok := s.TokenMap[sessionId]; ok {
		return nonce, nil
	}
	return "", fmt.Errorf("failed to find token for %s", sessionId)
}

func (s *InMemoryTokenStorage) RemoveToken(sessionId string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.TokenMap[sessionId]; !ok {
		return fmt.Errorf("failed to remove token for %s, because it wasn't there", sessionId)
	}
	delete(s.TokenMap, sessionId)
	return nil
}
