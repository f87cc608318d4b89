package auth

import (
	"context"
	"sync"
	"time"
)

// MemorySessionStore keeps session state in-memory. It is safe for concurrent
// use and intended for single-instance deployments; tokens do not survive a
// restart.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]time.Time
}

// NewMemorySessionStore constructs an in-memory store implementation.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]time.Time)}
}

// Save records the expiry for the provided token.
func (s *MemorySessionStore) Save(token string, expiresAt time.Time) error {
	s.mu.Lock()
	s.sessions[token] = expiresAt
	s.mu.Unlock()
	return nil
}

// Get retrieves the expiry for the provided token.
func (s *MemorySessionStore) Get(token string) (time.Time, bool, error) {
	s.mu.RLock()
	expiresAt, ok := s.sessions[token]
	s.mu.RUnlock()
	return expiresAt, ok, nil
}

// Delete removes the session token from the store.
func (s *MemorySessionStore) Delete(token string) error {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
	return nil
}

// Ping always reports success for the in-memory session store.
func (s *MemorySessionStore) Ping(context.Context) error {
	return nil
}
