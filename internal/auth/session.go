// Package auth issues and validates admin session tokens. The site has a
// single administrator whose password is configured at deploy time; a
// successful login yields an opaque bearer token with an absolute TTL.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"time"

	"golang.org/x/crypto/pbkdf2"
)

const (
	passwordCompareSaltLength = 16
	passwordCompareKeyLength  = 32
	passwordCompareIterations = 120000

	// DefaultSessionTTL is the absolute lifetime of an admin session.
	DefaultSessionTTL = 24 * time.Hour
)

// ErrInvalidPassword is returned when a login attempt carries the wrong
// password.
var ErrInvalidPassword = errors.New("invalid password")

// SessionStore defines the persistence contract for session tokens.
type SessionStore interface {
	Save(token string, expiresAt time.Time) error
	Get(token string) (time.Time, bool, error)
	Delete(token string) error
}

// SessionOption configures a SessionManager instance.
type SessionOption func(*SessionManager)

// WithStore injects a custom SessionStore implementation.
func WithStore(store SessionStore) SessionOption {
	return func(m *SessionManager) {
		if store != nil {
			m.store = store
		}
	}
}

// WithTokenLength sets the token length in bytes for newly created sessions.
func WithTokenLength(length int) SessionOption {
	return func(m *SessionManager) {
		if length > 0 {
			m.tokenLength = length
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) SessionOption {
	return func(m *SessionManager) {
		if now != nil {
			m.now = now
		}
	}
}

// SessionManager validates the admin password and coordinates session
// creation and validation against a backing store.
type SessionManager struct {
	store        SessionStore
	ttl          time.Duration
	tokenLength  int
	tokenFactory func(int) (string, error)
	now          func() time.Time

	// The configured password is stretched once at construction; login
	// attempts are stretched with the same salt and compared in constant
	// time.
	compareSalt []byte
	compareKey  []byte
}

// NewSessionManager constructs a SessionManager guarding access with the
// provided admin password. The manager defaults to a 24-hour TTL and an
// in-memory store when no store is supplied.
func NewSessionManager(password string, ttl time.Duration, opts ...SessionOption) (*SessionManager, error) {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	salt := make([]byte, passwordCompareSaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	manager := &SessionManager{
		ttl:          ttl,
		tokenLength:  32,
		tokenFactory: generateToken,
		now:          func() time.Time { return time.Now().UTC() },
		compareSalt:  salt,
		compareKey:   stretchPassword(password, salt),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(manager)
		}
	}
	if manager.store == nil {
		manager.store = NewMemorySessionStore()
	}
	return manager, nil
}

// Issue verifies the admin password and, on success, creates a new session
// token with the configured TTL.
func (m *SessionManager) Issue(password string) (string, time.Time, error) {
	candidate := stretchPassword(password, m.compareSalt)
	if subtle.ConstantTimeCompare(candidate, m.compareKey) != 1 {
		return "", time.Time{}, ErrInvalidPassword
	}
	token, err := m.tokenFactory(m.tokenLength)
	if err != nil {
		return "", time.Time{}, err
	}
	expiresAt := m.now().Add(m.ttl)
	if err := m.store.Save(token, expiresAt.UTC()); err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// Verify reports whether the provided token identifies a live session. A
// session is live strictly before its expiry instant; expired tokens are
// deleted lazily on first sight.
func (m *SessionManager) Verify(token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	expiresAt, ok, err := m.store.Get(token)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if !m.now().Before(expiresAt) {
		_ = m.store.Delete(token)
		return false, nil
	}
	return true, nil
}

// Ping verifies the underlying session store is reachable when it exposes a
// ping method.
func (m *SessionManager) Ping(ctx context.Context) error {
	if m == nil || m.store == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if pinger, ok := m.store.(interface{ Ping(context.Context) error }); ok {
		return pinger.Ping(ctx)
	}
	return nil
}

func stretchPassword(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, passwordCompareIterations, passwordCompareKeyLength, sha256.New)
}

func generateToken(length int) (string, error) {
	raw := make([]byte, length)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}
