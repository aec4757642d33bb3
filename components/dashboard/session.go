package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"
)

// SessionTTL is how long a persisted login stays valid.
const SessionTTL = 30 * 24 * time.Hour

// maxClockSkew is how far in the future a persisted timestamp may be.
const maxClockSkew = time.Minute

// SessionUser is the user object stored alongside a session.
type SessionUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role"`
	Home  string `json:"home,omitempty"`
}

// Valid reports whether the user carries the fields needed to restore auth state.
func (u SessionUser) Valid() bool {
	return strings.TrimSpace(u.ID) != "" &&
		strings.Contains(u.Email, "@") &&
		strings.TrimSpace(u.Role) != ""
}

// Session is an issued login.
type Session struct {
	Token     string      `json:"token"`
	User      SessionUser `json:"user"`
	CreatedAt time.Time   `json:"created_at"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// Expired reports whether the session is past its TTL at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Viewer converts the session into a viewer context.
func (s Session) Viewer() ViewerContext {
	return ViewerContext{
		UserID: s.User.ID,
		Email:  s.User.Email,
		Roles:  []string{s.User.Role},
		Token:  s.Token,
	}
}

// NewSession issues a session for user created at now.
func NewSession(token string, user SessionUser, now time.Time) Session {
	return Session{
		Token:     token,
		User:      user,
		CreatedAt: now,
		ExpiresAt: now.Add(SessionTTL),
	}
}

// SessionBlob is the persisted form of a session: the user plus the login
// time in milliseconds since the epoch.
type SessionBlob struct {
	User      SessionUser `json:"user"`
	Timestamp int64       `json:"timestamp"`
	Token     string      `json:"token,omitempty"`
}

// EncodeSession serializes the session into its persisted blob.
func EncodeSession(s Session) ([]byte, error) {
	return json.Marshal(SessionBlob{
		User:      s.User,
		Timestamp: s.CreatedAt.UnixMilli(),
		Token:     s.Token,
	})
}

// RestoreSession decodes a persisted blob and returns the session it describes.
// Sessions aged SessionTTL or more return ErrSessionExpired; malformed blobs,
// timestamps too far in the future and invalid users return ErrValidation.
func RestoreSession(blob []byte, now time.Time) (Session, error) {
	var stored SessionBlob
	if err := json.Unmarshal(blob, &stored); err != nil {
		return Session{}, fmt.Errorf("%w: decode session: %v", ErrValidation, err)
	}
	if stored.Timestamp <= 0 {
		return Session{}, fmt.Errorf("%w: session timestamp missing", ErrValidation)
	}
	if !stored.User.Valid() {
		return Session{}, fmt.Errorf("%w: session user invalid", ErrValidation)
	}
	created := time.UnixMilli(stored.Timestamp)
	if created.Sub(now) > maxClockSkew {
		return Session{}, fmt.Errorf("%w: session timestamp is in the future", ErrValidation)
	}
	session := NewSession(stored.Token, stored.User, created)
	if session.Expired(now) {
		return Session{}, ErrSessionExpired
	}
	return session, nil
}

// MemorySessionStore keeps sessions in process memory.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewMemorySessionStore builds an empty store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: map[string]Session{}}
}

// Save stores or replaces the session under its token.
func (s *MemorySessionStore) Save(_ context.Context, session Session) error {
	if session.Token == "" {
		return fmt.Errorf("%w: session token is required", ErrValidation)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Token] = session
	return nil
}

// Get returns the session for token or ErrNotFound.
func (s *MemorySessionStore) Get(_ context.Context, token string) (Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[token]
	if !ok {
		return Session{}, ErrNotFound
	}
	return session, nil
}

// Delete removes the session. Unknown tokens are ignored.
func (s *MemorySessionStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}
