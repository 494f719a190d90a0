package auth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is the server-side state bound to one login.
type Session struct {
	UserID    int64
	CreatedAt time.Time
}

// SessionStore keeps sessions in process memory. It is created at startup,
// shared by all handlers, and emptied by Close on shutdown.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	tokens   *TokenManager
	now      func() time.Time
}

// NewSessionStore creates an empty store whose tokens are signed by tokens.
func NewSessionStore(tokens *TokenManager) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]Session),
		tokens:   tokens,
		now:      time.Now,
	}
}

// Issue creates a session for userID and returns the opaque token for the client cookie.
func (s *SessionStore) Issue(userID int64) (string, error) {
	id := uuid.NewString()
	token, err := s.tokens.Generate(id, userID)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.sessions[id] = Session{UserID: userID, CreatedAt: s.now()}
	s.mu.Unlock()
	return token, nil
}

// Resolve returns the user id bound to token. Missing, forged, expired and
// unknown tokens all resolve to false.
func (s *SessionStore) Resolve(token string) (int64, bool) {
	if token == "" {
		return 0, false
	}
	id, userID, err := s.tokens.Parse(token)
	if err != nil {
		return 0, false
	}

	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok || sess.UserID != userID {
		return 0, false
	}
	if s.expired(sess, s.now()) {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		return 0, false
	}
	return sess.UserID, true
}

// Sweep drops every session older than the token lifetime and reports how
// many were removed. It is a no-op when sessions never expire.
func (s *SessionStore) Sweep() int {
	if s.tokens.TTL() <= 0 {
		return 0
	}
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, sess := range s.sessions {
		if s.expired(sess, now) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *SessionStore) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 || s.tokens.TTL() <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

func (s *SessionStore) expired(sess Session, now time.Time) bool {
	ttl := s.tokens.TTL()
	return ttl > 0 && !now.Before(sess.CreatedAt.Add(ttl))
}

// Revoke forgets the session behind token, if any.
func (s *SessionStore) Revoke(token string) {
	id, _, err := s.tokens.Parse(token)
	if err != nil {
		return
	}
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Len reports the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Close drops every session.
func (s *SessionStore) Close() {
	s.mu.Lock()
	s.sessions = make(map[string]Session)
	s.mu.Unlock()
}

// TTL exposes the token lifetime so cookies can match it.
func (s *SessionStore) TTL() time.Duration {
	return s.tokens.TTL()
}
