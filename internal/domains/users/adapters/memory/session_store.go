package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Apurer/go-shop-api-server/internal/domains/users/ports"
)

var _ ports.SessionStore = (*SessionStore)(nil)

type session struct {
	username  string
	expiresAt time.Time
}

// SessionStore is an in-memory SessionStore implementation keyed by
// token, with a username index for logout.
type SessionStore struct {
	mu      sync.Mutex
	byToken map[string]session
	byUser  map[string]string
	now     func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		byToken: map[string]session{},
		byUser:  map[string]string{},
		now:     time.Now,
	}
}

func (s *SessionStore) Save(_ context.Context, username, token string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.byUser[username]; ok {
		delete(s.byToken, old)
	}
	s.byToken[token] = session{username: username, expiresAt: expiresAt}
	s.byUser[username] = token
	return nil
}

func (s *SessionStore) Lookup(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.byToken[token]
	if !ok {
		return "", ports.ErrSessionNotFound
	}
	if s.now().After(sess.expiresAt) {
		delete(s.byToken, token)
		delete(s.byUser, sess.username)
		return "", ports.ErrSessionNotFound
	}
	return sess.username, nil
}

func (s *SessionStore) Delete(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token, ok := s.byUser[username]; ok {
		delete(s.byToken, token)
		delete(s.byUser, username)
	}
	return nil
}

func (s *SessionStore) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var purged int64
	for token, sess := range s.byToken {
		if now.After(sess.expiresAt) {
			delete(s.byToken, token)
			delete(s.byUser, sess.username)
			purged++
		}
	}
	return purged, nil
}
