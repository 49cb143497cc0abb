package memstore

import (
	"context"
	"github.com/ariefcatur/go-marketplace/internal/auth"
	"sync"
	"time"
)

var _ auth.SessionStore = (*Sessions)(nil)

type session struct {
	userID  string
	expires time.Time
}

// Sessions keeps login tokens in a map and honours their TTL on lookup.
type Sessions struct {
	mu   sync.Mutex
	byID map[string]session
	now  func() time.Time
}

func NewSessions() *Sessions {
	return &Sessions{byID: map[string]session{}, now: time.Now}
}

func (s *Sessions) Save(_ context.Context, token, userID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[token] = session{userID: userID, expires: s.now().Add(ttl)}
	return nil
}

func (s *Sessions) Lookup(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.byID[token]
	if !ok || !s.now().Before(sess.expires) {
		delete(s.byID, token)
		return "", auth.ErrNoSession
	}
	return sess.userID, nil
}
