package memory

import (
	"context"
	"sync"
	"time"

	"forklift-training-service/internal/app"
	"forklift-training-service/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
// It stores copies so callers never share state with the map.
// Sessions expire ttl after their last Save; a non-positive ttl keeps them until deleted.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]sessionEntry
	ttl      time.Duration
	now      func() time.Time
}

type sessionEntry struct {
	session app.Session
	expires time.Time
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]sessionEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *SessionStore) Get(_ context.Context, id string) (*app.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.sessions[id]
	if !ok || s.expired(entry, s.now()) {
		return nil, domain.ErrSessionNotFound
	}
	return copySession(entry.session), nil
}

func (s *SessionStore) Save(_ context.Context, session *app.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := sessionEntry{session: *copySession(*session)}
	if s.ttl > 0 {
		entry.expires = s.now().Add(s.ttl)
	}
	s.sessions[session.ID] = entry
	return nil
}

func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Cleanup drops expired sessions every interval until done is closed.
func (s *SessionStore) Cleanup(interval time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *SessionStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for id, entry := range s.sessions {
		if s.expired(entry, now) {
			delete(s.sessions, id)
		}
	}
}

func (s *SessionStore) expired(entry sessionEntry, now time.Time) bool {
	return !entry.expires.IsZero() && !now.Before(entry.expires)
}

func (s *SessionStore) size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func copySession(s app.Session) *app.Session {
	if s.Attempt != nil {
		a := *s.Attempt
		a.Questions = append([]domain.Question(nil), s.Attempt.Questions...)
		s.Attempt = &a
	}
	return &s
}
