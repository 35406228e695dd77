package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"forklift-training-service/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// sessionGuard serialises every read-modify-write of one session.
type sessionGuard struct {
	repo  SessionRepository
	now   func() time.Time
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func newSessionGuard(repo SessionRepository, now func() time.Time) *sessionGuard {
	return &sessionGuard{repo: repo, now: now, locks: make(map[string]*sessionLock)}
}

func (g *sessionGuard) lock(id string) func() {
	g.mu.Lock()
	l, ok := g.locks[id]
	if !ok {
		l = &sessionLock{}
		g.locks[id] = l
	}
	l.refs++
	g.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		g.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(g.locks, id)
		}
		g.mu.Unlock()
	}
}

// update loads the session, applies fn and saves the result even when fn
// reports a domain error, so redirects such as a denied navigation stick.
func (g *sessionGuard) update(ctx context.Context, id string, fn func(s *Session) error) (*Session, error) {
	unlock := g.lock(id)
	defer unlock()

	session, err := g.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	fnErr := fn(session)
	session.UpdatedAt = g.now()
	if err := g.repo.Save(ctx, session); err != nil {
		return nil, err
	}
	return session.clone(), fnErr
}

func (g *sessionGuard) read(ctx context.Context, id string) (*Session, error) {
	unlock := g.lock(id)
	defer unlock()
	session, err := g.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return session.clone(), nil
}

// SessionService owns session lifecycle, login and the navigation gate.
type SessionService struct {
	guard *sessionGuard
	auth  *AuthService
	log   *zap.Logger
}

func NewSessionService(repo SessionRepository, auth *AuthService, log *zap.Logger) *SessionService {
	return &SessionService{guard: newSessionGuard(repo, time.Now), auth: auth, log: log}
}

// Open returns the session for id, creating a fresh anonymous one when id is
// empty or unknown.
func (s *SessionService) Open(ctx context.Context, id string) (SessionView, error) {
	if id != "" {
		session, err := s.guard.read(ctx, id)
		if err == nil {
			return session.view(), nil
		}
		if !errors.Is(err, domain.ErrSessionNotFound) {
			return SessionView{}, err
		}
	}
	session := NewSession(uuid.New().String(), s.guard.now())
	if err := s.guard.repo.Save(ctx, session); err != nil {
		return SessionView{}, err
	}
	return session.view(), nil
}

// Get returns the current view of a session.
func (s *SessionService) Get(ctx context.Context, id string) (SessionView, error) {
	session, err := s.guard.read(ctx, id)
	if err != nil {
		return SessionView{}, err
	}
	return session.view(), nil
}

// Login authenticates and populates the session identity.
func (s *SessionService) Login(ctx context.Context, id, username, password string) (SessionView, error) {
	user, err := s.auth.Authenticate(ctx, username, password)
	if err != nil {
		s.log.Info("login rejected", zap.String("username", username))
		return SessionView{}, err
	}
	session, err := s.guard.update(ctx, id, func(sess *Session) error {
		sess.login(user)
		return nil
	})
	if err != nil {
		return SessionView{}, err
	}
	s.log.Info("login", zap.String("username", user.Username), zap.String("role", string(user.Role)))
	return session.view(), nil
}

// Navigate moves the session to target, subject to the authentication and role gate.
// The returned view is valid even when err is ErrPermissionDenied.
func (s *SessionService) Navigate(ctx context.Context, id string, target domain.View) (SessionView, error) {
	session, err := s.guard.update(ctx, id, func(sess *Session) error {
		_, err := sess.Navigate(target)
		return err
	})
	if session == nil {
		return SessionView{}, err
	}
	return session.view(), err
}

// Logout clears the identity and destroys the stored session.
func (s *SessionService) Logout(ctx context.Context, id string) error {
	unlock := s.guard.lock(id)
	defer unlock()
	session, err := s.guard.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil
		}
		return err
	}
	username := session.Username
	session.Logout()
	if err := s.guard.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("logout", zap.String("username", username))
	return nil
}

// Authorize checks that the session is logged in and, if adminOnly, is an admin.
func (s *SessionService) Authorize(ctx context.Context, id string, adminOnly bool) (SessionView, error) {
	session, err := s.guard.read(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return SessionView{}, domain.ErrUnauthenticated
		}
		return SessionView{}, err
	}
	if !session.Authenticated {
		return session.view(), domain.ErrUnauthenticated
	}
	if adminOnly && !session.IsAdmin() {
		return session.view(), domain.ErrPermissionDenied
	}
	return session.view(), nil
}
