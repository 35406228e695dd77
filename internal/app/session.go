package app

import (
	"time"

	"forklift-training-service/internal/domain"
)

// Session is the per-browser context every operation runs against.
// It is created anonymously on the login view and destroyed on logout.
type Session struct {
	ID            string      `json:"id"`
	Authenticated bool        `json:"authenticated"`
	Username      string      `json:"username,omitempty"`
	Role          domain.Role `json:"role,omitempty"`
	Name          string      `json:"name,omitempty"`
	View          domain.View `json:"view"`
	Attempt       *Attempt    `json:"attempt,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// NewSession returns an anonymous session parked on the login view.
func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		View:      domain.ViewLogin,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsAdmin reports whether the session belongs to an authenticated administrator.
func (s *Session) IsAdmin() bool {
	return s.Authenticated && s.Role == domain.RoleAdmin
}

// Navigate applies the view gate and returns the view the session ended up on.
// A non-admin asking for an admin view lands on the quiz with ErrPermissionDenied.
func (s *Session) Navigate(target domain.View) (domain.View, error) {
	if !target.Valid() {
		return s.View, domain.ErrInvalidView
	}

	var err error
	switch {
	case !s.Authenticated:
		target = domain.ViewLogin
	case target == domain.ViewLogin:
		target = domain.ViewQuiz
	case target.AdminOnly() && s.Role != domain.RoleAdmin:
		target = domain.ViewQuiz
		err = domain.ErrPermissionDenied
	}

	if target != domain.ViewQuiz {
		s.Attempt = nil
	}
	s.View = target
	return target, err
}

func (s *Session) login(user domain.User) {
	s.Authenticated = true
	s.Username = user.Username
	s.Role = user.Role
	s.Name = user.Name
	s.Attempt = nil
	s.View = domain.ViewQuiz
}

// Logout clears the identity and any attempt and returns to the login view.
func (s *Session) Logout() {
	s.Authenticated = false
	s.Username = ""
	s.Role = ""
	s.Name = ""
	s.Attempt = nil
	s.View = domain.ViewLogin
}

func (s *Session) clone() *Session {
	c := *s
	c.Attempt = s.Attempt.clone()
	return &c
}

// SessionView is the client-facing projection of a session.
type SessionView struct {
	ID            string      `json:"id"`
	Authenticated bool        `json:"authenticated"`
	Username      string      `json:"username,omitempty"`
	Role          domain.Role `json:"role,omitempty"`
	Name          string      `json:"name,omitempty"`
	View          domain.View `json:"view"`
}

func (s *Session) view() SessionView {
	return SessionView{
		ID:            s.ID,
		Authenticated: s.Authenticated,
		Username:      s.Username,
		Role:          s.Role,
		Name:          s.Name,
		View:          s.View,
	}
}
