package app

import (
	"errors"
	"testing"
	"time"

	"forklift-training-service/internal/domain"
)

func TestNavigateGate(t *testing.T) {
	operator := domain.User{Username: "op", Role: domain.RoleOperator, Name: "Op"}
	admin := domain.User{Username: "boss", Role: domain.RoleAdmin, Name: "Boss"}

	cases := []struct {
		name    string
		user    *domain.User
		target  domain.View
		want    domain.View
		wantErr error
	}{
		{"anonymous scores", nil, domain.ViewScores, domain.ViewLogin, nil},
		{"anonymous admin", nil, domain.ViewAdmin, domain.ViewLogin, nil},
		{"operator login", &operator, domain.ViewLogin, domain.ViewQuiz, nil},
		{"operator scores", &operator, domain.ViewScores, domain.ViewScores, nil},
		{"operator documentation", &operator, domain.ViewDocumentation, domain.ViewQuiz, domain.ErrPermissionDenied},
		{"operator admin", &operator, domain.ViewAdmin, domain.ViewQuiz, domain.ErrPermissionDenied},
		{"admin documentation", &admin, domain.ViewDocumentation, domain.ViewDocumentation, nil},
		{"admin admin", &admin, domain.ViewAdmin, domain.ViewAdmin, nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := NewSession("id", time.Now())
			if c.user != nil {
				s.login(*c.user)
			}
			got, err := s.Navigate(c.target)
			if got != c.want || s.View != c.want {
				t.Fatalf("expected %s, got %s (session on %s)", c.want, got, s.View)
			}
			if !errors.Is(err, c.wantErr) {
				t.Fatalf("expected error %v, got %v", c.wantErr, err)
			}
		})
	}
}

func TestNavigateAwayDiscardsAttempt(t *testing.T) {
	s := NewSession("id", time.Now())
	s.login(domain.User{Username: "op", Role: domain.RoleOperator})
	s.Attempt = &Attempt{Questions: sampleQuestions(2)}

	if _, err := s.Navigate(domain.ViewQuiz); err != nil || s.Attempt == nil {
		t.Fatalf("staying on quiz must keep the attempt")
	}
	if _, err := s.Navigate(domain.ViewScores); err != nil || s.Attempt != nil {
		t.Fatalf("leaving quiz must discard the attempt")
	}
	if _, err := s.Navigate("reports"); !errors.Is(err, domain.ErrInvalidView) {
		t.Fatalf("expected ErrInvalidView, got %v", err)
	}
}

func TestLogoutClearsIdentity(t *testing.T) {
	s := NewSession("id", time.Now())
	s.login(domain.User{Username: "op", Role: domain.RoleOperator, Name: "Op"})
	s.Attempt = &Attempt{}
	s.Logout()
	if s.Authenticated || s.Username != "" || s.Role != "" || s.Name != "" || s.Attempt != nil || s.View != domain.ViewLogin {
		t.Fatalf("logout left state behind: %+v", s)
	}
}
