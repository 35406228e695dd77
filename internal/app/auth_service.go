package app

import (
	"context"
	"strings"

	"forklift-training-service/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthService verifies credentials and creates accounts.
type AuthService struct {
	users UserStore
	cost  int
	log   *zap.Logger
}

func NewAuthService(users UserStore, log *zap.Logger) *AuthService {
	return &AuthService{users: users, cost: bcrypt.DefaultCost, log: log}
}

// NewAuthServiceWithCost is for tests that cannot afford the default bcrypt cost.
func NewAuthServiceWithCost(users UserStore, cost int, log *zap.Logger) *AuthService {
	return &AuthService{users: users, cost: cost, log: log}
}

// HashPassword returns the bcrypt hash stored in place of password.
func (s *AuthService) HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Authenticate returns the stored user when the password matches its hash.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (domain.User, error) {
	users, err := s.users.LoadUsers(ctx)
	if err != nil {
		return domain.User{}, err
	}
	user, ok := users[username]
	if !ok {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	user.Username = username
	return user, nil
}

// Register creates a self-service account. Self-registered users are always operators.
func (s *AuthService) Register(ctx context.Context, username, password, name string) (domain.User, error) {
	return s.createUser(ctx, username, password, name, domain.RoleOperator)
}

func (s *AuthService) createUser(ctx context.Context, username, password, name string, role domain.Role) (domain.User, error) {
	username = strings.TrimSpace(username)
	name = strings.TrimSpace(name)
	if username == "" || password == "" || name == "" || !role.Valid() {
		return domain.User{}, domain.ErrMissingField
	}
	hashed, err := s.HashPassword(password)
	if err != nil {
		return domain.User{}, err
	}
	user := domain.User{Username: username, Password: hashed, Role: role, Name: name}
	err = s.users.UpdateUsers(ctx, func(users map[string]domain.User) error {
		if _, taken := users[username]; taken {
			return domain.ErrDuplicateUsername
		}
		users[username] = user
		return nil
	})
	if err != nil {
		return domain.User{}, err
	}
	s.log.Info("user created", zap.String("username", username), zap.String("role", string(role)))
	return user, nil
}
