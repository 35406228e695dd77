package memory

import (
	"context"
	"sync"

	"forklift-training-service/internal/domain"
)

// Store keeps the users, questions and scores collections in memory.
// Each collection has its own lock so an update is a whole-collection transaction.
type Store struct {
	usersMu sync.Mutex
	users   map[string]domain.User

	questionsMu sync.Mutex
	questions   []domain.Question

	scoresMu sync.Mutex
	scores   []domain.ScoreRecord

	logoMu sync.RWMutex
	logo   *domain.Logo
}

func NewStore() *Store {
	return &Store{users: make(map[string]domain.User)}
}

func (s *Store) LoadUsers(_ context.Context) (map[string]domain.User, error) {
	s.usersMu.Lock()
	defer s.usersMu.Unlock()
	return copyUsers(s.users), nil
}

func (s *Store) UpdateUsers(_ context.Context, fn func(map[string]domain.User) error) error {
	s.usersMu.Lock()
	defer s.usersMu.Unlock()
	working := copyUsers(s.users)
	if err := fn(working); err != nil {
		return err
	}
	s.users = working
	return nil
}

func copyUsers(in map[string]domain.User) map[string]domain.User {
	out := make(map[string]domain.User, len(in))
	for name, u := range in {
		u.Username = name
		out[name] = u
	}
	return out
}

func (s *Store) LoadQuestions(_ context.Context) ([]domain.Question, error) {
	s.questionsMu.Lock()
	defer s.questionsMu.Unlock()
	return copyQuestions(s.questions), nil
}

func (s *Store) UpdateQuestions(_ context.Context, fn func([]domain.Question) ([]domain.Question, error)) error {
	s.questionsMu.Lock()
	defer s.questionsMu.Unlock()
	updated, err := fn(copyQuestions(s.questions))
	if err != nil {
		return err
	}
	s.questions = copyQuestions(updated)
	return nil
}

func copyQuestions(in []domain.Question) []domain.Question {
	out := make([]domain.Question, len(in))
	for i, q := range in {
		q.Options = append([]string(nil), q.Options...)
		out[i] = q
	}
	return out
}

func (s *Store) LoadScores(_ context.Context) ([]domain.ScoreRecord, error) {
	s.scoresMu.Lock()
	defer s.scoresMu.Unlock()
	return append([]domain.ScoreRecord(nil), s.scores...), nil
}

func (s *Store) AppendScore(_ context.Context, record domain.ScoreRecord) error {
	s.scoresMu.Lock()
	defer s.scoresMu.Unlock()
	s.scores = append(s.scores, record)
	return nil
}

func (s *Store) GetLogo(_ context.Context) (domain.Logo, error) {
	s.logoMu.RLock()
	defer s.logoMu.RUnlock()
	if s.logo == nil {
		return domain.Logo{}, domain.ErrNoLogo
	}
	return domain.Logo{Data: append([]byte(nil), s.logo.Data...), ContentType: s.logo.ContentType}, nil
}

func (s *Store) PutLogo(_ context.Context, logo domain.Logo) error {
	s.logoMu.Lock()
	defer s.logoMu.Unlock()
	s.logo = &domain.Logo{Data: append([]byte(nil), logo.Data...), ContentType: logo.ContentType}
	return nil
}

func (s *Store) DeleteLogo(_ context.Context) error {
	s.logoMu.Lock()
	defer s.logoMu.Unlock()
	s.logo = nil
	return nil
}
