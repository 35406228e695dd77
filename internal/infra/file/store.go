// Package file persists the users, questions and scores collections as JSON
// documents in a data directory.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"forklift-training-service/internal/domain"
)

const (
	usersFile     = "users.json"
	questionsFile = "questions.json"
	scoresFile    = "scores.json"
)

// userDoc is the on-disk shape of one users.json entry; the username is the map key.
type userDoc struct {
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
	Name     string      `json:"name"`
}

// Store reads and writes whole collections. Each collection has its own lock,
// and every write replaces the file atomically.
type Store struct {
	dir string

	usersMu     sync.Mutex
	questionsMu sync.Mutex
	scoresMu    sync.Mutex
}

// NewStore creates dir if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) LoadUsers(_ context.Context) (map[string]domain.User, error) {
	s.usersMu.Lock()
	defer s.usersMu.Unlock()
	return s.readUsers()
}

func (s *Store) UpdateUsers(_ context.Context, fn func(map[string]domain.User) error) error {
	s.usersMu.Lock()
	defer s.usersMu.Unlock()
	users, err := s.readUsers()
	if err != nil {
		return err
	}
	if err := fn(users); err != nil {
		return err
	}
	docs := make(map[string]userDoc, len(users))
	for name, u := range users {
		docs[name] = userDoc{Password: u.Password, Role: u.Role, Name: u.Name}
	}
	return s.write(usersFile, docs)
}

func (s *Store) readUsers() (map[string]domain.User, error) {
	docs := map[string]userDoc{}
	if err := s.read(usersFile, &docs); err != nil {
		return nil, err
	}
	users := make(map[string]domain.User, len(docs))
	for name, d := range docs {
		users[name] = domain.User{Username: name, Password: d.Password, Role: d.Role, Name: d.Name}
	}
	return users, nil
}

func (s *Store) LoadQuestions(_ context.Context) ([]domain.Question, error) {
	s.questionsMu.Lock()
	defer s.questionsMu.Unlock()
	return s.readQuestions()
}

func (s *Store) UpdateQuestions(_ context.Context, fn func([]domain.Question) ([]domain.Question, error)) error {
	s.questionsMu.Lock()
	defer s.questionsMu.Unlock()
	questions, err := s.readQuestions()
	if err != nil {
		return err
	}
	updated, err := fn(questions)
	if err != nil {
		return err
	}
	if updated == nil {
		updated = []domain.Question{}
	}
	return s.write(questionsFile, updated)
}

func (s *Store) readQuestions() ([]domain.Question, error) {
	var questions []domain.Question
	if err := s.read(questionsFile, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

func (s *Store) LoadScores(_ context.Context) ([]domain.ScoreRecord, error) {
	s.scoresMu.Lock()
	defer s.scoresMu.Unlock()
	return s.readScores()
}

func (s *Store) AppendScore(_ context.Context, record domain.ScoreRecord) error {
	s.scoresMu.Lock()
	defer s.scoresMu.Unlock()
	scores, err := s.readScores()
	if err != nil {
		return err
	}
	return s.write(scoresFile, append(scores, record))
}

func (s *Store) readScores() ([]domain.ScoreRecord, error) {
	var scores []domain.ScoreRecord
	if err := s.read(scoresFile, &scores); err != nil {
		return nil, err
	}
	return scores, nil
}

// read decodes name into v. A missing file leaves v untouched.
func (s *Store) read(name string, v interface{}) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

func (s *Store) write(name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return writeAtomic(filepath.Join(s.dir, name), data)
}

// writeAtomic writes to a temp file in the same directory and renames it over path.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
