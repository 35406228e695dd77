package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"forklift-training-service/internal/domain"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "data")
	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store, dir
}

func TestEmptyDirectoryLoadsEmptyCollections(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	users, err := store.LoadUsers(ctx)
	if err != nil || len(users) != 0 {
		t.Fatalf("expected no users, got %v err %v", users, err)
	}
	questions, err := store.LoadQuestions(ctx)
	if err != nil || len(questions) != 0 {
		t.Fatalf("expected no questions, got %v err %v", questions, err)
	}
	scores, err := store.LoadScores(ctx)
	if err != nil || len(scores) != 0 {
		t.Fatalf("expected no scores, got %v err %v", scores, err)
	}
}

func TestUsersFileKeyedByUsername(t *testing.T) {
	store, dir := newTestStore(t)
	ctx := context.Background()

	err := store.UpdateUsers(ctx, func(users map[string]domain.User) error {
		users["admin"] = domain.User{Username: "admin", Password: "hash", Role: domain.RoleAdmin, Name: "Admin User"}
		return nil
	})
	if err != nil {
		t.Fatalf("update users: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, usersFile))
	if err != nil {
		t.Fatalf("read users file: %v", err)
	}
	if !strings.Contains(string(raw), `"admin": {`) || strings.Contains(string(raw), `"username"`) {
		t.Fatalf("unexpected users document:\n%s", raw)
	}

	users, _ := store.LoadUsers(ctx)
	if users["admin"].Username != "admin" || users["admin"].Name != "Admin User" {
		t.Fatalf("unexpected round trip: %+v", users["admin"])
	}
}

func TestFailedUpdateLeavesFileUntouched(t *testing.T) {
	store, dir := newTestStore(t)
	ctx := context.Background()

	_ = store.UpdateQuestions(ctx, func([]domain.Question) ([]domain.Question, error) {
		return []domain.Question{{ID: 1, Question: "q", Options: []string{"a", "b", "c", "d"}}}, nil
	})
	before, _ := os.ReadFile(filepath.Join(dir, questionsFile))

	err := store.UpdateQuestions(ctx, func([]domain.Question) ([]domain.Question, error) {
		return nil, domain.ErrMissingField
	})
	if !errors.Is(err, domain.ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}

	after, _ := os.ReadFile(filepath.Join(dir, questionsFile))
	if string(before) != string(after) {
		t.Fatalf("questions file changed after aborted update")
	}

	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
}

func TestAppendScoreKeepsOrder(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	for i := 1; i <= 3; i++ {
		rec := domain.NewScoreRecord("op", i, 3, ts.Add(time.Duration(i)*time.Minute))
		if err := store.AppendScore(ctx, rec); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	scores, err := store.LoadScores(ctx)
	if err != nil {
		t.Fatalf("load scores: %v", err)
	}
	if len(scores) != 3 {
		t.Fatalf("expected 3 scores, got %d", len(scores))
	}
	for i, s := range scores {
		if s.Score != i+1 || !s.Timestamp.Equal(ts.Add(time.Duration(i+1)*time.Minute)) {
			t.Fatalf("record %d out of order: %+v", i, s)
		}
	}
}

func TestCorruptFileIsReported(t *testing.T) {
	store, dir := newTestStore(t)
	if err := os.WriteFile(filepath.Join(dir, scoresFile), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := store.LoadScores(context.Background()); err == nil {
		t.Fatalf("expected decode error")
	}
}
