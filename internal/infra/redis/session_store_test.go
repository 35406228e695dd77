package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"forklift-training-service/internal/app"
	"forklift-training-service/internal/domain"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestSessionStoreRoundTrip(t *testing.T) {
	mr := runRedis(t)
	store := NewSessionStore(newClient(mr), time.Minute)
	ctx := context.Background()

	session := app.NewSession("s1", time.Now().UTC().Truncate(time.Second))
	session.Authenticated = true
	session.Username = "op"
	session.Role = domain.RoleOperator
	session.View = domain.ViewQuiz
	session.Attempt = &app.Attempt{Questions: app.DefaultQuestions(), Index: 1, Score: 1}

	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !mr.Exists("quiz:session:s1") {
		t.Fatalf("expected redis key to be set")
	}
	if ttl := mr.TTL("quiz:session:s1"); ttl != time.Minute {
		t.Fatalf("expected ttl of one minute, got %v", ttl)
	}

	got, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Username != "op" || got.View != domain.ViewQuiz || got.Attempt == nil || got.Attempt.Index != 1 {
		t.Fatalf("unexpected session: %+v", got)
	}
	if len(got.Attempt.Questions) != 3 {
		t.Fatalf("expected attempt snapshot to survive, got %d questions", len(got.Attempt.Questions))
	}

	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if mr.Exists("quiz:session:s1") {
		t.Fatalf("expected redis key to be removed")
	}
	if _, err := store.Get(ctx, "s1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessionStoreExpires(t *testing.T) {
	mr := runRedis(t)
	store := NewSessionStore(newClient(mr), time.Minute)
	ctx := context.Background()

	_ = store.Save(ctx, app.NewSession("s1", time.Now()))
	mr.FastForward(2 * time.Minute)

	if _, err := store.Get(ctx, "s1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected expired session, got %v", err)
	}
}

func runRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	return mr
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
