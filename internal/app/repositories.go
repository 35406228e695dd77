package app

import (
	"context"

	"forklift-training-service/internal/domain"
)

// SessionRepository abstracts how sessions are stored (in-memory, Redis, etc).
type SessionRepository interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, session *Session) error
	Delete(ctx context.Context, id string) error
}

// UserStore persists the users collection as a whole.
// UpdateUsers runs fn under the collection lock; an error from fn aborts the write.
type UserStore interface {
	LoadUsers(ctx context.Context) (map[string]domain.User, error)
	UpdateUsers(ctx context.Context, fn func(users map[string]domain.User) error) error
}

// QuestionStore persists the ordered questions collection as a whole.
type QuestionStore interface {
	LoadQuestions(ctx context.Context) ([]domain.Question, error)
	UpdateQuestions(ctx context.Context, fn func(questions []domain.Question) ([]domain.Question, error)) error
}

// ScoreStore is the append-only scores collection.
type ScoreStore interface {
	LoadScores(ctx context.Context) ([]domain.ScoreRecord, error)
	AppendScore(ctx context.Context, record domain.ScoreRecord) error
}

// LogoStore holds the optional branding image.
type LogoStore interface {
	GetLogo(ctx context.Context) (domain.Logo, error)
	PutLogo(ctx context.Context, logo domain.Logo) error
	DeleteLogo(ctx context.Context) error
}

// AttemptObserver is notified once per completed attempt, after the score is stored.
type AttemptObserver interface {
	AttemptCompleted(record domain.ScoreRecord)
}
