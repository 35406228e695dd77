package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"forklift-training-service/internal/certificate"
	"forklift-training-service/internal/domain"
	"go.uber.org/zap"
)

// QuizService runs the quiz state machine inside a session.
type QuizService struct {
	guard     *sessionGuard
	questions QuestionStore
	scores    *ScoreService
	logos     LogoStore
	observers []AttemptObserver
	log       *zap.Logger

	rndMu sync.Mutex
	rnd   *rand.Rand
}

// QuizOption customises a QuizService.
type QuizOption func(*QuizService)

// WithShuffleSeed makes question order deterministic.
func WithShuffleSeed(seed int64) QuizOption {
	return func(s *QuizService) { s.rnd = rand.New(rand.NewSource(seed)) }
}

// WithClock replaces the wall clock used for attempt and score timestamps.
func WithClock(now func() time.Time) QuizOption {
	return func(s *QuizService) {
		s.guard.now = now
		s.scores.now = now
	}
}

// WithObserver registers o to be told about every stored attempt.
func WithObserver(o AttemptObserver) QuizOption {
	return func(s *QuizService) { s.observers = append(s.observers, o) }
}

// WithLogoStore lets certificates embed the branding logo.
func WithLogoStore(logos LogoStore) QuizOption {
	return func(s *QuizService) { s.logos = logos }
}

func NewQuizService(sessions *SessionService, questions QuestionStore, scores *ScoreService, log *zap.Logger, opts ...QuizOption) *QuizService {
	s := &QuizService{
		guard:     sessions.guard,
		questions: questions,
		scores:    scores,
		log:       log,
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// QuestionView is a question as shown to the quiz taker, without the answer.
type QuestionView struct {
	ID       int      `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Category string   `json:"category"`
}

// QuizState is the client-facing projection of the session's attempt.
type QuizState struct {
	Status   AttemptStatus `json:"status"`
	Number   int           `json:"number"`
	Total    int           `json:"total"`
	Score    int           `json:"score"`
	Progress float64       `json:"progress"`
	Answered bool          `json:"answered"`
	Question *QuestionView `json:"question,omitempty"`
	Feedback *Feedback     `json:"feedback,omitempty"`
	Result   *Result       `json:"result,omitempty"`
}

func stateOf(a *Attempt) QuizState {
	st := QuizState{Status: a.Status()}
	if a == nil {
		return st
	}
	st.Total = a.Total()
	st.Score = a.Score
	if a.Complete {
		st.Number = a.Total()
		st.Progress = 1
		res := a.Result()
		st.Result = &res
		return st
	}
	q, _ := a.Current()
	st.Number = a.Index + 1
	st.Progress = float64(a.Index) / float64(a.Total())
	st.Answered = a.Answered
	st.Question = &QuestionView{
		ID:       q.ID,
		Question: q.Question,
		Options:  append([]string(nil), q.Options...),
		Category: q.Category,
	}
	if fb, ok := a.LastFeedback(); ok {
		st.Feedback = &fb
	}
	return st
}

func requireLogin(sess *Session) error {
	if !sess.Authenticated {
		return domain.ErrUnauthenticated
	}
	return nil
}

// StartOrResume moves the session to the quiz view and starts an attempt if
// none is in progress. An existing attempt is returned untouched.
func (s *QuizService) StartOrResume(ctx context.Context, sessionID string) (QuizState, error) {
	sess, err := s.guard.update(ctx, sessionID, func(sess *Session) error {
		if err := requireLogin(sess); err != nil {
			return err
		}
		if _, err := sess.Navigate(domain.ViewQuiz); err != nil {
			return err
		}
		if sess.Attempt != nil {
			return nil
		}
		attempt, err := s.newAttempt(ctx)
		if err != nil {
			return err
		}
		sess.Attempt = attempt
		s.log.Debug("attempt started", zap.String("username", sess.Username), zap.Int("questions", attempt.Total()))
		return nil
	})
	if err != nil {
		return QuizState{}, err
	}
	return stateOf(sess.Attempt), nil
}

// State returns the current attempt without changing it.
func (s *QuizService) State(ctx context.Context, sessionID string) (QuizState, error) {
	sess, err := s.guard.read(ctx, sessionID)
	if err != nil {
		return QuizState{}, err
	}
	if err := requireLogin(sess); err != nil {
		return QuizState{}, err
	}
	return stateOf(sess.Attempt), nil
}

// SubmitAnswer scores the selected option of the current question.
func (s *QuizService) SubmitAnswer(ctx context.Context, sessionID string, selected int) (Feedback, QuizState, error) {
	var fb Feedback
	sess, err := s.guard.update(ctx, sessionID, func(sess *Session) error {
		if err := requireLogin(sess); err != nil {
			return err
		}
		var err error
		fb, err = sess.Attempt.Submit(selected)
		return err
	})
	if err != nil {
		return Feedback{}, QuizState{}, err
	}
	return fb, stateOf(sess.Attempt), nil
}

// Advance moves to the next question or completes the attempt. The score
// record is appended exactly once per attempt.
func (s *QuizService) Advance(ctx context.Context, sessionID string) (QuizState, error) {
	var stored *domain.ScoreRecord
	sess, err := s.guard.update(ctx, sessionID, func(sess *Session) error {
		if err := requireLogin(sess); err != nil {
			return err
		}
		a := sess.Attempt
		if _, err := a.Advance(s.guard.now()); err != nil {
			return err
		}
		if !a.Complete || a.Recorded {
			return nil
		}
		res := a.Result()
		record, err := s.scores.RecordAttempt(ctx, sess.Username, res.Score, res.MaxScore)
		if err != nil {
			return fmt.Errorf("record attempt: %w", err)
		}
		a.Recorded = true
		stored = &record
		return nil
	})
	if err != nil {
		return QuizState{}, err
	}
	if stored != nil {
		for _, o := range s.observers {
			o.AttemptCompleted(*stored)
		}
	}
	return stateOf(sess.Attempt), nil
}

// Restart discards the current attempt and starts over with a new shuffle.
func (s *QuizService) Restart(ctx context.Context, sessionID string) (QuizState, error) {
	sess, err := s.guard.update(ctx, sessionID, func(sess *Session) error {
		if err := requireLogin(sess); err != nil {
			return err
		}
		if _, err := sess.Navigate(domain.ViewQuiz); err != nil {
			return err
		}
		attempt, err := s.newAttempt(ctx)
		if err != nil {
			return err
		}
		sess.Attempt = attempt
		return nil
	})
	if err != nil {
		return QuizState{}, err
	}
	return stateOf(sess.Attempt), nil
}

func (s *QuizService) newAttempt(ctx context.Context) (*Attempt, error) {
	questions, err := s.questions.LoadQuestions(ctx)
	if err != nil {
		return nil, err
	}
	s.rndMu.Lock()
	defer s.rndMu.Unlock()
	return NewAttempt(questions, s.rnd, s.guard.now())
}

// Certificate is a rendered, downloadable completion document.
type Certificate struct {
	FileName string
	HTML     []byte
}

// Certificate renders the completion certificate for a passed attempt.
func (s *QuizService) Certificate(ctx context.Context, sessionID string) (Certificate, error) {
	sess, err := s.guard.read(ctx, sessionID)
	if err != nil {
		return Certificate{}, err
	}
	if err := requireLogin(sess); err != nil {
		return Certificate{}, err
	}
	a := sess.Attempt
	if a == nil || !a.Complete {
		return Certificate{}, domain.ErrNoAttempt
	}
	res := a.Result()
	if !res.Certificate {
		return Certificate{}, domain.ErrNotEligible
	}

	logo := certificate.PlaceholderLogo
	if s.logos != nil {
		l, err := s.logos.GetLogo(ctx)
		switch {
		case err == nil:
			logo = certificate.LogoURL(l)
		case !errors.Is(err, domain.ErrNoLogo):
			s.log.Warn("load logo for certificate", zap.Error(err))
		}
	}
	html, err := certificate.Render(certificate.Data{
		Name:       sess.Name,
		Percentage: fmt.Sprintf("%.1f", res.Percentage),
		Date:       a.CompletedAt.Format(certificate.DateLayout),
		Logo:       logo,
	})
	if err != nil {
		return Certificate{}, err
	}
	return Certificate{FileName: certificate.FileName, HTML: html}, nil
}
