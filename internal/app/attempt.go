package app

import (
	"math/rand"
	"time"

	"forklift-training-service/internal/domain"
)

// AttemptStatus is the coarse state of a quiz attempt.
type AttemptStatus string

const (
	StatusNotStarted AttemptStatus = "not_started"
	StatusInProgress AttemptStatus = "in_progress"
	StatusComplete   AttemptStatus = "complete"
)

// Attempt is one run through a shuffled snapshot of the question set.
// The order of Questions is fixed for the lifetime of the attempt.
type Attempt struct {
	Questions   []domain.Question `json:"questions"`
	Index       int               `json:"index"`
	Score       int               `json:"score"`
	Answered    bool              `json:"answered"`
	Selected    int               `json:"selected"`
	Complete    bool              `json:"complete"`
	Recorded    bool              `json:"recorded"` // score record persisted
	StartedAt   time.Time         `json:"started_at"`
	CompletedAt time.Time         `json:"completed_at"`
}

// Feedback is returned after an answer is submitted.
type Feedback struct {
	Correct       bool   `json:"correct"`
	Selected      int    `json:"selected"`
	CorrectAnswer int    `json:"correctAnswer"`
	CorrectText   string `json:"correctText"`
	Explanation   string `json:"explanation"`
}

// Result summarises a completed attempt.
type Result struct {
	Score       int         `json:"score"`
	MaxScore    int         `json:"maxScore"`
	Percentage  float64     `json:"percentage"`
	Tier        domain.Tier `json:"tier"`
	Message     string      `json:"message"`
	Certificate bool        `json:"certificateEligible"`
}

// NewAttempt snapshots questions and shuffles them with rnd.
func NewAttempt(questions []domain.Question, rnd *rand.Rand, now time.Time) (*Attempt, error) {
	if err := domain.ValidateQuestionSet(questions); err != nil {
		return nil, err
	}
	snapshot := make([]domain.Question, len(questions))
	copy(snapshot, questions)
	rnd.Shuffle(len(snapshot), func(i, j int) { snapshot[i], snapshot[j] = snapshot[j], snapshot[i] })
	return &Attempt{Questions: snapshot, StartedAt: now}, nil
}

// Status reports where the attempt is in its lifecycle.
func (a *Attempt) Status() AttemptStatus {
	switch {
	case a == nil:
		return StatusNotStarted
	case a.Complete:
		return StatusComplete
	default:
		return StatusInProgress
	}
}

// Total is the number of questions in the attempt.
func (a *Attempt) Total() int {
	return len(a.Questions)
}

// Current returns the question at the current index.
func (a *Attempt) Current() (domain.Question, bool) {
	if a == nil || a.Complete || a.Index >= len(a.Questions) {
		return domain.Question{}, false
	}
	return a.Questions[a.Index], true
}

// Submit scores the selected option for the current question.
// It is rejected without side effects once the question has been answered.
func (a *Attempt) Submit(selected int) (Feedback, error) {
	if a == nil {
		return Feedback{}, domain.ErrNoAttempt
	}
	if a.Complete {
		return Feedback{}, domain.ErrAttemptComplete
	}
	if a.Answered {
		return Feedback{}, domain.ErrAlreadyAnswered
	}
	q := a.Questions[a.Index]
	if selected < 0 || selected >= len(q.Options) {
		return Feedback{}, domain.ErrOptionNotFound
	}

	if selected == q.Answer {
		a.Score++
	}
	a.Answered = true
	a.Selected = selected
	return a.feedback(), nil
}

// LastFeedback rebuilds the feedback for an answered current question.
func (a *Attempt) LastFeedback() (Feedback, bool) {
	if a == nil || a.Complete || !a.Answered {
		return Feedback{}, false
	}
	return a.feedback(), true
}

func (a *Attempt) feedback() Feedback {
	q := a.Questions[a.Index]
	return Feedback{
		Correct:       a.Selected == q.Answer,
		Selected:      a.Selected,
		CorrectAnswer: q.Answer,
		CorrectText:   q.CorrectOption(),
		Explanation:   q.Explanation,
	}
}

// Advance moves past an answered question. It returns true only on the call
// that completes the attempt; calls after completion are no-ops.
func (a *Attempt) Advance(now time.Time) (bool, error) {
	if a == nil {
		return false, domain.ErrNoAttempt
	}
	if a.Complete {
		return false, nil
	}
	if !a.Answered {
		return false, domain.ErrNotAnswered
	}
	if a.Index < len(a.Questions)-1 {
		a.Index++
		a.Answered = false
		a.Selected = 0
		return false, nil
	}
	a.Complete = true
	a.CompletedAt = now
	return true, nil
}

// Result reports the outcome. It is meaningful once the attempt is complete.
func (a *Attempt) Result() Result {
	pct := domain.Percentage(a.Score, a.Total())
	tier := domain.TierFor(pct)
	return Result{
		Score:       a.Score,
		MaxScore:    a.Total(),
		Percentage:  pct,
		Tier:        tier,
		Message:     tier.Message(),
		Certificate: domain.CertificateEligible(pct),
	}
}

func (a *Attempt) clone() *Attempt {
	if a == nil {
		return nil
	}
	c := *a
	c.Questions = append([]domain.Question(nil), a.Questions...)
	return &c
}
