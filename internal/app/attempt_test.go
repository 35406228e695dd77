package app

import (
	"errors"
	"math/rand"
	"sort"
	"testing"
	"time"

	"forklift-training-service/internal/domain"
)

func sampleQuestions(n int) []domain.Question {
	qs := make([]domain.Question, n)
	for i := range qs {
		qs[i] = domain.Question{
			ID:          i + 1,
			Question:    "question",
			Options:     []string{"a", "b", "c", "d"},
			Answer:      i % domain.OptionCount,
			Explanation: "because",
			Category:    domain.DefaultCategory,
		}
	}
	return qs
}

func TestNewAttemptIsPermutation(t *testing.T) {
	qs := sampleQuestions(10)
	a, err := NewAttempt(qs, rand.New(rand.NewSource(1)), time.Now())
	if err != nil {
		t.Fatalf("new attempt: %v", err)
	}
	if a.Total() != len(qs) {
		t.Fatalf("expected %d questions, got %d", len(qs), a.Total())
	}
	ids := make([]int, 0, a.Total())
	for _, q := range a.Questions {
		ids = append(ids, q.ID)
	}
	sort.Ints(ids)
	for i, id := range ids {
		if id != i+1 {
			t.Fatalf("attempt is not a permutation of the question set: %v", ids)
		}
	}

	qs[0].Question = "mutated"
	for _, q := range a.Questions {
		if q.Question == "mutated" {
			t.Fatalf("attempt shares storage with the source slice")
		}
	}
}

func TestNewAttemptRejectsBadData(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	if _, err := NewAttempt(nil, rnd, time.Now()); !errors.Is(err, domain.ErrEmptyQuestionSet) || !errors.Is(err, domain.ErrDataIntegrity) {
		t.Fatalf("expected empty set integrity error, got %v", err)
	}

	qs := sampleQuestions(3)
	qs[1].Answer = 4
	_, err := NewAttempt(qs, rnd, time.Now())
	var integrity *domain.IntegrityError
	if !errors.As(err, &integrity) || integrity.QuestionID != 2 {
		t.Fatalf("expected integrity error for question 2, got %v", err)
	}
}

func TestSubmitAndAdvance(t *testing.T) {
	a, _ := NewAttempt(sampleQuestions(2), rand.New(rand.NewSource(3)), time.Now())

	if _, err := a.Advance(time.Now()); !errors.Is(err, domain.ErrNotAnswered) {
		t.Fatalf("expected ErrNotAnswered, got %v", err)
	}
	if _, err := a.Submit(7); !errors.Is(err, domain.ErrOptionNotFound) || a.Answered {
		t.Fatalf("expected out-of-range option to be rejected without effect, got %v", err)
	}

	q, _ := a.Current()
	fb, err := a.Submit(q.Answer)
	if err != nil || !fb.Correct || fb.CorrectText != q.Options[q.Answer] || fb.Explanation != "because" {
		t.Fatalf("unexpected feedback %+v err %v", fb, err)
	}

	before := *a
	if _, err := a.Submit((q.Answer + 1) % 4); !errors.Is(err, domain.ErrAlreadyAnswered) {
		t.Fatalf("expected ErrAlreadyAnswered, got %v", err)
	}
	if a.Score != before.Score || a.Selected != before.Selected {
		t.Fatalf("rejected submit changed state")
	}

	if done, err := a.Advance(time.Now()); err != nil || done {
		t.Fatalf("expected move to second question, done=%v err=%v", done, err)
	}
	q, _ = a.Current()
	fb, _ = a.Submit((q.Answer + 1) % 4)
	if fb.Correct {
		t.Fatalf("expected wrong answer")
	}

	done, err := a.Advance(time.Now())
	if err != nil || !done {
		t.Fatalf("expected completion, done=%v err=%v", done, err)
	}
	done, err = a.Advance(time.Now())
	if err != nil || done {
		t.Fatalf("expected advance after completion to be a no-op, done=%v err=%v", done, err)
	}
	if _, err := a.Submit(0); !errors.Is(err, domain.ErrAttemptComplete) {
		t.Fatalf("expected ErrAttemptComplete, got %v", err)
	}

	res := a.Result()
	if res.Score != 1 || res.MaxScore != 2 || res.Percentage != 50 || res.Tier != domain.TierFail {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestScoreBounds(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	for trial := 0; trial < 50; trial++ {
		n := 1 + rnd.Intn(8)
		a, _ := NewAttempt(sampleQuestions(n), rnd, time.Now())
		for !a.Complete {
			_, _ = a.Submit(rnd.Intn(4))
			_, _ = a.Advance(time.Now())
		}
		res := a.Result()
		if res.Score < 0 || res.Score > n {
			t.Fatalf("score %d out of [0,%d]", res.Score, n)
		}
		if res.Percentage != float64(res.Score)/float64(n)*100 {
			t.Fatalf("percentage %v does not match %d/%d", res.Percentage, res.Score, n)
		}
	}
}

func TestNilAttempt(t *testing.T) {
	var a *Attempt
	if a.Status() != StatusNotStarted {
		t.Fatalf("expected not started")
	}
	if _, err := a.Submit(0); !errors.Is(err, domain.ErrNoAttempt) {
		t.Fatalf("expected ErrNoAttempt, got %v", err)
	}
	if _, ok := a.LastFeedback(); ok {
		t.Fatalf("expected no feedback")
	}
}
