package domain

import "strings"

// ValidateQuestion checks the invariants every stored question must satisfy.
func ValidateQuestion(q Question) error {
	if len(q.Options) != OptionCount {
		return &IntegrityError{QuestionID: q.ID, Reason: "expected 4 options"}
	}
	if q.Answer < 0 || q.Answer >= len(q.Options) {
		return &IntegrityError{QuestionID: q.ID, Reason: "answer index out of range"}
	}
	return nil
}

// ValidateQuestionSet checks that a quiz can be run over questions.
func ValidateQuestionSet(questions []Question) error {
	if len(questions) == 0 {
		return ErrEmptyQuestionSet
	}
	for _, q := range questions {
		if err := ValidateQuestion(q); err != nil {
			return err
		}
	}
	return nil
}

// CompleteQuestion reports whether every text field of q is filled in.
func CompleteQuestion(q Question) bool {
	if strings.TrimSpace(q.Question) == "" || strings.TrimSpace(q.Explanation) == "" {
		return false
	}
	for _, opt := range q.Options {
		if strings.TrimSpace(opt) == "" {
			return false
		}
	}
	return true
}

// NextQuestionID returns one past the highest id in questions.
func NextQuestionID(questions []Question) int {
	next := 1
	for _, q := range questions {
		if q.ID >= next {
			next = q.ID + 1
		}
	}
	return next
}

// AdminCount returns how many users hold the admin role.
func AdminCount(users map[string]User) int {
	n := 0
	for _, u := range users {
		if u.Role == RoleAdmin {
			n++
		}
	}
	return n
}
