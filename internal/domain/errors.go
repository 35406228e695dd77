package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidCredentials is returned for an unknown username or a wrong password.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrDuplicateUsername is returned when registering a username that is taken.
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrLastAdminRemoval blocks removing the only remaining administrator.
	ErrLastAdminRemoval = errors.New("cannot remove the last administrator account")
	// ErrMalformedImport is the root of every import validation failure.
	ErrMalformedImport = errors.New("malformed import file")
	// ErrDataIntegrity marks stored data the quiz cannot run with.
	ErrDataIntegrity = errors.New("data integrity error")
	// ErrEmptyQuestionSet is a data integrity error raised before an attempt can start.
	ErrEmptyQuestionSet = fmt.Errorf("%w: no questions available", ErrDataIntegrity)
	// ErrPermissionDenied is returned when a non-admin reaches an admin-only view or action.
	ErrPermissionDenied = errors.New("you do not have permission to access this page")
	// ErrUnauthenticated is returned for actions that need a logged-in session.
	ErrUnauthenticated = errors.New("login required")

	ErrSessionNotFound  = errors.New("session not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrOptionNotFound   = errors.New("option not found")
	ErrInvalidView      = errors.New("unknown view")
	ErrMissingField     = errors.New("all fields are required")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrNoLogo           = errors.New("no logo configured")
	ErrUnsupportedLogo  = errors.New("logo must be a PNG or JPEG image")

	// ErrNoAttempt is returned for quiz actions before an attempt was started.
	ErrNoAttempt = errors.New("no quiz attempt in progress")
	// ErrAlreadyAnswered rejects a second answer for the current question.
	ErrAlreadyAnswered = errors.New("question already answered")
	// ErrNotAnswered rejects advancing before the current question was answered.
	ErrNotAnswered = errors.New("current question has not been answered")
	// ErrAttemptComplete rejects answers once the attempt has finished.
	ErrAttemptComplete = errors.New("quiz attempt already complete")
	// ErrNotEligible is returned when a certificate is requested below the pass tier.
	ErrNotEligible = errors.New("score below certificate threshold")
)

// ImportError describes why a question import was rejected.
type ImportError struct {
	Missing []string // required columns absent from the header
	Row     int      // 1-based data row that failed to parse, 0 when not row specific
	Reason  string
}

func (e *ImportError) Error() string {
	if len(e.Missing) > 0 {
		return "CSV is missing these required columns: " + strings.Join(e.Missing, ", ")
	}
	if e.Row > 0 {
		return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
	}
	return e.Reason
}

func (e *ImportError) Unwrap() error { return ErrMalformedImport }

// IntegrityError reports a question that cannot be used by the quiz.
type IntegrityError struct {
	QuestionID int
	Reason     string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("question %d: %s", e.QuestionID, e.Reason)
}

func (e *IntegrityError) Unwrap() error { return ErrDataIntegrity }
