package domain

import "time"

// Role is the access tier of a user.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleOperator Role = "operator"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleOperator
}

// User is a stored account. Password always holds a bcrypt hash.
type User struct {
	Username string `json:"-"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
	Name     string `json:"name"`
}

// OptionCount is the fixed number of options every question carries.
const OptionCount = 4

// DefaultCategory is applied to questions stored without a category.
const DefaultCategory = "General"

// Question models a multiple-choice question with exactly one correct option.
type Question struct {
	ID          int      `json:"id"`
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Answer      int      `json:"answer"` // 0-based index into Options
	Explanation string   `json:"explanation"`
	Category    string   `json:"category"`
}

// CorrectOption returns the text of the correct option, or "" when the answer index is invalid.
func (q Question) CorrectOption() string {
	if q.Answer < 0 || q.Answer >= len(q.Options) {
		return ""
	}
	return q.Options[q.Answer]
}

// ScoreRecord is an immutable result of one completed attempt.
type ScoreRecord struct {
	Username   string    `json:"username"`
	Score      int       `json:"score"`
	MaxScore   int       `json:"max_score"`
	Percentage float64   `json:"percentage"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewScoreRecord derives the percentage from score and maxScore.
func NewScoreRecord(username string, score, maxScore int, at time.Time) ScoreRecord {
	return ScoreRecord{
		Username:   username,
		Score:      score,
		MaxScore:   maxScore,
		Percentage: Percentage(score, maxScore),
		Timestamp:  at,
	}
}

// Percentage returns 100*score/total, or 0 when total is not positive.
func Percentage(score, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(score) / float64(total) * 100
}

// Tier classifies a percentage for feedback and certificate eligibility.
type Tier string

const (
	TierPass    Tier = "pass"
	TierPartial Tier = "partial"
	TierFail    Tier = "fail"
)

const (
	PassThreshold    = 80.0
	PartialThreshold = 60.0
)

// TierFor maps a percentage onto the fixed pass/partial/fail bands.
func TierFor(percentage float64) Tier {
	switch {
	case percentage >= PassThreshold:
		return TierPass
	case percentage >= PartialThreshold:
		return TierPartial
	default:
		return TierFail
	}
}

// Message is the user-facing recommendation for the tier.
func (t Tier) Message() string {
	switch t {
	case TierPass:
		return "Great job! You have a solid understanding of forklift safety."
	case TierPartial:
		return "Good effort! Review the areas where you made mistakes."
	default:
		return "Please review the forklift safety manual and try again."
	}
}

// CertificateEligible reports whether a certificate may be issued for the percentage.
func CertificateEligible(percentage float64) bool {
	return TierFor(percentage) == TierPass
}

// View is a top-level page a session can be on.
type View string

const (
	ViewLogin         View = "login"
	ViewQuiz          View = "quiz"
	ViewScores        View = "scores"
	ViewDocumentation View = "documentation"
	ViewAdmin         View = "admin"
)

// Valid reports whether v is a known view.
func (v View) Valid() bool {
	switch v {
	case ViewLogin, ViewQuiz, ViewScores, ViewDocumentation, ViewAdmin:
		return true
	}
	return false
}

// AdminOnly reports whether v requires the admin role.
func (v View) AdminOnly() bool {
	return v == ViewDocumentation || v == ViewAdmin
}

// Logo is the optional branding image.
type Logo struct {
	Data        []byte
	ContentType string
}
