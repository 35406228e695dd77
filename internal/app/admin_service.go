package app

import (
	"context"
	"io"
	"net/http"
	"sort"
	"strings"

	"forklift-training-service/internal/domain"
	"forklift-training-service/internal/transfer"
	"go.uber.org/zap"
)

// AdminService implements question, user, score and branding management.
// Callers are expected to have checked the admin role with SessionService.Authorize.
type AdminService struct {
	users     UserStore
	questions QuestionStore
	scores    ScoreStore
	logos     LogoStore
	auth      *AuthService
	log       *zap.Logger
}

func NewAdminService(users UserStore, questions QuestionStore, scores ScoreStore, logos LogoStore, auth *AuthService, log *zap.Logger) *AdminService {
	return &AdminService{users: users, questions: questions, scores: scores, logos: logos, auth: auth, log: log}
}

// ListQuestions returns every question in stored order.
func (s *AdminService) ListQuestions(ctx context.Context) ([]domain.Question, error) {
	return s.questions.LoadQuestions(ctx)
}

func normalizeQuestion(q domain.Question) (domain.Question, error) {
	q.Question = strings.TrimSpace(q.Question)
	q.Explanation = strings.TrimSpace(q.Explanation)
	q.Category = strings.TrimSpace(q.Category)
	if q.Category == "" {
		q.Category = domain.DefaultCategory
	}
	opts := make([]string, len(q.Options))
	for i, o := range q.Options {
		opts[i] = strings.TrimSpace(o)
	}
	q.Options = opts
	if err := domain.ValidateQuestion(q); err != nil {
		return q, err
	}
	if !domain.CompleteQuestion(q) {
		return q, domain.ErrMissingField
	}
	return q, nil
}

// AddQuestion stores q with the next free id.
func (s *AdminService) AddQuestion(ctx context.Context, q domain.Question) (domain.Question, error) {
	q, err := normalizeQuestion(q)
	if err != nil {
		return domain.Question{}, err
	}
	err = s.questions.UpdateQuestions(ctx, func(questions []domain.Question) ([]domain.Question, error) {
		q.ID = domain.NextQuestionID(questions)
		return append(questions, q), nil
	})
	if err != nil {
		return domain.Question{}, err
	}
	s.log.Info("question added", zap.Int("id", q.ID))
	return q, nil
}

// UpdateQuestion replaces the question with q.ID.
func (s *AdminService) UpdateQuestion(ctx context.Context, q domain.Question) (domain.Question, error) {
	q, err := normalizeQuestion(q)
	if err != nil {
		return domain.Question{}, err
	}
	err = s.questions.UpdateQuestions(ctx, func(questions []domain.Question) ([]domain.Question, error) {
		for i := range questions {
			if questions[i].ID == q.ID {
				questions[i] = q
				return questions, nil
			}
		}
		return nil, domain.ErrQuestionNotFound
	})
	if err != nil {
		return domain.Question{}, err
	}
	s.log.Info("question updated", zap.Int("id", q.ID))
	return q, nil
}

// DeleteQuestion removes the question with id.
func (s *AdminService) DeleteQuestion(ctx context.Context, id int) error {
	err := s.questions.UpdateQuestions(ctx, func(questions []domain.Question) ([]domain.Question, error) {
		for i := range questions {
			if questions[i].ID == id {
				return append(questions[:i:i], questions[i+1:]...), nil
			}
		}
		return nil, domain.ErrQuestionNotFound
	})
	if err != nil {
		return err
	}
	s.log.Info("question deleted", zap.Int("id", id))
	return nil
}

// ImportQuestions appends every row of a question CSV, numbering them after
// the current maximum id. A malformed file adds nothing.
func (s *AdminService) ImportQuestions(ctx context.Context, r io.Reader) ([]domain.Question, error) {
	parsed, err := transfer.ReadQuestions(r)
	if err != nil {
		return nil, err
	}
	var added []domain.Question
	err = s.questions.UpdateQuestions(ctx, func(questions []domain.Question) ([]domain.Question, error) {
		next := domain.NextQuestionID(questions)
		added = make([]domain.Question, len(parsed))
		for i, q := range parsed {
			q.ID = next + i
			added[i] = q
		}
		return append(questions, added...), nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("questions imported", zap.Int("count", len(added)))
	return added, nil
}

// ExportQuestions writes every question as CSV.
func (s *AdminService) ExportQuestions(ctx context.Context, w io.Writer) error {
	questions, err := s.questions.LoadQuestions(ctx)
	if err != nil {
		return err
	}
	return transfer.WriteQuestions(w, questions)
}

// ListUsers returns users sorted by username. Password hashes are cleared.
func (s *AdminService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.LoadUsers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.User, 0, len(users))
	for name, u := range users {
		u.Username = name
		u.Password = ""
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

// AddUser creates an account with any role.
func (s *AdminService) AddUser(ctx context.Context, username, password, name string, role domain.Role) (domain.User, error) {
	user, err := s.auth.createUser(ctx, username, password, name, role)
	if err != nil {
		return domain.User{}, err
	}
	user.Password = ""
	return user, nil
}

// ResetPassword replaces a user's password after checking the confirmation.
func (s *AdminService) ResetPassword(ctx context.Context, username, password, confirm string) error {
	if password == "" {
		return domain.ErrMissingField
	}
	if password != confirm {
		return domain.ErrPasswordMismatch
	}
	hashed, err := s.auth.HashPassword(password)
	if err != nil {
		return err
	}
	err = s.users.UpdateUsers(ctx, func(users map[string]domain.User) error {
		u, ok := users[username]
		if !ok {
			return domain.ErrUserNotFound
		}
		u.Password = hashed
		users[username] = u
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info("password reset", zap.String("username", username))
	return nil
}

// RemoveUser deletes an account. The last admin cannot be removed.
// The user's score records are kept.
func (s *AdminService) RemoveUser(ctx context.Context, username string) error {
	err := s.users.UpdateUsers(ctx, func(users map[string]domain.User) error {
		u, ok := users[username]
		if !ok {
			return domain.ErrUserNotFound
		}
		if u.Role == domain.RoleAdmin && domain.AdminCount(users) <= 1 {
			return domain.ErrLastAdminRemoval
		}
		delete(users, username)
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info("user removed", zap.String("username", username))
	return nil
}

// Scores returns every record joined with display names, newest first.
func (s *AdminService) Scores(ctx context.Context) ([]ScoreEntry, error) {
	entries, err := s.joinedScores(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Timestamp.After(entries[j].Timestamp) })
	return entries, nil
}

func (s *AdminService) joinedScores(ctx context.Context) ([]ScoreEntry, error) {
	records, err := s.scores.LoadScores(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.users.LoadUsers(ctx)
	if err != nil {
		return nil, err
	}
	return joinNames(records, users), nil
}

// Stats computes the overall score analytics.
func (s *AdminService) Stats(ctx context.Context) (Stats, error) {
	entries, err := s.joinedScores(ctx)
	if err != nil {
		return Stats{}, err
	}
	return computeStats(entries), nil
}

// ExportScores writes all records in insertion order, joined with display names.
func (s *AdminService) ExportScores(ctx context.Context, w io.Writer) error {
	entries, err := s.joinedScores(ctx)
	if err != nil {
		return err
	}
	rows := make([]transfer.ScoreRow, len(entries))
	for i, e := range entries {
		rows[i] = transfer.ScoreRow{ScoreRecord: e.ScoreRecord, Name: e.Name}
	}
	return transfer.WriteScores(w, rows)
}

var logoTypes = map[string]bool{"image/png": true, "image/jpeg": true}

// SetLogo stores a PNG or JPEG branding image.
func (s *AdminService) SetLogo(ctx context.Context, data []byte) error {
	ct := http.DetectContentType(data)
	if !logoTypes[ct] {
		return domain.ErrUnsupportedLogo
	}
	if err := s.logos.PutLogo(ctx, domain.Logo{Data: data, ContentType: ct}); err != nil {
		return err
	}
	s.log.Info("logo updated", zap.String("content_type", ct), zap.Int("bytes", len(data)))
	return nil
}

// RemoveLogo reverts to the placeholder everywhere.
func (s *AdminService) RemoveLogo(ctx context.Context) error {
	if err := s.logos.DeleteLogo(ctx); err != nil {
		return err
	}
	s.log.Info("logo removed")
	return nil
}

// Logo returns the branding image, or ErrNoLogo.
func (s *AdminService) Logo(ctx context.Context) (domain.Logo, error) {
	return s.logos.GetLogo(ctx)
}
