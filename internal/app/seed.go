package app

import (
	"context"
	"errors"

	"forklift-training-service/internal/domain"
	"go.uber.org/zap"
)

const (
	defaultAdminUsername = "admin"
	defaultAdminPassword = "admin123"
	defaultAdminName     = "Admin User"
)

var errSkipSeed = errors.New("collection already populated")

// DefaultQuestions is the question set a fresh installation starts with.
func DefaultQuestions() []domain.Question {
	return []domain.Question{
		{
			ID:       1,
			Question: "What should you do before operating a forklift?",
			Options: []string{
				"Check fuel only",
				"Full pre-shift inspection",
				"Test horn",
				"Load immediately",
			},
			Answer:      1,
			Explanation: "OSHA requires a pre-shift inspection for safety.",
			Category:    "Safety",
		},
		{
			ID:       2,
			Question: "What is the proper way to approach an intersection with a forklift?",
			Options: []string{
				"Speed up to get through quickly",
				"Honk and proceed without stopping",
				"Slow down, honk, and look both ways",
				"Always come to a complete stop",
			},
			Answer:      2,
			Explanation: "Slowing down, honking, and looking both ways ensures visibility and warns pedestrians of your approach.",
			Category:    "Operation",
		},
		{
			ID:       3,
			Question: "When parking a forklift at the end of a shift, you should:",
			Options: []string{
				"Leave the forks raised for easy access next shift",
				"Park anywhere convenient",
				"Lower the forks to the ground, set the brake, and turn off the engine",
				"Leave the key in the ignition for the next operator",
			},
			Answer:      2,
			Explanation: "Lowering forks, setting the brake, and turning off the engine are essential safety protocols for parking.",
			Category:    "Safety",
		},
	}
}

// Seed fills empty collections with the default admin account and questions.
// Non-empty collections are left alone.
func Seed(ctx context.Context, users UserStore, questions QuestionStore, auth *AuthService, log *zap.Logger) error {
	hashed, err := auth.HashPassword(defaultAdminPassword)
	if err != nil {
		return err
	}
	err = users.UpdateUsers(ctx, func(existing map[string]domain.User) error {
		if len(existing) > 0 {
			return errSkipSeed
		}
		existing[defaultAdminUsername] = domain.User{
			Username: defaultAdminUsername,
			Password: hashed,
			Role:     domain.RoleAdmin,
			Name:     defaultAdminName,
		}
		log.Info("seeded default admin", zap.String("username", defaultAdminUsername))
		return nil
	})
	if err != nil && !errors.Is(err, errSkipSeed) {
		return err
	}

	err = questions.UpdateQuestions(ctx, func(existing []domain.Question) ([]domain.Question, error) {
		if len(existing) > 0 {
			return nil, errSkipSeed
		}
		log.Info("seeded default questions", zap.Int("count", len(DefaultQuestions())))
		return DefaultQuestions(), nil
	})
	if err != nil && !errors.Is(err, errSkipSeed) {
		return err
	}
	return nil
}
