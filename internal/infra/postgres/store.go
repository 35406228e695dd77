// Package postgres stores the training collections in PostgreSQL.
package postgres

import (
	"context"
	"fmt"

	"forklift-training-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// Store implements the users, questions and scores collections on a pgx pool.
// Updates lock the collection's table for the length of the transaction and
// rewrite it as a whole.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

type queryer interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

func (s *Store) LoadUsers(ctx context.Context) (map[string]domain.User, error) {
	return loadUsers(ctx, s.pool)
}

func loadUsers(ctx context.Context, q queryer) (map[string]domain.User, error) {
	rows, err := q.Query(ctx, `SELECT username, password, role, name FROM users`)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	defer rows.Close()

	users := make(map[string]domain.User)
	for rows.Next() {
		var u domain.User
		var role string
		if err := rows.Scan(&u.Username, &u.Password, &role, &u.Name); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		u.Role = domain.Role(role)
		users[u.Username] = u
	}
	return users, rows.Err()
}

func (s *Store) UpdateUsers(ctx context.Context, fn func(map[string]domain.User) error) error {
	return s.inLockedTx(ctx, "users", func(tx pgx.Tx) error {
		users, err := loadUsers(ctx, tx)
		if err != nil {
			return err
		}
		if err := fn(users); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM users`); err != nil {
			return fmt.Errorf("clear users: %w", err)
		}
		batch := &pgx.Batch{}
		for name, u := range users {
			batch.Queue(`INSERT INTO users (username, password, role, name) VALUES ($1, $2, $3, $4)`,
				name, u.Password, string(u.Role), u.Name)
		}
		return sendBatch(ctx, tx, batch, "insert users")
	})
}

func (s *Store) LoadQuestions(ctx context.Context) ([]domain.Question, error) {
	return loadQuestions(ctx, s.pool)
}

func loadQuestions(ctx context.Context, q queryer) ([]domain.Question, error) {
	rows, err := q.Query(ctx, `SELECT id, question, options, answer, explanation, category FROM questions ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var qu domain.Question
		if err := rows.Scan(&qu.ID, &qu.Question, &qu.Options, &qu.Answer, &qu.Explanation, &qu.Category); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		questions = append(questions, qu)
	}
	return questions, rows.Err()
}

func (s *Store) UpdateQuestions(ctx context.Context, fn func([]domain.Question) ([]domain.Question, error)) error {
	return s.inLockedTx(ctx, "questions", func(tx pgx.Tx) error {
		questions, err := loadQuestions(ctx, tx)
		if err != nil {
			return err
		}
		updated, err := fn(questions)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM questions`); err != nil {
			return fmt.Errorf("clear questions: %w", err)
		}
		batch := &pgx.Batch{}
		for i, q := range updated {
			batch.Queue(`INSERT INTO questions (id, position, question, options, answer, explanation, category)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				q.ID, i, q.Question, q.Options, q.Answer, q.Explanation, q.Category)
		}
		return sendBatch(ctx, tx, batch, "insert questions")
	})
}

func (s *Store) LoadScores(ctx context.Context) ([]domain.ScoreRecord, error) {
	rows, err := s.pool.Query(ctx, `SELECT username, score, max_score, percentage, created_at FROM scores ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("load scores: %w", err)
	}
	defer rows.Close()

	var scores []domain.ScoreRecord
	for rows.Next() {
		var r domain.ScoreRecord
		if err := rows.Scan(&r.Username, &r.Score, &r.MaxScore, &r.Percentage, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		scores = append(scores, r)
	}
	return scores, rows.Err()
}

func (s *Store) AppendScore(ctx context.Context, r domain.ScoreRecord) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO scores (username, score, max_score, percentage, created_at) VALUES ($1, $2, $3, $4, $5)`,
		r.Username, r.Score, r.MaxScore, r.Percentage, r.Timestamp)
	if err != nil {
		return fmt.Errorf("append score: %w", err)
	}
	return nil
}

// inLockedTx runs fn in a transaction holding an exclusive lock on table.
// Readers are not blocked; concurrent updaters queue behind the lock.
func (s *Store) inLockedTx(ctx context.Context, table string, fn func(pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `LOCK TABLE `+table+` IN EXCLUSIVE MODE`); err != nil {
		return fmt.Errorf("lock %s: %w", table, err)
	}
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func sendBatch(ctx context.Context, tx pgx.Tx, batch *pgx.Batch, what string) error {
	if batch.Len() == 0 {
		return nil
	}
	br := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("%s: %w", what, err)
		}
	}
	return br.Close()
}
